package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crytic/arbiter/oracle/seed"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestJournal opens a journal in a temporary directory with a deterministic clock.
func openTestJournal(t *testing.T, dir string) *Journal {
	j, err := Open(dir, "0.3.0")
	require.NoError(t, err)

	tick := int64(0)
	j.now = func() time.Time {
		tick++
		return time.Unix(1700000000, tick)
	}
	return j
}

// TestJournalLayout verifies the database is created inside the .arbiter directory.
func TestJournalLayout(t *testing.T) {
	dir := t.TempDir()
	j := openTestJournal(t, dir)
	defer j.Close()

	assert.Equal(t, filepath.Join(dir, ".arbiter", "journal.db"), j.Path())
	_, err := os.Stat(j.Path())
	assert.NoError(t, err)
}

// TestStartAndGetRun verifies a started run can be read back with its seed.
func TestStartAndGetRun(t *testing.T) {
	j := openTestJournal(t, t.TempDir())
	defer j.Close()

	record, err := j.StartRun("campaign", seed.DefaultSeed)
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)

	readRecord, err := j.GetRun(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, readRecord.ID)
	assert.Equal(t, record.StartedAt, readRecord.StartedAt)
	assert.Equal(t, record.StartTime(), readRecord.StartTime())
	assert.Empty(t, readRecord.Reseeds)
	assert.Equal(t, "campaign", readRecord.Label)
	assert.Equal(t, "0.3.0", readRecord.ToolVersion)

	initial, err := readRecord.InitialSeed()
	require.NoError(t, err)
	assert.Equal(t, seed.DefaultSeed, initial)
}

// TestRecordReseed verifies reseeds are appended in order and determine the final seed.
func TestRecordReseed(t *testing.T) {
	j := openTestJournal(t, t.TempDir())
	defer j.Close()

	record, err := j.StartRun("reseeds", seed.DefaultSeed)
	require.NoError(t, err)

	first := seed.Seed(common.HexToHash("0x01"))
	second := seed.Seed(common.HexToHash("0x02"))
	observer := NewRunObserver(j, record.ID)
	require.NoError(t, observer.OnReseed(seed.DefaultSeed, first))
	require.NoError(t, observer.OnReseed(first, second))

	readRecord, err := j.GetRun(record.ID)
	require.NoError(t, err)
	require.Len(t, readRecord.Reseeds, 2)
	assert.Equal(t, first.String(), readRecord.Reseeds[0].Seed)
	assert.Less(t, readRecord.Reseeds[0].At, readRecord.Reseeds[1].At)

	final, err := readRecord.FinalSeed()
	require.NoError(t, err)
	assert.Equal(t, second, final)

	err = j.RecordReseed("missing", first)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

// TestPersistenceAcrossReopen verifies records survive closing and reopening the journal, ordered by start time.
func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	j := openTestJournal(t, dir)

	var ids []string
	for _, label := range []string{"a", "b", "c"} {
		record, err := j.StartRun(label, seed.DefaultSeed)
		require.NoError(t, err)
		ids = append(ids, record.ID)
	}
	require.NoError(t, j.Close())

	reopened := openTestJournal(t, dir)
	defer reopened.Close()
	records, err := reopened.ListRuns()
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, ids[i], record.ID)
	}
}

// TestFlushThreshold verifies pending writes reach the database once the threshold is hit.
func TestFlushThreshold(t *testing.T) {
	j := openTestJournal(t, t.TempDir())
	defer j.Close()
	j.flushThreshold = 2

	_, err := j.StartRun("one", seed.DefaultSeed)
	require.NoError(t, err)
	assert.Len(t, j.pendingWrites, 1)

	_, err = j.StartRun("two", seed.DefaultSeed)
	require.NoError(t, err)
	assert.Empty(t, j.pendingWrites)
}

// TestGetMissingRun verifies unknown IDs produce ErrRunNotFound.
func TestGetMissingRun(t *testing.T) {
	j := openTestJournal(t, t.TempDir())
	defer j.Close()

	_, err := j.GetRun("00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

// TestCheckCompatibility verifies only major version changes are incompatible.
func TestCheckCompatibility(t *testing.T) {
	record := &RunRecord{ID: "run", ToolVersion: "1.2.3"}
	assert.NoError(t, CheckCompatibility(record, "1.9.0"))
	assert.True(t, errors.Is(CheckCompatibility(record, "2.0.0"), ErrIncompatibleVersion))
	assert.Error(t, CheckCompatibility(record, "not-a-version"))

	record.ToolVersion = "garbage"
	assert.Error(t, CheckCompatibility(record, "1.0.0"))
}
