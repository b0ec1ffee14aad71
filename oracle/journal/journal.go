// Package journal persists the seeds of oracle runs so a failing run can be replayed. Generated values are never
// persisted: they are a pure function of the seed and the requests made.
package journal

import (
	"bytes"
	"path/filepath"
	"sync"
	"time"

	"github.com/crytic/arbiter/logging"
	"github.com/crytic/arbiter/oracle/seed"
	"github.com/crytic/arbiter/utils"
	"github.com/fxamacker/cbor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
	"golang.org/x/exp/slices"
)

const (
	// journalDirectoryName is the directory created inside the configured directory to hold the journal database.
	journalDirectoryName = ".arbiter"
	// journalFileName is the name of the journal database file.
	journalFileName = "journal.db"
	// defaultFlushThreshold is the number of pending writes that triggers a flush to disk.
	defaultFlushThreshold = 16
)

// runsBucket is the bbolt bucket holding run records keyed by run ID.
var runsBucket = []byte("runs")

// ErrRunNotFound indicates a lookup for a run ID the journal has no record of.
var ErrRunNotFound = errors.New("run not found")

// ReseedEvent records a reseed that occurred during a run.
type ReseedEvent struct {
	// Seed is the hex-encoded seed the run switched to.
	Seed string `cbor:"seed"`
	// At is the unix time in nanoseconds at which the reseed occurred.
	At int64 `cbor:"at"`
}

// RunRecord describes a single oracle run: the seed it started from and every reseed that followed.
type RunRecord struct {
	// ID is the unique identifier of the run.
	ID string `cbor:"id"`
	// Label is a free-form description of the run, such as the test or campaign name.
	Label string `cbor:"label"`
	// Seed is the hex-encoded seed the run started from.
	Seed string `cbor:"seed"`
	// ToolVersion is the version of the tool that recorded the run.
	ToolVersion string `cbor:"toolVersion"`
	// StartedAt is the unix time in nanoseconds at which the run started.
	StartedAt int64 `cbor:"startedAt"`
	// Reseeds lists the reseeds that occurred during the run, in order.
	Reseeds []ReseedEvent `cbor:"reseeds"`
}

// StartTime returns the time at which the run started.
func (r *RunRecord) StartTime() time.Time {
	return time.Unix(0, r.StartedAt)
}

// InitialSeed parses the seed the run started from.
func (r *RunRecord) InitialSeed() (seed.Seed, error) {
	return seed.ParseSeed(r.Seed)
}

// FinalSeed parses the seed that was active at the end of the run.
func (r *RunRecord) FinalSeed() (seed.Seed, error) {
	if len(r.Reseeds) == 0 {
		return r.InitialSeed()
	}
	return seed.ParseSeed(r.Reseeds[len(r.Reseeds)-1].Seed)
}

// pendingWrite is an encoded record waiting to be flushed to the database.
type pendingWrite struct {
	key   []byte
	value []byte
}

// Journal is a bbolt-backed store of RunRecord objects. Writes are batched and flushed once the flush threshold is
// reached, on every read and on Close. It is safe for concurrent use.
type Journal struct {
	// db is the underlying database.
	db *bbolt.DB

	// path is the path of the database file.
	path string

	// pendingWriteMutex guards pendingWrites.
	pendingWriteMutex sync.Mutex

	// pendingWrites holds encoded records not yet written to db.
	pendingWrites []pendingWrite

	// flushThreshold is the number of pending writes that triggers a flush.
	flushThreshold int

	// toolVersion is the version stamped on new records.
	toolVersion string

	// now returns the current time. Replaced in tests.
	now func() time.Time

	// logger describes the logger used by the journal.
	logger *logging.Logger
}

// Open opens (creating if needed) the journal database inside the provided directory. The database lives at
// <dir>/.arbiter/journal.db. Returns an error if the directory cannot be created or the database is locked by
// another process for longer than a second.
func Open(dir string, toolVersion string) (*Journal, error) {
	journalDir := filepath.Join(dir, journalDirectoryName)
	if err := utils.MakeDirectory(journalDir); err != nil {
		return nil, errors.Wrap(err, "failed to create journal directory")
	}

	path := filepath.Join(journalDir, journalFileName)
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open journal '%s'", path)
	}

	// Create the runs bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}

	return &Journal{
		db:             db,
		path:           path,
		pendingWrites:  []pendingWrite{},
		flushThreshold: defaultFlushThreshold,
		toolVersion:    toolVersion,
		now:            time.Now,
		logger:         logging.GlobalLogger.NewSubLogger("module", logging.JOURNAL_SERVICE),
	}, nil
}

// Path returns the path of the journal database file.
func (j *Journal) Path() string {
	return j.path
}

// StartRun records the start of a new run from the provided seed and returns its record.
func (j *Journal) StartRun(label string, s seed.Seed) (*RunRecord, error) {
	record := &RunRecord{
		ID:          uuid.NewString(),
		Label:       label,
		Seed:        s.String(),
		ToolVersion: j.toolVersion,
		StartedAt:   j.now().UnixNano(),
		Reseeds:     []ReseedEvent{},
	}
	if err := j.put(record); err != nil {
		return nil, err
	}
	j.logger.Debug("Started run ", record.ID, " with seed ", record.Seed)
	return record, nil
}

// RecordReseed appends a reseed to the run with the provided ID.
// Returns ErrRunNotFound if no such run exists.
func (j *Journal) RecordReseed(id string, s seed.Seed) error {
	record, err := j.GetRun(id)
	if err != nil {
		return err
	}
	record.Reseeds = append(record.Reseeds, ReseedEvent{Seed: s.String(), At: j.now().UnixNano()})
	return j.put(record)
}

// GetRun returns the record of the run with the provided ID.
// Returns ErrRunNotFound if no such run exists.
func (j *Journal) GetRun(id string) (*RunRecord, error) {
	if err := j.Flush(); err != nil {
		return nil, err
	}

	var data []byte
	err := j.db.View(func(tx *bbolt.Tx) error {
		if value := tx.Bucket(runsBucket).Get([]byte(id)); value != nil {
			data = bytes.Clone(value)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if data == nil {
		return nil, errors.Wrapf(ErrRunNotFound, "no run with id '%s'", id)
	}
	return decodeRecord(data)
}

// ListRuns returns every recorded run, oldest first.
func (j *Journal) ListRuns() ([]*RunRecord, error) {
	if err := j.Flush(); err != nil {
		return nil, err
	}

	records := make([]*RunRecord, 0)
	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(_, value []byte) error {
			record, err := decodeRecord(value)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	slices.SortFunc(records, func(a, b *RunRecord) int {
		switch {
		case a.StartedAt < b.StartedAt:
			return -1
		case a.StartedAt > b.StartedAt:
			return 1
		default:
			return bytes.Compare([]byte(a.ID), []byte(b.ID))
		}
	})
	return records, nil
}

// put encodes the record and queues it for writing, flushing if the threshold is reached.
func (j *Journal) put(record *RunRecord) error {
	value, err := cbor.Marshal(record, cbor.EncOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	j.pendingWriteMutex.Lock()
	defer j.pendingWriteMutex.Unlock()
	j.pendingWrites = append(j.pendingWrites, pendingWrite{key: []byte(record.ID), value: value})
	if len(j.pendingWrites) >= j.flushThreshold {
		return j.flushWrites()
	}
	return nil
}

// Flush writes every pending record to the database.
func (j *Journal) Flush() error {
	j.pendingWriteMutex.Lock()
	defer j.pendingWriteMutex.Unlock()
	return j.flushWrites()
}

// flushWrites writes pending records in a single transaction. The caller must hold pendingWriteMutex.
func (j *Journal) flushWrites() error {
	if len(j.pendingWrites) == 0 {
		return nil
	}
	err := j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(runsBucket)
		for _, pw := range j.pendingWrites {
			if err := bucket.Put(pw.key, pw.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to flush journal writes")
	}
	j.pendingWrites = j.pendingWrites[:0]
	return nil
}

// Close flushes pending records and closes the database.
func (j *Journal) Close() error {
	if err := j.Flush(); err != nil {
		return err
	}
	return errors.WithStack(j.db.Close())
}

// decodeRecord decodes a CBOR-encoded RunRecord.
func decodeRecord(data []byte) (*RunRecord, error) {
	var record RunRecord
	if err := cbor.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "could not decode run record")
	}
	return &record, nil
}
