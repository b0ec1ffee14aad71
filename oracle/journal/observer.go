package journal

import "github.com/crytic/arbiter/oracle/seed"

// RunObserver records the reseeds of a single run in a Journal.
type RunObserver struct {
	journal *Journal
	runID   string
}

// NewRunObserver creates a RunObserver appending reseeds to the run with the provided ID.
func NewRunObserver(journal *Journal, runID string) *RunObserver {
	return &RunObserver{
		journal: journal,
		runID:   runID,
	}
}

// OnReseed records the new seed of the run.
func (r *RunObserver) OnReseed(_ seed.Seed, current seed.Seed) error {
	return r.journal.RecordReseed(r.runID, current)
}
