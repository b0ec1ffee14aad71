package cmd

import (
	"github.com/crytic/arbiter/logging/colors"
	"github.com/crytic/arbiter/oracle"
	"github.com/crytic/arbiter/oracle/journal"
	"github.com/crytic/arbiter/version"
)

// startJournaledRun records a new run of the oracle in the journal configured for it, and journals every later
// reseed of the oracle. If no journal directory is configured, nothing is recorded. The returned function closes the
// journal.
func startJournaledRun(o *oracle.Oracle, label string) (func(), error) {
	journalDirectory := o.Config().JournalDirectory
	if journalDirectory == "" {
		return func() {}, nil
	}

	j, err := journal.Open(journalDirectory, version.Version)
	if err != nil {
		return nil, err
	}
	record, err := j.StartRun(label, o.Seeds().CurrentSeed())
	if err != nil {
		_ = j.Close()
		return nil, err
	}
	o.SetReseedObserver(journal.NewRunObserver(j, record.ID))
	cmdLogger.Info("Journaled run ", colors.Bold, record.ID, colors.Reset)

	return func() {
		o.SetReseedObserver(nil)
		if err := j.Close(); err != nil {
			cmdLogger.Error("Failed to close the run journal", err)
		}
	}, nil
}
