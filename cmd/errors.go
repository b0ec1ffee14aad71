package cmd

import (
	"github.com/crytic/arbiter/cmd/exitcodes"
	"github.com/crytic/arbiter/oracle/journal"
	"github.com/crytic/arbiter/oracle/seed"
	"github.com/crytic/arbiter/oracle/storage"
	"github.com/crytic/arbiter/oracle/valuegeneration"
	"github.com/pkg/errors"
)

// exitCodeForError determines the exit code for an error returned by a command. Errors that already carry an exit
// code keep it.
func exitCodeForError(err error) int {
	var withExitCode *exitcodes.ErrorWithExitCode
	switch {
	case errors.As(err, &withExitCode):
		return withExitCode.ExitCode()
	case errors.Is(err, seed.ErrInvalidSeed),
		errors.Is(err, valuegeneration.ErrInvalidRange),
		errors.Is(err, valuegeneration.ErrInvalidWidth),
		errors.Is(err, valuegeneration.ErrInvalidLength),
		errors.Is(err, storage.ErrArbitraryTarget),
		errors.Is(err, journal.ErrRunNotFound):
		return exitcodes.ExitCodeInvalidInput
	case errors.Is(err, valuegeneration.ErrGenerationExhausted):
		return exitcodes.ExitCodeGenerationFailed
	default:
		return exitcodes.ExitCodeHandledError
	}
}

// commandError logs the failure of a command and returns the error with its exit code attached. Since the error has
// been logged, main does not print it again.
func commandError(command string, err error) error {
	cmdLogger.Error("Failed to run the "+command+" command", err)
	exitCode := exitCodeForError(err)
	var withExitCode *exitcodes.ErrorWithExitCode
	if errors.As(err, &withExitCode) {
		err = withExitCode.Unwrap()
	}
	return exitcodes.NewErrorWithExitCode(err, exitCode)
}
