package main

import (
	"fmt"
	"os"

	"github.com/crytic/arbiter/cmd"
	"github.com/crytic/arbiter/cmd/exitcodes"
)

func main() {
	// Run our root CLI command, which contains all underlying command logic and will handle parsing/invocation.
	err := cmd.Execute()

	// Obtain the actual error and exit code from the error, if any.
	var exitCode int
	err, exitCode = exitcodes.GetInnerErrorAndExitCode(err)

	// Commands log their own failures, so only errors raised before a command ran (e.g. argument validation) are
	// printed here.
	if err != nil && exitCode == exitcodes.ExitCodeGeneralError {
		fmt.Fprintln(os.Stderr, err)
	}

	// If we have a non-success exit code, exit with it.
	if exitCode != exitcodes.ExitCodeSuccess {
		os.Exit(exitCode)
	}
}
