package cmd

import (
	"github.com/crytic/arbiter/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger is the logger used by the cmd package to report progress and failures to the console.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true).NewSubLogger("module", logging.CLI_SERVICE)

var rootCmd = &cobra.Command{
	Use:   "arbiter",
	Short: "A deterministic arbitrary value oracle for smart contract testing",
	Long: "arbiter generates reproducible arbitrary values and arbitrary contract storage from a seed, so that " +
		"failing smart contract tests can be replayed exactly",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
