package cmd

import (
	"github.com/crytic/arbiter/oracle"
	"github.com/spf13/cobra"
)

// storageCmd represents the command provider for storage
var storageCmd = &cobra.Command{
	Use:   "storage <script>",
	Short: "Runs a storage overlay script",
	Long: `Runs a JSON or YAML script of storage operations against a fresh storage overlay and prints every read
along with the origin of its value.

A script looks like:

  seed: "0x01"          # optional, used unless --seed is given
  operations:
    - op: enable        # place an address in arbitrary storage mode
      address: "0x5615dEB798BB3E4dFa0139dFa1b3D433Cc23b72f"
    - op: read
      address: "0x5615dEB798BB3E4dFa0139dFa1b3D433Cc23b72f"
      slot: "55"
    - op: write
      address: "0x5615dEB798BB3E4dFa0139dFa1b3D433Cc23b72f"
      slot: "55"
      value: "0x2a"
    - op: copy
      from: "0x5615dEB798BB3E4dFa0139dFa1b3D433Cc23b72f"
      to: "0x1111111111111111111111111111111111111111"`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: cmdValidScriptArgs,
	RunE:              cmdRunStorage,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add flags to storage command
	storageCmd.Flags().String("config", "", ConfigFlagDescription)
	storageCmd.Flags().String("seed", "", SeedFlagDescription)
	storageCmd.Flags().String("label", "storage", "label recorded for this run in the journal")

	// Add the storage command and its associated flags to the root command
	rootCmd.AddCommand(storageCmd)
}

// cmdRunStorage executes the storage CLI command
func cmdRunStorage(cmd *cobra.Command, args []string) error {
	script, err := readStorageScript(args[0])
	if err != nil {
		return commandError("storage", err)
	}

	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		return commandError("storage", err)
	}

	// The script's seed applies unless one was given on the command line
	if script.Seed != "" && !cmd.Flags().Changed("seed") {
		projectConfig.Oracle.Seed = script.Seed
	}
	closeLogs, err := setupGlobalLogger(projectConfig.Logging)
	if err != nil {
		return commandError("storage", err)
	}
	defer closeLogs()

	o, err := oracle.New(&projectConfig.Oracle, nil)
	if err != nil {
		return commandError("storage", err)
	}

	label, err := cmd.Flags().GetString("label")
	if err != nil {
		return commandError("storage", err)
	}
	closeJournal, err := startJournaledRun(o, label)
	if err != nil {
		return commandError("storage", err)
	}
	defer closeJournal()

	if err = runStorageScript(cmd.OutOrStdout(), o, script); err != nil {
		return commandError("storage", err)
	}
	cmdLogger.Info(storageSummary(o, script).Args()...)
	return nil
}
