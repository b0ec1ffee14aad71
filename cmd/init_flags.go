package cmd

import (
	"github.com/crytic/arbiter/oracle/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() error {
	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file (a .yaml/.yml extension writes YAML)")

	// Overwrite without prompting
	initCmd.Flags().Bool("force", false, "overwrite an existing configuration file without prompting")

	// Oracle options
	initCmd.Flags().String("seed", "", SeedFlagDescription)
	initCmd.Flags().StringSlice("arbitrary", []string{}, "address(es) whose unset storage reads as arbitrary values")
	initCmd.Flags().String("journal-dir", "", "directory in which run seeds are journaled")

	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update seed
	if cmd.Flags().Changed("seed") {
		projectConfig.Oracle.Seed, err = cmd.Flags().GetString("seed")
		if err != nil {
			return err
		}
	}

	// Update arbitrary storage addresses
	if cmd.Flags().Changed("arbitrary") {
		projectConfig.Oracle.ArbitraryAddresses, err = cmd.Flags().GetStringSlice("arbitrary")
		if err != nil {
			return err
		}
	}

	// Update journal directory
	if cmd.Flags().Changed("journal-dir") {
		projectConfig.Oracle.JournalDirectory, err = cmd.Flags().GetString("journal-dir")
		if err != nil {
			return err
		}
	}
	return nil
}
