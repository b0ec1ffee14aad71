package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crytic/arbiter/cmd/exitcodes"
	"github.com/crytic/arbiter/logging"
	"github.com/crytic/arbiter/logging/colors"
	"github.com/crytic/arbiter/oracle/config"
	"github.com/crytic/arbiter/utils"
	"github.com/spf13/cobra"
)

// loadProjectConfig resolves the project configuration of a command. If --config was provided, the file must exist.
// Otherwise arbiter.json in the working directory is read if present, and the default configuration is used if not.
// A --seed flag, when set, overrides the configured seed. The resulting configuration is validated.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If --config was not used, look for `arbiter.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	var projectConfig *config.ProjectConfig
	if utils.FileExists(configPath) {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			return nil, exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeInvalidInput)
		}
	} else if configFlagUsed {
		return nil, exitcodes.NewErrorWithExitCode(fmt.Errorf("unable to find the config file at %v", configPath), exitcodes.ExitCodeInvalidInput)
	} else {
		cmdLogger.Debug("Unable to find the config file at ", configPath, ", using the default project configuration")
		projectConfig = config.GetDefaultProjectConfig()
	}

	// Apply the seed override, if any
	if flag := cmd.Flags().Lookup("seed"); flag != nil && flag.Changed {
		projectConfig.Oracle.Seed = flag.Value.String()
	}

	if err = projectConfig.Validate(); err != nil {
		return nil, exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeInvalidInput)
	}
	return projectConfig, nil
}

// setupGlobalLogger replaces logging.GlobalLogger with one configured by the project's logging configuration. If a
// log directory is configured, structured logs are additionally written to a timestamped file inside it, and the
// returned function closes that file.
func setupGlobalLogger(loggingConfig config.LoggingConfig) (func(), error) {
	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level, loggingConfig.EnableConsoleLogging)
	if loggingConfig.LogDirectory == "" {
		return func() {}, nil
	}

	if err := utils.MakeDirectory(loggingConfig.LogDirectory); err != nil {
		return nil, err
	}
	fileName := fmt.Sprintf("arbiter-%s.log", time.Now().Format("20060102-150405"))
	file, err := os.Create(filepath.Join(loggingConfig.LogDirectory, fileName))
	if err != nil {
		return nil, err
	}
	logging.GlobalLogger.AddWriter(file, logging.STRUCTURED)
	return func() {
		logging.GlobalLogger.RemoveWriter(file)
		_ = file.Close()
	}, nil
}
