package config

import (
	"encoding/json"
	"os"

	"github.com/crytic/arbiter/oracle/seed"
	"github.com/crytic/arbiter/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// ProjectConfig describes the configuration of a project using the oracle.
type ProjectConfig struct {
	// Oracle describes the configuration used to construct the oracle.
	Oracle OracleConfig `json:"oracle" yaml:"oracle"`

	// Logging describes the configuration used for logging to file and console
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// OracleConfig describes the configuration options used by oracle.Oracle.
type OracleConfig struct {
	// Seed describes the seed the oracle starts from, as hex or decimal. If empty, the default seed is used, so runs
	// are reproducible out of the box.
	Seed string `json:"seed" yaml:"seed"`

	// MaxAddressAttempts describes how many candidates an address request draws before it fails.
	MaxAddressAttempts int `json:"maxAddressAttempts" yaml:"maxAddressAttempts"`

	// MaxBytesLength describes the largest byte sequence a single request may ask for.
	MaxBytesLength int `json:"maxBytesLength" yaml:"maxBytesLength"`

	// ExcludedAddresses describes addresses that are never generated, such as the harness controller.
	ExcludedAddresses []string `json:"excludedAddresses" yaml:"excludedAddresses"`

	// ArbitraryAddresses describes addresses placed in arbitrary storage mode when the oracle is created.
	ArbitraryAddresses []string `json:"arbitraryAddresses" yaml:"arbitraryAddresses"`

	// JournalDirectory describes the directory in which run seeds are journaled. If empty, no journal is kept.
	JournalDirectory string `json:"journalDirectory" yaml:"journalDirectory"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level" yaml:"level"`

	// EnableConsoleLogging describes whether console logging is enabled
	EnableConsoleLogging bool `json:"enableConsoleLogging" yaml:"enableConsoleLogging"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory" yaml:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON or YAML-serialized ProjectConfig from a provided file path. Fields absent
// from the file keep their default values. Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration over the defaults
	projectConfig := GetDefaultProjectConfig()
	if utils.IsYAMLPath(path) {
		err = yaml.Unmarshal(b, projectConfig)
	} else {
		err = json.Unmarshal(b, projectConfig)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse project config '%s'", path)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to the provided file path, as YAML if the path carries a YAML extension and as
// JSON otherwise. Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	var (
		b   []byte
		err error
	)
	if utils.IsYAMLPath(path) {
		b, err = yaml.Marshal(p)
	} else {
		b, err = json.MarshalIndent(p, "", "\t")
	}
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	if err := p.Oracle.Validate(); err != nil {
		return err
	}

	// Verify the log level is one zerolog knows about
	if p.Logging.Level < zerolog.TraceLevel || p.Logging.Level > zerolog.Disabled {
		return errors.Errorf("log level %d is not valid", p.Logging.Level)
	}
	return nil
}

// Validate validates that the OracleConfig meets certain requirements.
// Returns an error if one occurs.
func (o *OracleConfig) Validate() error {
	// Verify the seed parses, if one was provided
	if _, err := o.ParsedSeed(); err != nil {
		return err
	}

	// Verify the address attempt bound is positive, otherwise every address request fails
	if o.MaxAddressAttempts <= 0 {
		return errors.Errorf("max address attempts must be a positive number")
	}

	// Verify the bytes length bound is positive, a zero bound would fall back to the generator default
	if o.MaxBytesLength <= 0 {
		return errors.Errorf("max bytes length must be a positive number")
	}

	// Verify addresses are well-formed
	if _, err := o.ParsedExcludedAddresses(); err != nil {
		return errors.Errorf("malformed excluded address(es): %v", err)
	}
	if _, err := o.ParsedArbitraryAddresses(); err != nil {
		return errors.Errorf("malformed arbitrary address(es): %v", err)
	}
	return nil
}

// ParsedSeed returns the configured seed, or seed.DefaultSeed if none is configured.
func (o *OracleConfig) ParsedSeed() (seed.Seed, error) {
	if o.Seed == "" {
		return seed.DefaultSeed, nil
	}
	return seed.ParseSeed(o.Seed)
}

// ParsedExcludedAddresses returns the configured excluded addresses.
func (o *OracleConfig) ParsedExcludedAddresses() ([]common.Address, error) {
	return utils.HexStringsToAddresses(o.ExcludedAddresses)
}

// ParsedArbitraryAddresses returns the configured arbitrary storage addresses.
func (o *OracleConfig) ParsedArbitraryAddresses() ([]common.Address, error) {
	return utils.HexStringsToAddresses(o.ArbitraryAddresses)
}
