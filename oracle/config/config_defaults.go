package config

import "github.com/rs/zerolog"

// DefaultCheatCodeAddress is the address the cheat code contract is conventionally deployed at. It is excluded from
// address generation by default.
const DefaultCheatCodeAddress = "0x7109709ECfa91a80626fF3989D68f67F5b1DD12D"

// GetDefaultProjectConfig obtains a default configuration for a project.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Oracle: OracleConfig{
			Seed:               "",
			MaxAddressAttempts: 256,
			MaxBytesLength:     1 << 20,
			ExcludedAddresses: []string{
				DefaultCheatCodeAddress,
			},
			ArbitraryAddresses: []string{},
			JournalDirectory:   "",
		},
		Logging: LoggingConfig{
			Level:                zerolog.InfoLevel,
			EnableConsoleLogging: true,
			LogDirectory:         "",
		},
	}
}
