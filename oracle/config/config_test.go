package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/arbiter/oracle/seed"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfigIsValid verifies the default configuration validates and resolves to the default seed.
func TestDefaultConfigIsValid(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	require.NoError(t, projectConfig.Validate())

	s, err := projectConfig.Oracle.ParsedSeed()
	require.NoError(t, err)
	assert.Equal(t, seed.DefaultSeed, s)

	excluded, err := projectConfig.Oracle.ParsedExcludedAddresses()
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(DefaultCheatCodeAddress)}, excluded)
}

// TestValidate verifies invalid oracle and logging options are rejected.
func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(p *ProjectConfig)
	}{
		{"bad seed", func(p *ProjectConfig) { p.Oracle.Seed = "not-a-seed" }},
		{"zero address attempts", func(p *ProjectConfig) { p.Oracle.MaxAddressAttempts = 0 }},
		{"negative bytes length", func(p *ProjectConfig) { p.Oracle.MaxBytesLength = -1 }},
		{"zero bytes length", func(p *ProjectConfig) { p.Oracle.MaxBytesLength = 0 }},
		{"bad excluded address", func(p *ProjectConfig) { p.Oracle.ExcludedAddresses = []string{"0xqq"} }},
		{"bad arbitrary address", func(p *ProjectConfig) { p.Oracle.ArbitraryAddresses = []string{"xyz"} }},
		{"bad log level", func(p *ProjectConfig) { p.Logging.Level = zerolog.Level(42) }},
	}
	for _, tc := range testCases {
		projectConfig := GetDefaultProjectConfig()
		tc.modify(projectConfig)
		assert.Error(t, projectConfig.Validate(), tc.name)
	}
}

// TestConfigRoundTrip verifies configs written as JSON and YAML read back identically.
func TestConfigRoundTrip(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	projectConfig.Oracle.Seed = "0x1234"
	projectConfig.Oracle.ArbitraryAddresses = []string{"0x5615dEB798BB3E4dFa0139dFa1b3D433Cc23b72f"}
	projectConfig.Oracle.JournalDirectory = "runs"
	projectConfig.Logging.Level = zerolog.DebugLevel

	dir := t.TempDir()
	for _, name := range []string{"arbiter.json", "arbiter.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, projectConfig.WriteToFile(path))
		readConfig, err := ReadProjectConfigFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, projectConfig, readConfig, name)
	}
}

// TestPartialConfigKeepsDefaults verifies fields absent from a config file keep their default values.
func TestPartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"oracle": {"seed": "255"}}`), 0644))
	projectConfig, err := ReadProjectConfigFromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "255", projectConfig.Oracle.Seed)
	assert.Equal(t, GetDefaultProjectConfig().Oracle.MaxAddressAttempts, projectConfig.Oracle.MaxAddressAttempts)

	yamlPath := filepath.Join(dir, "partial.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("oracle:\n  maxBytesLength: 64\n"), 0644))
	projectConfig, err = ReadProjectConfigFromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 64, projectConfig.Oracle.MaxBytesLength)
	assert.Equal(t, "", projectConfig.Oracle.Seed)
}

// TestReadMalformedConfig verifies unreadable and unparsable files produce errors.
func TestReadMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadProjectConfigFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = ReadProjectConfigFromFile(path)
	assert.Error(t, err)
}
