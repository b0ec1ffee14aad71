package cmd

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "arbiter.json"

// ConfigFlagDescription describes the --config flag shared by commands reading a project configuration.
const ConfigFlagDescription = "path to config file (default is " + DefaultProjectConfigFilename + " in the working directory, if present)"

// SeedFlagDescription describes the --seed flag shared by commands constructing an oracle.
const SeedFlagDescription = "seed to generate from, as 0x-prefixed hex or decimal (overrides the config file)"
