package logging

// These constants are used to identify the various services that may do some logging. Each package creates a
// sub-logger keyed by "module" with one of these values.
const (
	// ORACLE_SERVICE is the constant used to identify the oracle package
	ORACLE_SERVICE = "oracle"
	// STORAGE_SERVICE is the constant used to identify the storage overlay
	STORAGE_SERVICE = "storage"
	// JOURNAL_SERVICE is the constant used to identify the run journal
	JOURNAL_SERVICE = "journal"
	// CHAIN_SERVICE is the constant used to identify the cheat code and tracing integration
	CHAIN_SERVICE = "chain"
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
)

// SEED_FIELD is the structured log key under which the active seed is recorded, so a failing run can be replayed
// with the same seed.
const SEED_FIELD = "seed"
