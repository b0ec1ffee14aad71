package journal

import (
	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// ErrIncompatibleVersion indicates a run recorded by a tool version whose generated values may differ from the
// running version's for the same seed.
var ErrIncompatibleVersion = errors.New("run was recorded by an incompatible version")

// CheckCompatibility verifies that replaying the record's seeds with the provided tool version reproduces the
// recorded run. Versions sharing a major version generate identical values for identical seeds.
// Returns ErrIncompatibleVersion if the major versions differ, or an error if either version cannot be parsed.
func CheckCompatibility(record *RunRecord, toolVersion string) error {
	recorded, err := semver.NewVersion(record.ToolVersion)
	if err != nil {
		return errors.Wrapf(err, "could not parse recorded version '%s'", record.ToolVersion)
	}
	running, err := semver.NewVersion(toolVersion)
	if err != nil {
		return errors.Wrapf(err, "could not parse running version '%s'", toolVersion)
	}
	if recorded.Major() != running.Major() {
		return errors.Wrapf(ErrIncompatibleVersion, "run %s was recorded by version %s, running %s", record.ID, recorded, running)
	}
	return nil
}
