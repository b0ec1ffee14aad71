package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSemVer verifies the build version parses as a semantic version.
func TestSemVer(t *testing.T) {
	v, err := GetInfo().SemVer()
	require.NoError(t, err)
	assert.Equal(t, Version, v.String())

	_, err = Info{Version: "not-a-version"}.SemVer()
	assert.Error(t, err)
}

// TestInfoFormatting verifies commit suffixes in the short and long version strings.
func TestInfoFormatting(t *testing.T) {
	info := Info{Version: "1.2.3", GitCommit: "0123456789abcdef", GitTreeDirty: true, GoVersion: "go1.23.0"}
	assert.Equal(t, "1.2.3+0123456-dirty", info.Short())
	assert.True(t, strings.HasPrefix(info.String(), "arbiter version 1.2.3\n"))
	assert.Contains(t, info.String(), "0123456-dirty")
	assert.Equal(t, "unknown", info.FormattedTime())

	info = Info{Version: "1.2.3"}
	assert.Equal(t, "1.2.3", info.Short())
	assert.NotContains(t, info.String(), "Commit")
}
