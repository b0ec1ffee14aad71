package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCmdValidScriptArgs verifies completion offers only the flags that have not been set.
func TestCmdValidScriptArgs(t *testing.T) {
	cmd := &cobra.Command{Use: "script"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("seed", "", "")
	require.NoError(t, cmd.Flags().Set("seed", "0x01"))

	completions, directive := cmdValidScriptArgs(cmd, nil, "")
	assert.Equal(t, []string{"--config"}, completions)
	assert.Equal(t, cobra.ShellCompDirectiveDefault, directive)

	_, directive = cmdValidScriptArgs(cmd, []string{"script.yaml"}, "")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}
