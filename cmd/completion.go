package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion bash|zsh|fish",
	Short: "Generate shell completion code for the specified shell",
	Long: `To load completions:

Bash:

  $ source <(arbiter completion bash)

Zsh:

  $ arbiter completion zsh > "${fpath[1]}/_arbiter"

Fish:

  $ arbiter completion fish | source`,
	ValidArgs: []string{"bash", "zsh", "fish"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		}
		return fmt.Errorf("unsupported shell %q", args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// unusedFlags returns the flags of the command that have not been set yet, with their "--" prefix, for dynamic
// completion.
func unusedFlags(cmd *cobra.Command) []string {
	var unused []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unused = append(unused, "--"+flag.Name)
		}
	})
	return unused
}

// cmdValidScriptArgs completes the unused flags of a command taking a single script file. Files are completed by the
// shell once the script has not been provided yet.
func cmdValidScriptArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return unusedFlags(cmd), cobra.ShellCompDirectiveDefault
	}
	return unusedFlags(cmd), cobra.ShellCompDirectiveNoFileComp
}
