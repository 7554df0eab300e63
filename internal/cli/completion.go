package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fusiongraph/pkg/mfg"
	"github.com/matzehuels/fusiongraph/pkg/render"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for fusiongraph. Besides commands and flags,
the scripts complete the values of --mode and --format.

  $ source <(fusiongraph completion bash)
  $ fusiongraph completion zsh > "${fpath[1]}/_fusiongraph"
  $ fusiongraph completion fish > ~/.config/fish/completions/fusiongraph.fish
  PS> fusiongraph completion powershell | Out-String | Invoke-Expression

Start a new shell after installing a script.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}

// completeModes completes --mode with the hierarchy assembly modes.
func completeModes(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("mode", cobra.FixedCompletions(
		[]string{string(mfg.ModeFlat), string(mfg.ModeLazy)}, cobra.ShellCompDirectiveNoFileComp))
}

// completeFormats completes --format with the formats a command can write.
func completeFormats(cmd *cobra.Command, formats []render.Format) {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(names, cobra.ShellCompDirectiveNoFileComp))
}
