package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/output"
)

var completionNoDesc bool

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate a completion script for your shell.

Load it for the current session:
  source <(instaintelli completion bash)
  source <(instaintelli completion zsh)
  instaintelli completion fish | source

Install it for every session:
  instaintelli completion bash > /etc/bash_completion.d/instaintelli
  instaintelli completion zsh > "${fpath[1]}/_instaintelli"
  instaintelli completion fish > ~/.config/fish/completions/instaintelli.fish
  instaintelli completion powershell >> $PROFILE
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, desc := output.Stdout, !completionNoDesc
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(w, desc)
		case "zsh":
			if desc {
				return rootCmd.GenZshCompletion(w)
			}
			return rootCmd.GenZshCompletionNoDesc(w)
		case "fish":
			return rootCmd.GenFishCompletion(w, desc)
		case "powershell":
			if desc {
				return rootCmd.GenPowerShellCompletionWithDesc(w)
			}
			return rootCmd.GenPowerShellCompletion(w)
		}
		return fmt.Errorf("unknown shell: %s", args[0])
	},
}

func init() {
	completionCmd.Flags().BoolVar(&completionNoDesc, "no-descriptions", false, "Omit command descriptions from completions")
	rootCmd.AddCommand(completionCmd)
}
