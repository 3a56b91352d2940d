package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netplot/pkg/geodata"
	"github.com/matzehuels/netplot/pkg/render"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for netplot.

Bash:
  $ source <(netplot completion bash)

Zsh:
  $ netplot completion zsh > "${fpath[1]}/_netplot"

Fish:
  $ netplot completion fish > ~/.config/fish/completions/netplot.fish

PowerShell:
  PS> netplot completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// registerFlagCompletions completes the enumerated flag values of cmd.
// Flags cmd does not define are skipped.
func registerFlagCompletions(cmd *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}

	var formats, engines []string
	for f := range render.ValidFormats {
		formats = append(formats, string(f))
	}
	for e := range geodata.ValidEngines {
		engines = append(engines, string(e))
	}
	slices.Sort(formats)
	slices.Sort(engines)

	if cmd.Flags().Lookup("format") != nil {
		_ = cmd.RegisterFlagCompletionFunc("format", fixed(formats...))
	}
	if cmd.Flags().Lookup("engine") != nil {
		_ = cmd.RegisterFlagCompletionFunc("engine", fixed(engines...))
	}
	for _, name := range []string{"bus-size", "ext-grid-size", "trafo-size"} {
		if cmd.Flags().Lookup(name) != nil {
			_ = cmd.RegisterFlagCompletionFunc(name, fixed("1", "abs:", "off"))
		}
	}
}
