package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
)

// exampleCommand creates the example command, which prints the bundled
// example network as a starting point for hand-written networks.
func (c *CLI) exampleCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Write the bundled example network",
		Long: `Write the bundled medium voltage ring example network.

Without -o the network is printed to stdout in the format given by --format.
With -o the format follows the file extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			net := network.Example()
			if output == "" || output == stdoutPath {
				f := network.Format(format)
				if f != network.FormatJSON && f != network.FormatTOML {
					return errors.New(errors.ErrCodeInvalidFormat, "invalid network format %q (must be json or toml)", format)
				}
				return network.Write(cmd.OutOrStdout(), net, f)
			}
			if err := network.WriteFile(net, output); err != nil {
				return err
			}
			printSuccess("Wrote example network %s", net.Name)
			printFile(output)
			printNextStep("Plot it", appName+" plot "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", string(network.FormatJSON), "stdout format: json, toml")

	return cmd
}
