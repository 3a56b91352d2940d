package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netplot/pkg/errors"
)

// networksCommand creates the command group for the network store.
func (c *CLI) networksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "Manage networks in the configured network store",
	}

	cmd.AddCommand(c.networksListCommand())
	cmd.AddCommand(c.networksPutCommand())
	cmd.AddCommand(c.networksDeleteCommand())

	return cmd
}

func (c *CLI) networksListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openNetworkStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No networks stored")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (c *CLI) networksPutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <network.json|network.toml>",
		Short: "Store a network file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			net, err := c.loadNetwork(cmd.Context(), path, "")
			if err != nil {
				return err
			}
			net.Name = name

			store, err := c.openNetworkStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Put(cmd.Context(), name, net); err != nil {
				return err
			}
			printSuccess("Stored %s", name)
			printStats(plotStats{buses: len(net.Buses), lines: len(net.Lines)})
			printNextStep("Plot it", fmt.Sprintf("%s plot --network %s", appName, name))
			return nil
		},
	}
}

func (c *CLI) networksDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openNetworkStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, errors.ErrCodeNetworkNotFound) {
					printWarning("%s is not stored", args[0])
					return nil
				}
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
