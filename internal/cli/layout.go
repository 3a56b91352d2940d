package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/plot"
	"github.com/matzehuels/netplot/pkg/scale"
)

// layoutCommand creates the layout command, which writes a network back
// out with synthesized bus coordinates.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		input, name, output string
		noCache, force      bool
		flags               plotFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [network.json|network.toml]",
		Short: "Synthesize bus coordinates for a network",
		Long: `Synthesize bus coordinates for a network without geodata and write the
network with the coordinates included.

Networks that already carry geodata are written unchanged unless --force is
given, which discards all existing bus and line geodata first. The output
format follows the output file extension (.toml or .json).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				input = args[0]
			}
			opts, err := flags.apply(cmd.Flags(), c.Config.Plot.Options())
			if err != nil {
				return err
			}
			net, err := c.loadNetwork(cmd.Context(), input, name)
			if err != nil {
				return err
			}
			if net == nil {
				net = network.Example()
			}
			if output == "" {
				output = layoutOutput(input, net.Name)
			}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), net, opts, output, noCache, force)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for JSON on stdout (default: <input>.geo.json)`)
	cmd.Flags().StringVar(&name, "network", "", "lay out a network from the configured network store")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&force, "force", false, "discard existing geodata and recompute")
	flags.registerLayout(cmd.Flags())
	registerFlagCompletions(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, stdout io.Writer, net *network.Network, opts plot.Options, output string, noCache, force bool) error {
	logger := loggerFromContext(ctx)

	if force {
		clearGeodata(net)
	}

	stats := plotStats{buses: len(net.Buses), lines: len(net.Lines)}
	if net.HasGeodata() {
		printWarning("%s already has geodata; use --force to recompute", net.Name)
	} else {
		cc := c.newCache(ctx, noCache)
		defer cc.Close()

		// Only coordinates are needed, so no marker collections.
		opts.BusSize, opts.ExtGridSize, opts.TrafoSize = scale.Off(), scale.Off(), scale.Off()

		prog := newProgress(logger)
		spinner := newSpinner(ctx, "Synthesizing coordinates...")
		spinner.Start()
		res, err := plot.New(nil, plot.WithCache(cc), plot.WithKeyer(c.keyer()), plot.WithLogger(logger)).Build(ctx, net, opts)
		if err != nil {
			spinner.StopWithError("Layout failed")
			return err
		}
		spinner.Stop()
		prog.done("Synthesized coordinates for " + net.Name)
		stats = statsOf(res)
	}

	if output == stdoutPath {
		return network.Write(stdout, net, network.FormatJSON)
	}
	if err := network.WriteFile(net, output); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	printSuccess("Wrote %s", net.Name)
	printFile(output)
	printStats(stats)
	printNextStep("Plot it", fmt.Sprintf("%s plot %s", appName, output))
	return nil
}

func clearGeodata(net *network.Network) {
	for i := range net.Buses {
		net.Buses[i].Geo = nil
	}
	for i := range net.Lines {
		net.Lines[i].Geo = nil
	}
}

// layoutOutput derives <base>.geo.<ext>, keeping a TOML input as TOML.
func layoutOutput(input, name string) string {
	if input == "" {
		return name + ".geo.json"
	}
	ext := filepath.Ext(input)
	if !strings.EqualFold(ext, ".toml") {
		ext = ".json"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".geo" + ext
}
