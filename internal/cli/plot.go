package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netplot/pkg/artifact"
	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/plot"
	"github.com/matzehuels/netplot/pkg/render"
)

// stdoutPath selects standard output for -o.
const stdoutPath = "-"

// plotRun holds the resolved inputs of one plot invocation.
type plotRun struct {
	input   string
	network string
	output  string
	format  render.Format
	opts    plot.Options
	noCache bool
	upload  bool
}

// plotCommand creates the plot command.
func (c *CLI) plotCommand() *cobra.Command {
	var (
		run    plotRun
		format string
		flags  plotFlags
	)

	cmd := &cobra.Command{
		Use:   "plot [network.json|network.toml]",
		Short: "Plot a power network",
		Long: `Plot a power network to SVG, PNG, PDF or JSON.

The network is read from a JSON or TOML file, or from the configured network
store with --network. Without either, the bundled example network is plotted.

Networks without bus and line geodata get synthesized coordinates. Layouts
are cached by topology, so plotting the same network again is fast.`,
		Example: `  netplot plot grid.json
  netplot plot grid.toml -f png -o grid.png --bus-size abs:0.2
  netplot plot --network feeder-7 --upload
  netplot plot -o - > example.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				run.input = args[0]
			}
			if run.input != "" && run.network != "" {
				return errors.New(errors.ErrCodeInvalidInput, "a network file and --network are mutually exclusive")
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			run.format = f

			refresh := run.opts.Refresh
			opts, err := flags.apply(cmd.Flags(), c.Config.Plot.Options())
			if err != nil {
				return err
			}
			opts.Refresh = refresh
			run.opts = opts

			return c.runPlot(cmd.Context(), cmd.OutOrStdout(), run)
		},
	}

	cmd.Flags().StringVarP(&run.output, "output", "o", "", `output file, "-" for stdout (default: <input>.<format>)`)
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatSVG), "output format: svg, png, pdf, json")
	cmd.Flags().StringVar(&run.network, "network", "", "plot a network from the configured network store")
	cmd.Flags().BoolVar(&run.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&run.opts.Refresh, "refresh", false, "recompute the layout even when cached")
	cmd.Flags().BoolVar(&run.upload, "upload", false, "upload the result to the configured artifact store")
	flags.register(cmd.Flags())
	registerFlagCompletions(cmd)

	return cmd
}

// runPlot loads the network, plots it and writes or uploads the canvas.
func (c *CLI) runPlot(ctx context.Context, stdout io.Writer, run plotRun) error {
	logger := loggerFromContext(ctx)

	net, err := c.loadNetwork(ctx, run.input, run.network)
	if err != nil {
		return err
	}

	r, err := render.New(run.format, run.opts.RendererOptions()...)
	if err != nil {
		return err
	}
	cc := c.newCache(ctx, run.noCache)
	defer cc.Close()

	p := plot.New(r, plot.WithCache(cc), plot.WithKeyer(c.keyer()), plot.WithLogger(logger))

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Plotting network...")
	spinner.Start()
	res, err := p.Plot(ctx, net, run.opts)
	if err != nil {
		spinner.StopWithError("Plot failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Plotted %s as %s", res.Network.Name, res.Format))

	if run.output == stdoutPath {
		_, err := stdout.Write(res.Canvas)
		return err
	}

	if run.upload {
		if err := c.upload(ctx, res); err != nil {
			return err
		}
		if run.output == "" {
			printStats(statsOf(res))
			return nil
		}
	}

	path := run.output
	if path == "" {
		path = defaultOutput(run.input, run.network, run.format.Ext())
	}
	if err := os.WriteFile(path, res.Canvas, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Plotted %s", res.Network.Name)
	printFile(path)
	printStats(statsOf(res))
	return nil
}

// upload stores the canvas in the artifact store and prints its location.
func (c *CLI) upload(ctx context.Context, res *plot.Result) error {
	store, err := c.openArtifactStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	info, err := store.Put(ctx, artifact.NewKey("plots", res.Format.Ext()), res.Canvas, res.Format.ContentType())
	if err != nil {
		return err
	}
	printSuccess("Uploaded %s", info.Key)
	printFile(info.Location)
	return nil
}

// loadNetwork reads the network from a file or the network store. It
// returns nil when neither is given, which plots the example network.
func (c *CLI) loadNetwork(ctx context.Context, path, name string) (*network.Network, error) {
	switch {
	case path != "":
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "network file %s not found", path)
		}
		n, err := network.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidNetwork, err, "load network")
		}
		if n.Name == "" {
			n.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return n, nil

	case name != "":
		store, err := c.openNetworkStore(ctx)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Get(ctx, name)
	}
	return nil, nil
}

// defaultOutput derives <base>.<ext> from the input file or network name.
func defaultOutput(input, name, ext string) string {
	switch {
	case input != "":
		return strings.TrimSuffix(input, filepath.Ext(input)) + "." + ext
	case name != "":
		return name + "." + ext
	}
	return "example." + ext
}

func statsOf(res *plot.Result) plotStats {
	return plotStats{
		buses:       res.Stats.Buses,
		lines:       res.Stats.Lines,
		components:  res.Stats.Components,
		synthesized: res.Synthesized,
		cached:      res.CacheHit,
	}
}
