package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netdiag/internal/watcher"
	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/pipeline"
)

// runCommand creates the run command: table in, diagram and topology.yaml out.
func (c *CLI) runCommand() *cobra.Command {
	var (
		formatsStr string
		watch      bool
	)
	opts := pipeline.Options{
		Input:     pipeline.DefaultInput,
		OutputDir: pipeline.DefaultOutputDir,
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the topology and render the diagram",
		Long: `Build the topology described by a table and write the diagram and the
topology document to the output directory.

The table needs a header row. Columns are matched by name, in any order:
Name, Role, Interface, Network, VLAN, Network IP, Mask, Device IP and
Default Gateway. Missing columns read as empty.

Results are cached, so rerunning on an unchanged table is instant. With
--watch the diagram is rebuilt whenever the table is saved.`,
		Example: `  netdiag run
  netdiag run -i lab.csv -o out --format png,svg
  netdiag run -i lab.csv --renderer d2 --format svg
  netdiag run -i lab.csv --format png --scale 2
  netdiag run -i lab.csv --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = pipeline.ParseFormats(formatsStr)
			c.Config.pipelineOptions(cmd, &opts)
			opts.Logger = c.Logger
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), opts, watch)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", opts.Input, "input table")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", opts.OutputDir, "output directory")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", ",", "field delimiter of the table")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "diagram format(s): png (default), svg, pdf, dot, d2 (comma-separated)")
	cmd.Flags().StringVar(&opts.Engine, "engine", pipeline.DefaultEngine, "graphviz layout engine: neato, dot, fdp, sfdp, circo, twopi")
	cmd.Flags().StringVar(&opts.Renderer, "renderer", pipeline.DefaultRenderer, "diagram renderer: graphviz, d2")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show VLANs and interface addresses in the diagram")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "rasterize PNG at this scale via rsvg-convert (graphviz renderer)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "document name (default: output directory name)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild when the input changes")

	return cmd
}

// runBuild builds once and, with watch set, again on every input change
// until ctx is cancelled.
func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options, watch bool) error {
	runner, err := c.newRunner(ctx, opts.NoCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := c.build(ctx, runner, opts); err != nil {
		if !watch {
			return err
		}
		printError("%s", errors.UserMessage(err))
	}
	if !watch {
		printNextStep("Inspect the topology", "netdiag inspect -i "+opts.Input)
		return nil
	}

	w := watcher.New(opts.Input, c.Logger, func(ctx context.Context) {
		prog := newProgress(c.Logger)
		if err := c.build(ctx, runner, opts); err != nil {
			printError("%s", errors.UserMessage(err))
			return
		}
		prog.done("Rebuilt diagram")
	})
	return w.Watch(ctx)
}

// build runs the pipeline once and reports the written files.
func (c *CLI) build(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) error {
	spinner := newSpinner(ctx, "Building topology from "+opts.Input+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	printSuccess("Built topology %s", StyleHighlight.Render(opts.Name))
	printStats(result.Stats, result.CacheInfo.ParseHit && result.CacheInfo.RenderHit)
	for _, f := range result.Files {
		printFile(f)
	}
	return nil
}
