package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/streamnet/pkg/pipeline"
	"github.com/matzehuels/streamnet/pkg/viz"
)

// vizCommand creates the viz command for rendering topology diagrams.
func (c *CLI) vizCommand() *cobra.Command {
	var (
		configPath string
		format     string
		output     string
		detailed   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "viz [topology.csv]",
		Short: "Render a network diagram from a topology table",
		Long: `Render a network diagram from a topology table.

The viz command resolves the topology and draws it as a directed graph:
edges run from each segment to the segments it flows into, and segments
without upstream parents are shaded as traversal seeds.

Output is Graphviz DOT by default, or a rendered SVG with --format svg.
Large networks render slowly as SVG; DOT output can be piped to any
Graphviz tool instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TopologyPath = args[0]
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.apply(&opts)
			format = strings.ToLower(format)
			if format != "dot" && format != "svg" {
				return fmt.Errorf("unknown format %q (want dot or svg)", format)
			}
			return c.runViz(cmd.Context(), opts, format, output, detailed)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default streamnet.toml if present)")
	cmd.Flags().StringVar(&opts.IDColumn, "id-col", "", "segment id column (default comid)")
	cmd.Flags().StringVar(&opts.ToColumn, "to-col", "", "downstream node column (default tonode)")
	cmd.Flags().StringVar(&opts.FromColumn, "from-col", "", "upstream node column (default fromnode)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", "", "traversal direction: up (default), down")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <topology>.dot or .svg)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include internal ids in node labels")

	return cmd
}

// runViz ingests the topology and writes the diagram.
func (c *CLI) runViz(ctx context.Context, opts pipeline.Options, format, output string, detailed bool) error {
	runner := c.newRunner()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Resolving topology...")
	spinner.Start()

	topo, err := runner.Ingest(ctx, opts)
	if err != nil {
		spinner.StopWithError("Topology ingestion failed")
		return err
	}
	spinner.Stop()
	printSuccess("Resolved %d segments", topo.IDs.Len())

	dot := viz.ToDOT(topo, viz.Options{Detailed: detailed})
	data := []byte(dot)

	if format == "svg" {
		spinner = newSpinnerWithContext(ctx, "Rendering SVG...")
		spinner.Start()
		data, err = viz.RenderSVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return fmt.Errorf("render svg: %w", err)
		}
		spinner.Stop()
	}

	if output == "" {
		output = defaultVizOutput(opts.TopologyPath, format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered network diagram")
	printFile(output)
	return nil
}

// defaultVizOutput derives the diagram path from the topology path.
func defaultVizOutput(topologyPath, format string) string {
	base := filepath.Base(topologyPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(topologyPath), base+"."+format)
}
