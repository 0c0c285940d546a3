package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/streamnet/pkg/pipeline"
	"github.com/matzehuels/streamnet/pkg/store"
)

// buildCommand creates the build command for topology ingestion and traversal.
func (c *CLI) buildCommand() *cobra.Command {
	var configPath string
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "build [topology.csv]",
		Short: "Build segment networks from a topology table",
		Long: `Build segment networks from a topology table.

The build command reads a topology CSV (segment id plus to/from node
endpoints), resolves which segments flow into which, and computes every
segment's full upstream network in a single pass.

With --store the networks are persisted to a closure store that later
'calc' runs can aggregate against without holding them in memory, and that
'serve' can expose over HTTP. The store target is a file path, or a
redis:// / mongodb:// URL with the build namespace as the fragment
(redis://localhost:6379#basinA). Without --store, build is a dry run that
reports network statistics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TopologyPath = args[0]
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.apply(&opts)
			if opts.StorePath != "" {
				opts.Mode = pipeline.ModeDisk
			}
			return c.runBuild(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default streamnet.toml if present)")
	cmd.Flags().StringVar(&opts.IDColumn, "id-col", "", "segment id column (default comid)")
	cmd.Flags().StringVar(&opts.ToColumn, "to-col", "", "downstream node column (default tonode)")
	cmd.Flags().StringVar(&opts.FromColumn, "from-col", "", "upstream node column (default fromnode)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", "", "traversal direction: up (default), down")
	cmd.Flags().BoolVar(&opts.SkipSelf, "exclude-self", false, "exclude each segment from its own network")
	cmd.Flags().StringVar(&opts.StorePath, "store", "", "persist networks to a closure store (file path, redis:// or mongodb:// URL)")

	return cmd
}

// runBuild ingests the topology and traverses it, reporting statistics.
func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options) error {
	runner := c.newRunner()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Resolving topology...")
	spinner.Start()

	topo, err := runner.Ingest(ctx, opts)
	if err != nil {
		spinner.StopWithError("Topology ingestion failed")
		return err
	}

	spinner.UpdateMessage("Computing networks...")
	closure, err := runner.Traverse(ctx, topo, opts)
	if err != nil {
		spinner.StopWithError("Traversal failed")
		return err
	}
	spinner.Stop()

	printSuccess("Resolved %d segments", topo.IDs.Len())
	if topo.Headwaters > 0 {
		printDetail("%d headwater segments seed the traversal", topo.Headwaters)
	}
	printSuccess("Computed %d networks", closure.Finalized)
	printStats(topo.IDs.Len(), topo.Headwaters, len(closure.Unreached))
	if len(closure.Unreached) > 0 {
		printWarning("%d segments sit on cycles and were not finalized", len(closure.Unreached))
	}

	printNewline()

	if opts.Mode == pipeline.ModeDisk {
		if !store.IsRemote(opts.StorePath) {
			manifest, err := runner.PersistManifest(topo, closure, opts)
			if err != nil {
				return err
			}
			printDetail("build %s", manifest.BuildID)
		}
		printFile(opts.StorePath)
		printNextStep("Aggregate against the store",
			fmt.Sprintf("%s calc %s <locals.csv> --calc sum --store %s", appName, opts.TopologyPath, opts.StorePath))
	} else {
		printNextStep("Aggregate attributes",
			fmt.Sprintf("%s calc %s <locals.csv> --calc sum", appName, opts.TopologyPath))
	}

	return nil
}
