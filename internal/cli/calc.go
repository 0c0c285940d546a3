package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/streamnet/pkg/pipeline"
)

// calcCommand creates the calc command for network attribute aggregation.
func (c *CLI) calcCommand() *cobra.Command {
	var configPath string
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "calc [topology.csv] [locals.csv]",
		Short: "Aggregate attributes over each segment's network",
		Long: `Aggregate attributes over each segment's network.

The calc command runs the full pipeline: it resolves the topology, computes
every segment's network, and reduces each numeric column of the local
attribute table over that network. Supported calculations are sum, min,
max, and weighted_avg; alongside every aggregated value a weighted
missing-data percentage is reported unless --no-missing is set.

Results are written as CSV with n_<column> (and mn_<column>) headers; the
default output path is n_<calc>_<locals.csv> next to the input.

For networks too large to aggregate in memory, --store streams each
segment's network to a compressed on-disk closure store during traversal
and reads it back during aggregation.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TopologyPath = args[0]
			opts.LocalPath = args[1]
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.apply(&opts)
			if opts.StorePath != "" {
				opts.Mode = pipeline.ModeDisk
			}
			return c.runCalc(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default streamnet.toml if present)")
	cmd.Flags().StringVarP(&opts.CalcType, "calc", "c", "", "calculation: sum, min, max, weighted_avg (required)")
	cmd.Flags().StringVar(&opts.IDColumn, "id-col", "", "segment id column (default comid)")
	cmd.Flags().StringVar(&opts.ToColumn, "to-col", "", "downstream node column (default tonode)")
	cmd.Flags().StringVar(&opts.FromColumn, "from-col", "", "upstream node column (default fromnode)")
	cmd.Flags().StringVarP(&opts.WeightColumn, "weight-col", "w", "", "weight column for weighted_avg and missing percentages")
	cmd.Flags().StringSliceVar(&opts.DropColumns, "drop", nil, "local columns to ignore")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", "", "traversal direction: up (default), down")
	cmd.Flags().BoolVar(&opts.SkipSelf, "exclude-self", false, "exclude each segment from its own network")
	cmd.Flags().BoolVar(&opts.SkipMissing, "no-missing", false, "skip mn_<column> missing-percentage columns")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, fmt.Sprintf("aggregation worker count (default %d)", pipeline.DefaultWorkers))
	cmd.Flags().IntVar(&opts.Precision, "precision", 0, fmt.Sprintf("output decimal precision (default %d)", pipeline.DefaultPrecision))
	cmd.Flags().StringVar(&opts.StorePath, "store", "", "stream networks through a closure store (file path, redis:// or mongodb:// URL)")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "output CSV path (default n_<calc>_<locals>)")

	_ = cmd.MarkFlagRequired("calc")

	return cmd
}

// runCalc executes the full pipeline and reports the output location.
func (c *CLI) runCalc(ctx context.Context, opts pipeline.Options) error {
	runner := c.newRunner()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Aggregating %s...", opts.CalcType))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Aggregation failed")
		return err
	}
	spinner.Stop()

	printSuccess("Aggregated %d segments", result.Table.Len())
	printStats(result.Stats.Segments, result.Stats.Headwaters, result.Stats.Unreached)
	if result.Stats.Unreached > 0 {
		printWarning("%d segments sit on cycles and were not finalized", result.Stats.Unreached)
	}
	if result.Stats.UnknownLocal > 0 {
		printWarning("%d local rows matched no topology segment", result.Stats.UnknownLocal)
	}
	printFile(result.OutputPath)

	return nil
}
