package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/streamnet/pkg/network"
	"github.com/matzehuels/streamnet/pkg/pipeline"
)

// exploreCommand creates the explore command for interactive network browsing.
func (c *CLI) exploreCommand() *cobra.Command {
	var configPath string
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "explore [topology.csv]",
		Short: "Browse segment networks interactively",
		Long: `Browse segment networks interactively.

The explore command resolves the topology, computes every segment's
network in memory, and opens a terminal browser: one row per segment with
its parent and child counts and network size. Press enter on a segment to
list the members of its network.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TopologyPath = args[0]
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.apply(&opts)
			// Browsing needs the closures inline.
			opts.Mode = pipeline.ModeMemory
			opts.StorePath = ""
			return c.runExplore(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default streamnet.toml if present)")
	cmd.Flags().StringVar(&opts.IDColumn, "id-col", "", "segment id column (default comid)")
	cmd.Flags().StringVar(&opts.ToColumn, "to-col", "", "downstream node column (default tonode)")
	cmd.Flags().StringVar(&opts.FromColumn, "from-col", "", "upstream node column (default fromnode)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", "", "traversal direction: up (default), down")
	cmd.Flags().BoolVar(&opts.SkipSelf, "exclude-self", false, "exclude each segment from its own network")

	return cmd
}

// runExplore ingests and traverses, then hands off to the browser.
func (c *CLI) runExplore(ctx context.Context, opts pipeline.Options) error {
	runner := c.newRunner()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing networks...")
	spinner.Start()

	topo, err := runner.Ingest(ctx, opts)
	if err != nil {
		spinner.StopWithError("Topology ingestion failed")
		return err
	}
	closure, err := runner.Traverse(ctx, topo, opts)
	if err != nil {
		spinner.StopWithError("Traversal failed")
		return err
	}
	spinner.Stop()

	entries := segmentEntries(topo, closure)
	model := NewSegmentListModel(entries)

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("explore: %w", err)
	}
	return nil
}

// segmentEntries flattens topology and closures into browser rows, one per
// segment in internal-id order.
func segmentEntries(topo *network.Topology, closure *network.ClosureResult) []SegmentEntry {
	n := topo.IDs.Len()
	parents := make([]int, n+1)
	children := make([]int, n+1)
	for _, l := range topo.Links {
		if l.ParentID == 0 {
			continue
		}
		parents[l.ID]++
		children[l.ParentID]++
	}

	// Closure per segment; unreached segments stay absent.
	ancestors := make(map[int64][]int64, n)
	for _, id := range closure.Partition.NoAncestors {
		ancestors[id] = nil
	}
	for _, id := range closure.Partition.OneAncestor {
		ancestors[id] = []int64{id}
	}
	for _, m := range closure.Partition.Multi {
		ancestors[m.ID] = m.Ancestors
	}
	unreached := make(map[int64]bool, len(closure.Unreached))
	for _, id := range closure.Unreached {
		unreached[id] = true
	}

	entries := make([]SegmentEntry, 0, n)
	for id := int64(1); id <= int64(n); id++ {
		ext, ok := topo.IDs.External(id)
		if !ok {
			continue
		}
		entry := SegmentEntry{
			External: ext,
			Parents:  parents[id],
			Children: children[id],
		}
		if unreached[id] {
			entry.Network = -1
		} else {
			ids := ancestors[id]
			entry.Network = len(ids)
			entry.Ancestors = make([]string, 0, len(ids))
			for _, aid := range ids {
				if aext, ok := topo.IDs.External(aid); ok {
					entry.Ancestors = append(entry.Ancestors, aext)
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
