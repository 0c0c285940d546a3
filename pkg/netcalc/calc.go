package netcalc

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/streamnet/pkg/errors"
	"github.com/matzehuels/streamnet/pkg/network"
)

// Resolver fetches a closure by internal id when closures are not held
// inline. A closure store's read half satisfies this.
type Resolver interface {
	Get(ctx context.Context, id int64) ([]int64, error)
}

// Options configures one aggregation run.
type Options struct {
	// CalcType selects the reduction. Required.
	CalcType CalcType

	// IncludeMissing adds a weighted missing-data percentage column per
	// variable.
	IncludeMissing bool

	// Workers bounds the fan-out over multi-ancestor segments. Values
	// below 2 run sequentially.
	Workers int

	// Resolver fetches closures for multi-ancestor segments whose
	// ancestors were streamed to a store. Required when the partition
	// carries bare ids; ignored for inline closures.
	Resolver Resolver
}

// Run aggregates every variable of the local table over each finalized
// segment's closure and returns one row per segment.
//
// The partition drives the work: no-ancestor segments have nothing to
// aggregate over and come back all-missing, one-ancestor segments copy
// their local row through, and multi-ancestor segments reduce over their
// full closure. Multi-ancestor segments are split into contiguous chunks
// across the worker pool; the first error cancels the remaining workers.
func Run(ctx context.Context, part *network.Partition, locals *LocalTable, opts Options) (*ResultTable, error) {
	result := &ResultTable{
		vars:           locals.Vars(),
		includeMissing: opts.IncludeMissing,
		rows:           make([]Row, 0, part.Total()),
	}
	nvars := len(locals.Vars())

	// Every output field of a no-ancestor segment is missing. No reduction
	// runs and no closure is fetched; the rows share one NaN slice.
	allMissing := make([]float64, nvars)
	for v := range allMissing {
		allMissing[v] = math.NaN()
	}
	for _, id := range part.NoAncestors {
		result.rows = append(result.rows, newRow(id, allMissing, allMissing, opts.IncludeMissing))
	}

	for _, id := range part.OneAncestor {
		vals := make([]float64, nvars)
		miss := make([]float64, nvars)
		for v := 0; v < nvars; v++ {
			vals[v], miss[v] = copyThrough(locals, v, id)
		}
		result.rows = append(result.rows, newRow(id, vals, miss, opts.IncludeMissing))
	}

	multiRows := make([]Row, len(part.Multi))
	process := func(ctx context.Context, i int) error {
		seg := part.Multi[i]
		closure := seg.Ancestors
		if closure == nil {
			if opts.Resolver == nil {
				return errors.New(errors.ErrCodeInternal,
					"segment %d has no inline closure and no resolver is configured", seg.ID)
			}
			var err error
			closure, err = opts.Resolver.Get(ctx, seg.ID)
			if err != nil {
				return errors.Wrap(errors.ErrCodeNotFound, err,
					"fetch closure of segment %d", seg.ID)
			}
		}
		vals := make([]float64, nvars)
		miss := make([]float64, nvars)
		for v := 0; v < nvars; v++ {
			vals[v], miss[v] = reduce(opts.CalcType, locals, v, closure)
		}
		multiRows[i] = newRow(seg.ID, vals, miss, opts.IncludeMissing)
		return nil
	}

	if opts.Workers > 1 && len(part.Multi) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		workers := opts.Workers
		if workers > len(part.Multi) {
			workers = len(part.Multi)
		}
		chunk := (len(part.Multi) + workers - 1) / workers
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := min(lo+chunk, len(part.Multi))
			if lo >= hi {
				break
			}
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					if err := process(gctx, i); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, errors.Wrap(errors.ErrCodePoolFailure, err, "aggregation worker failed")
		}
	} else {
		for i := range part.Multi {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := process(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	result.rows = append(result.rows, multiRows...)
	result.sortByID()
	return result, nil
}

func newRow(id int64, vals, miss []float64, includeMissing bool) Row {
	row := Row{ID: id, Values: vals}
	if includeMissing {
		row.Missing = miss
	}
	return row
}
