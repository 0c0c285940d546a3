package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamnet/pkg/errors"
	"github.com/matzehuels/streamnet/pkg/io"
	"github.com/matzehuels/streamnet/pkg/netcalc"
	"github.com/matzehuels/streamnet/pkg/network"
	"github.com/matzehuels/streamnet/pkg/observability"
	"github.com/matzehuels/streamnet/pkg/store"
)

// Runner encapsulates pipeline execution.
//
// The Runner is stateless except for the logger - it doesn't store run
// results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner with the given logger.
// If logger is nil, the package default logger is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete ingest → traverse → aggregate → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Ingest
	ingestStart := time.Now()
	topo, err := r.Ingest(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Topology = topo
	result.Stats.IngestTime = time.Since(ingestStart)
	result.Stats.Segments = topo.IDs.Len()
	result.Stats.Headwaters = topo.Headwaters

	opts.Logger.Info("ingested topology",
		"segments", topo.IDs.Len(),
		"headwaters", topo.Headwaters,
		"duration", result.Stats.IngestTime)
	if topo.Headwaters > 0 {
		opts.Logger.Warn("segments without parents seed the traversal", "count", topo.Headwaters)
	}

	// Stage 2: Traverse
	traverseStart := time.Now()
	closure, err := r.Traverse(ctx, topo, opts)
	if err != nil {
		return nil, err
	}
	result.Closure = closure
	result.Stats.TraverseTime = time.Since(traverseStart)
	result.Stats.Unreached = len(closure.Unreached)

	opts.Logger.Info("traversed network",
		"finalized", closure.Finalized,
		"duration", result.Stats.TraverseTime)
	if len(closure.Unreached) > 0 {
		opts.Logger.Warn("segments on cycles were not finalized", "count", len(closure.Unreached))
	}

	if opts.Mode == ModeDisk && !store.IsRemote(opts.StorePath) {
		manifest, err := r.PersistManifest(topo, closure, opts)
		if err != nil {
			return nil, err
		}
		result.Manifest = manifest
	}

	// Stage 3: Aggregate
	calcStart := time.Now()
	table, unknown, err := r.Aggregate(ctx, topo, closure, opts)
	if err != nil {
		return nil, err
	}
	result.Table = table
	result.Stats.CalcTime = time.Since(calcStart)
	result.Stats.UnknownLocal = unknown

	opts.Logger.Info("aggregated values",
		"calc", opts.CalcType,
		"rows", table.Len(),
		"duration", result.Stats.CalcTime)
	if unknown > 0 {
		opts.Logger.Warn("local rows matched no topology segment", "count", unknown)
	}

	// Stage 4: Export
	exportStart := time.Now()
	if err := io.WriteResultsCSV(opts.OutputPath, opts.IDColumn, topo.IDs, table, opts.Precision); err != nil {
		return nil, err
	}
	result.OutputPath = opts.OutputPath
	result.Stats.ExportTime = time.Since(exportStart)

	opts.Logger.Info("wrote results",
		"path", opts.OutputPath,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Ingest reads the topology table and resolves the parent relation.
func (r *Runner) Ingest(ctx context.Context, opts Options) (*network.Topology, error) {
	if err := opts.ValidateForIngest(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Network().OnIngestStart(ctx, opts.TopologyPath)

	rows, err := io.ReadTopologyCSV(opts.TopologyPath, opts.TopologyColumns())
	if err != nil {
		observability.Network().OnIngestComplete(ctx, opts.TopologyPath, 0, 0, time.Since(start), err)
		return nil, err
	}
	topo, err := network.BuildTopology(rows, opts.NetworkDirection())
	if err != nil {
		observability.Network().OnIngestComplete(ctx, opts.TopologyPath, 0, 0, time.Since(start), err)
		return nil, err
	}

	observability.Network().OnIngestComplete(ctx, opts.TopologyPath,
		topo.IDs.Len(), topo.Headwaters, time.Since(start), nil)
	return topo, nil
}

// Traverse computes every segment's ancestor closure. In disk mode the
// closures stream to a file store at opts.StorePath; in memory mode they
// stay inline on the returned partition.
func (r *Runner) Traverse(ctx context.Context, topo *network.Topology, opts Options) (*network.ClosureResult, error) {
	if err := opts.ValidateForIngest(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	arena := network.BuildArena(topo)
	start := time.Now()
	observability.Network().OnTraverseStart(ctx, arena.Len())

	traverseOpts := network.TraverseOptions{IncludeSelf: opts.IncludeSelf()}
	var writer store.Writer
	if opts.Mode == ModeDisk {
		var err error
		writer, err = store.CreateWriter(ctx, opts.StorePath)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create closure store %s", opts.StorePath)
		}
		traverseOpts.Writer = observedWriter{writer, store.Backend(opts.StorePath)}
	}

	closure, err := network.Traverse(ctx, arena, traverseOpts)
	if writer != nil {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeInternal, cerr, "close closure store")
		}
	}
	observability.Network().OnTraverseComplete(ctx, countFinalized(closure), countUnreached(closure), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return closure, nil
}

// PersistManifest writes the store manifest sidecar describing a traversal
// persisted at opts.StorePath. File stores only; remote stores carry their
// namespace inside the backend.
func (r *Runner) PersistManifest(topo *network.Topology, closure *network.ClosureResult, opts Options) (*store.Manifest, error) {
	manifest := store.NewManifest(opts.TopologyPath, opts.Direction, opts.IncludeSelf())
	manifest.Segments = closure.Finalized
	manifest.Headwaters = topo.Headwaters
	if err := store.WriteManifest(store.ManifestPath(opts.StorePath), manifest); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "write store manifest")
	}
	return manifest, nil
}

// Aggregate reads the local table and reduces it over each closure. The
// returned count is the number of local rows that matched no segment.
func (r *Runner) Aggregate(ctx context.Context, topo *network.Topology, closure *network.ClosureResult, opts Options) (*netcalc.ResultTable, int, error) {
	if err := opts.ValidateForCalc(); err != nil {
		return nil, 0, err
	}
	r.applyLogger(&opts)

	locals, err := io.ReadLocalCSV(opts.LocalPath, opts.LocalColumns(), topo.IDs)
	if err != nil {
		return nil, 0, err
	}

	calcOpts := netcalc.Options{
		CalcType:       opts.Calc(),
		IncludeMissing: opts.TrackMissing(),
		Workers:        opts.Workers,
	}
	var reader store.Reader
	if opts.Mode == ModeDisk {
		reader, err = store.OpenReader(ctx, opts.StorePath)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeFileNotFound, err, "open closure store %s", opts.StorePath)
		}
		defer reader.Close()
		calcOpts.Resolver = observedReader{reader, store.Backend(opts.StorePath)}
	}

	start := time.Now()
	observability.Network().OnCalcStart(ctx, opts.CalcType, closure.Partition.Total(), opts.Workers)
	table, err := netcalc.Run(ctx, &closure.Partition, locals.Table, calcOpts)
	observability.Network().OnCalcComplete(ctx, opts.CalcType, time.Since(start), err)
	if err != nil {
		return nil, 0, err
	}
	return table, locals.Unknown, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func countFinalized(c *network.ClosureResult) int64 {
	if c == nil {
		return 0
	}
	return c.Finalized
}

func countUnreached(c *network.ClosureResult) int64 {
	if c == nil {
		return 0
	}
	return int64(len(c.Unreached))
}

// observedWriter forwards store writes to the registered store hooks.
type observedWriter struct {
	w       store.Writer
	backend string
}

func (o observedWriter) Put(ctx context.Context, id int64, ancestors []int64) error {
	err := o.w.Put(ctx, id, ancestors)
	if err == nil {
		observability.Store().OnPut(ctx, o.backend, len(ancestors))
	}
	return err
}

// observedReader forwards store reads to the registered store hooks.
type observedReader struct {
	r       store.Reader
	backend string
}

func (o observedReader) Get(ctx context.Context, id int64) ([]int64, error) {
	start := time.Now()
	closure, err := o.r.Get(ctx, id)
	observability.Store().OnGet(ctx, o.backend, time.Since(start), err)
	return closure, err
}
