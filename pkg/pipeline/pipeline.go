// Package pipeline provides the core aggregation pipeline for Streamnet.
//
// This package implements the complete ingest → traverse → aggregate →
// export pipeline that can be used by CLI, API, and worker components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Ingest: Read the topology table and resolve the parent relation
//  2. Traverse: Compute every segment's ancestor closure in one pass
//  3. Aggregate: Reduce local values over each closure
//  4. Export: Write results with external ids restored
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    TopologyPath: "flowlines.csv",
//	    LocalPath:    "attributes.csv",
//	    CalcType:     "sum",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.OutputPath)
package pipeline

import (
	stdio "io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamnet/pkg/errors"
	"github.com/matzehuels/streamnet/pkg/io"
	"github.com/matzehuels/streamnet/pkg/netcalc"
	"github.com/matzehuels/streamnet/pkg/network"
	"github.com/matzehuels/streamnet/pkg/store"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultWorkers is the aggregation worker pool size.
	DefaultWorkers = 4

	// DefaultPrecision is the output rounding precision in decimals.
	DefaultPrecision = io.DefaultPrecision
)

// Storage mode constants.
const (
	// ModeMemory keeps every closure inline. Fastest, but peak memory is
	// proportional to the sum of closure sizes.
	ModeMemory = "memory"

	// ModeDisk streams closures to a file store during traversal and reads
	// them back during aggregation, bounding memory to the graph itself.
	ModeDisk = "disk"
)

// ValidModes is the set of supported storage modes.
var ValidModes = map[string]bool{
	ModeMemory: true,
	ModeDisk:   true,
}

// ValidDirections is the set of supported traversal directions.
var ValidDirections = map[string]bool{
	string(network.DirectionUp):   true,
	string(network.DirectionDown): true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the aggregation pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options
	TopologyPath string   `json:"topology_path"`
	LocalPath    string   `json:"local_path,omitempty"`
	IDColumn     string   `json:"id_column,omitempty"`
	ToColumn     string   `json:"to_column,omitempty"`
	FromColumn   string   `json:"from_column,omitempty"`
	WeightColumn string   `json:"weight_column,omitempty"`
	DropColumns  []string `json:"drop_columns,omitempty"`
	Direction    string   `json:"direction,omitempty"`

	// Traversal options
	SkipSelf bool `json:"skip_self,omitempty"` // Exclude each segment from its own closure (default: false = include)

	// Aggregation options
	CalcType    string `json:"calc_type,omitempty"`
	SkipMissing bool   `json:"skip_missing,omitempty"` // Skip the mn_<var> missing-percentage columns
	Workers     int    `json:"workers,omitempty"`
	Precision   int    `json:"precision,omitempty"`

	// Storage options
	Mode      string `json:"mode,omitempty"`
	StorePath string `json:"store_path,omitempty"`

	// Output options
	OutputPath string `json:"output_path,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// calcType is the parsed calculation, set during validation.
	calcType netcalc.CalcType

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Topology is the resolved parent relation and id mapping.
	Topology *network.Topology

	// Closure is the traversal outcome: partition, counts, cycle report.
	Closure *network.ClosureResult

	// Table holds the aggregated rows, by internal id.
	Table *netcalc.ResultTable

	// OutputPath is where results were written.
	OutputPath string

	// Manifest describes the persisted store in disk mode, nil otherwise.
	Manifest *store.Manifest

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Segments     int
	Headwaters   int
	Unreached    int
	UnknownLocal int
	IngestTime   time.Duration
	TraverseTime time.Duration
	CalcTime     time.Duration
	ExportTime   time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForIngest(); err != nil {
		return err
	}
	if err := o.ValidateForCalc(); err != nil {
		return err
	}
	if o.OutputPath == "" {
		o.OutputPath = io.DefaultOutputName(o.calcType, o.LocalPath)
	}
	o.validated = true
	return nil
}

// ValidateForIngest checks required fields for topology ingestion.
func (o *Options) ValidateForIngest() error {
	if o.TopologyPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "topology path is required")
	}

	// Column defaults
	if o.IDColumn == "" {
		o.IDColumn = io.DefaultIDColumn
	}
	if o.ToColumn == "" {
		o.ToColumn = io.DefaultToColumn
	}
	if o.FromColumn == "" {
		o.FromColumn = io.DefaultFromColumn
	}
	if err := errors.ValidateIDColumn(o.IDColumn); err != nil {
		return err
	}
	for _, col := range []string{o.ToColumn, o.FromColumn} {
		if err := errors.ValidateColumnName(col); err != nil {
			return err
		}
	}
	if o.WeightColumn != "" {
		if err := errors.ValidateColumnName(o.WeightColumn); err != nil {
			return err
		}
	}

	if o.Direction == "" {
		o.Direction = string(network.DirectionUp)
	}
	if !ValidDirections[o.Direction] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid direction: %q (must be up or down)", o.Direction)
	}

	if o.Mode == "" {
		o.Mode = ModeMemory
	}
	if !ValidModes[o.Mode] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid mode: %q (must be memory or disk)", o.Mode)
	}
	if o.Mode == ModeDisk {
		if o.StorePath == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store path is required in disk mode")
		}
		if err := errors.ValidateStorePath(o.StorePath); err != nil {
			return err
		}
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(stdio.Discard, log.Options{})
	}

	return nil
}

// ValidateForCalc checks required fields for aggregation.
func (o *Options) ValidateForCalc() error {
	if o.LocalPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "local value table path is required")
	}

	calc, err := netcalc.ParseCalcType(o.CalcType)
	if err != nil {
		return err
	}
	o.calcType = calc

	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Workers < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be at least 1")
	}
	if o.Precision == 0 {
		o.Precision = DefaultPrecision
	}
	if o.Precision < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "precision must not be negative")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(stdio.Discard, log.Options{})
	}

	return nil
}

// Calc returns the parsed calculation type. Only valid after validation.
func (o *Options) Calc() netcalc.CalcType { return o.calcType }

// IncludeSelf reports whether each segment joins its own closure.
func (o *Options) IncludeSelf() bool { return !o.SkipSelf }

// TrackMissing reports whether missing-percentage columns are produced.
func (o *Options) TrackMissing() bool { return !o.SkipMissing }

// NetworkDirection returns the traversal direction. Only valid after validation.
func (o *Options) NetworkDirection() network.Direction {
	return network.Direction(o.Direction)
}

// TopologyColumns returns the topology column mapping for ingestion.
func (o *Options) TopologyColumns() io.TopologyColumns {
	return io.TopologyColumns{ID: o.IDColumn, To: o.ToColumn, From: o.FromColumn}
}

// LocalColumns returns the local-table column mapping for ingestion.
func (o *Options) LocalColumns() io.LocalColumns {
	return io.LocalColumns{ID: o.IDColumn, Weight: o.WeightColumn, Drop: o.DropColumns}
}
