// Package pkg provides the core libraries for Streamnet river network analysis.
//
// # Overview
//
// Streamnet resolves stream segment topology, computes every segment's
// upstream (or downstream) network, and aggregates local attributes over
// each network. The pkg directory is organized by pipeline stage:
//
//  1. [io] - CSV ingestion and export (topology tables, local attributes, results)
//  2. [network] - Topology resolution, id mapping, and closure traversal
//  3. [store] - Closure persistence (file, memory, Redis, MongoDB backends)
//  4. [netcalc] - Attribute aggregation (sum, min, max, weighted_avg)
//  5. [pipeline] - Orchestration (ingest → traverse → aggregate → export)
//
// # Architecture
//
// The typical data flow through Streamnet:
//
//	Topology CSV (id, tonode, fromnode)
//	         ↓
//	    [io] package (read rows)
//	         ↓
//	    [network] package (resolve parents, traverse closures)
//	         ↓
//	    [store] package (persist closures, disk mode only)
//	         ↓
//	    [netcalc] package (reduce local attributes over each closure)
//	         ↓
//	    [io] package (write n_/mn_ result columns)
//
// # Quick Start
//
// Run the full pipeline programmatically:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/streamnet/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    TopologyPath: "flowlines.csv",
//	    LocalPath:    "attributes.csv",
//	    CalcType:     "sum",
//	})
//
// # Main Packages
//
// [network] - The traversal core. BuildTopology resolves raw rows into a
// parent relation, BuildArena constructs dense adjacency, and Traverse
// computes every segment's ancestor closure in a single topologically
// ordered pass, classifying results into a three-way partition.
//
// [store] - Closure stores for networks too large to hold in memory.
// The file backend appends compressed closure records with a footer index;
// Redis and MongoDB backends namespace records by build id.
//
// [netcalc] - Reductions over closures with pandas-compatible missing-value
// semantics: sums skip NaN, weighted averages drop rows missing either
// value or weight, and every value column gets a weighted missing-data
// percentage alongside it.
//
// [viz] - Graphviz DOT and SVG rendering of resolved topologies.
//
// [pipeline] - Complete aggregation pipeline used by the CLI. Ensures
// consistent validation and defaults across all entry points.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/network/...    # Specific package
//
// [io]: https://pkg.go.dev/github.com/matzehuels/streamnet/pkg/io
// [network]: https://pkg.go.dev/github.com/matzehuels/streamnet/pkg/network
// [store]: https://pkg.go.dev/github.com/matzehuels/streamnet/pkg/store
// [netcalc]: https://pkg.go.dev/github.com/matzehuels/streamnet/pkg/netcalc
// [viz]: https://pkg.go.dev/github.com/matzehuels/streamnet/pkg/viz
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/streamnet/pkg/pipeline
package pkg
