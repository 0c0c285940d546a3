// Package netcalc aggregates per-segment local values over ancestor
// closures: each segment's output is a reduction (sum, min, max, or
// weighted average) of every variable across all segments in its closure.
//
// Missing values are carried as NaN end to end. Reductions skip NaN the
// way column stores do: a sum over nothing is 0, a min or max over nothing
// is NaN, a weighted average with zero total weight is NaN. Alongside each
// aggregated value the engine can report a weight-based missing-data
// percentage, so downstream consumers know how much of a closure actually
// contributed.
//
// Segments are processed per the traversal partition: no-ancestor segments
// have nothing to aggregate over and come out all-missing, one-ancestor
// segments copy their local row through,
// and only multi-ancestor segments pay for a full reduction. Multi-ancestor
// work fans out over a bounded worker pool and can resolve closures from a
// store instead of memory.
package netcalc
