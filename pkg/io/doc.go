// Package io reads topology and local-value tables from CSV and writes
// aggregation results back out.
//
// # Input Tables
//
// A run takes two CSV files. The topology table positions each segment in
// the network with three columns (segment id, downstream node, upstream
// node); column names are configurable and default to comid/tonode/
// fromnode. The local table carries one row per segment: the id column,
// an optional weight column, and any number of numeric variable columns.
//
// Missing cells are empty strings and become NaN. Any other value that
// does not parse as a number is a fatal NON_NUMERIC_VALUE error; rows are
// never silently repaired.
//
// # Output
//
// Results are written as one CSV row per segment, external ids restored,
// with n_<var> value columns and optional mn_<var> missing-percentage
// columns. NaN cells are written empty so the output reads back the same
// way the input was read.
package io
