// Package network builds directed stream-network graphs from to/from node
// topology and computes, for every segment, the transitive set of segments
// that flow into it (its network, or ancestor closure).
//
// A segment is the smallest unit of the network: a stream reach or a local
// drainage unit. Segments are connected parent→child when one segment's
// downstream (to) node equals another segment's upstream (from) node. In an
// upstream build, parents are the segments that flow in and headwaters are
// the segments with no parents.
//
// The build happens in three steps:
//
//  1. [BuildTopology] turns raw (id, to_node, from_node) rows into a parent
//     relation keyed by dense 1-based internal ids, plus an [IDMap] relating
//     internal ids to the caller's identifiers.
//  2. [BuildArena] materializes adjacency lists and finds the seed set
//     (segments with no parents).
//  3. [Traverse] propagates ancestor sets through the network in topological
//     order and partitions segments by closure size for the aggregation
//     step in package netcalc.
//
// Closures can stay in memory (small and medium networks) or stream into a
// closure store (package store) as each segment is finalized, which bounds
// peak memory for continental-scale networks.
package network
