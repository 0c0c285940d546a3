// Package store persists ancestor closures outside process memory so that
// networks too large for inline aggregation can still be processed.
//
// A store maps an internal segment id to its finalized closure: a sorted
// list of internal ancestor ids. Closures are written once during traversal
// and read back during aggregation; no store supports updates in place.
//
// Every backend shares one binary record codec (see Encode/Decode): small
// closures are stored raw, large ones are byte-shuffled and gzip-compressed.
// An empty closure is stored as an explicit empty record, so "no ancestors"
// stays distinguishable from "never written"; the latter surfaces as
// ErrNotFound and indicates a corrupt or mismatched build.
package store
