package store

import (
	"context"
	"errors"
)

// Sentinel errors for closure store operations.
var (
	// ErrNotFound is returned when a segment has no record in the store.
	// Because traversal writes a record for every finalized segment, a miss
	// during aggregation means the store does not belong to this build and
	// is always fatal.
	ErrNotFound = errors.New("closure not found")

	// ErrClosed is returned when an operation is attempted on a store that
	// has already been closed.
	ErrClosed = errors.New("store is closed")
)

// Writer receives finalized closures during traversal. Put must persist an
// explicit record even for an empty closure.
type Writer interface {
	Put(ctx context.Context, id int64, ancestors []int64) error
	Close() error
}

// Reader fetches closures during aggregation. Get returns ErrNotFound when
// the segment has no record. Implementations must be safe for concurrent
// use; the aggregation worker pool reads from multiple goroutines.
type Reader interface {
	Get(ctx context.Context, id int64) ([]int64, error)
	Close() error
}
