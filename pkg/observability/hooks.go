// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline execution and closure store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetNetworkHooks(&myNetworkHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Network().OnTraverseStart(ctx, segments)
//	// ... traverse ...
//	observability.Network().OnTraverseComplete(ctx, finalized, unreached, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Network Hooks
// =============================================================================

// NetworkHooks receives events from network builds and aggregation runs.
type NetworkHooks interface {
	// Ingest events
	OnIngestStart(ctx context.Context, path string)
	OnIngestComplete(ctx context.Context, path string, segments, headwaters int, duration time.Duration, err error)

	// Traversal events
	OnTraverseStart(ctx context.Context, segments int64)
	OnTraverseComplete(ctx context.Context, finalized, unreached int64, duration time.Duration, err error)

	// Aggregation events
	OnCalcStart(ctx context.Context, calcType string, segments, workers int)
	OnCalcComplete(ctx context.Context, calcType string, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from closure store operations.
type StoreHooks interface {
	// OnPut records one closure written, with its element count.
	OnPut(ctx context.Context, backend string, elements int)

	// OnGet records one closure read.
	OnGet(ctx context.Context, backend string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopNetworkHooks is a no-op implementation of NetworkHooks.
type NoopNetworkHooks struct{}

func (NoopNetworkHooks) OnIngestStart(context.Context, string) {}
func (NoopNetworkHooks) OnIngestComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopNetworkHooks) OnTraverseStart(context.Context, int64)                               {}
func (NoopNetworkHooks) OnTraverseComplete(context.Context, int64, int64, time.Duration, error) {}
func (NoopNetworkHooks) OnCalcStart(context.Context, string, int, int)                        {}
func (NoopNetworkHooks) OnCalcComplete(context.Context, string, time.Duration, error)         {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnPut(context.Context, string, int)                 {}
func (NoopStoreHooks) OnGet(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	networkHooks NetworkHooks = NoopNetworkHooks{}
	storeHooks   StoreHooks   = NoopStoreHooks{}
	hooksMu      sync.RWMutex
)

// SetNetworkHooks registers custom network hooks.
// This should be called once at application startup before any runs.
func SetNetworkHooks(h NetworkHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		networkHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Network returns the registered network hooks.
func Network() NetworkHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return networkHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	networkHooks = NoopNetworkHooks{}
	storeHooks = NoopStoreHooks{}
}
