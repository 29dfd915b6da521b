// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about identity searches, clustering runs, and cache
// operations.
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
//	    observability.SetSearchHooks(&mySearchHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Search().OnSearchStart(ctx, ref, target, relation)
//	// ... run the search ...
//	observability.Search().OnSearchComplete(ctx, ref, target, relation, outcome, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Search Hooks
// =============================================================================

// SearchHooks receives events from pairwise identity searches.
type SearchHooks interface {
	// OnSearchStart records the beginning of a pairwise search.
	// relation is "weak" or "strong"; mode is "exact" or "subset".
	OnSearchStart(ctx context.Context, ref, target, relation, mode string)

	// OnSearchComplete records the end of a pairwise search. outcome is
	// "match", "none", or "undetermined"; evaluated is the number of
	// candidate assignments tested.
	OnSearchComplete(ctx context.Context, ref, target, relation, mode, outcome string, evaluated int64, duration time.Duration)
}

// =============================================================================
// Cluster Hooks
// =============================================================================

// ClusterHooks receives events from clustering runs.
type ClusterHooks interface {
	// OnClusterStart records the beginning of a clustering run over a
	// collection of networks.
	OnClusterStart(ctx context.Context, algorithm string, networkCount int)

	// OnBucketProcessed records completion of one hash bucket.
	OnBucketProcessed(ctx context.Context, bucketSize, clusterCount int)

	// OnViolation records an observed non-transitive merge: a and b each
	// matched witness but were not initially in the same cluster.
	OnViolation(ctx context.Context, a, b, witness string)

	// OnClusterComplete records the end of a clustering run.
	OnClusterComplete(ctx context.Context, algorithm string, clusterCount, undeterminedCount int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnSearchStart(context.Context, string, string, string, string) {}
func (NoopSearchHooks) OnSearchComplete(context.Context, string, string, string, string, string, int64, time.Duration) {
}

// NoopClusterHooks is a no-op implementation of ClusterHooks.
type NoopClusterHooks struct{}

func (NoopClusterHooks) OnClusterStart(context.Context, string, int)                        {}
func (NoopClusterHooks) OnBucketProcessed(context.Context, int, int)                        {}
func (NoopClusterHooks) OnViolation(context.Context, string, string, string)                {}
func (NoopClusterHooks) OnClusterComplete(context.Context, string, int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	searchHooks  SearchHooks  = NoopSearchHooks{}
	clusterHooks ClusterHooks = NoopClusterHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetSearchHooks registers custom search hooks.
// This should be called once at application startup before any searches run.
func SetSearchHooks(h SearchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		searchHooks = h
	}
}

// SetClusterHooks registers custom cluster hooks.
// This should be called once at application startup before any clustering runs.
func SetClusterHooks(h ClusterHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		clusterHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Search returns the registered search hooks.
func Search() SearchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return searchHooks
}

// Cluster returns the registered cluster hooks.
func Cluster() ClusterHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return clusterHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	searchHooks = NoopSearchHooks{}
	clusterHooks = NoopClusterHooks{}
	cacheHooks = NoopCacheHooks{}
}
