// Package observability provides hooks for progress reporting and metrics.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific reporting backends. Consumers register hooks at
// startup to receive events about export runs, cache operations, and API
// calls; the engine emits events without knowing who is listening.
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
//   - Keeps the export engine free of terminal and HTTP-server concerns
//   - Allows several consumers of the same event stream (console reporter,
//     TUI dashboard, status server)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetExportHooks(&consoleReporter{})
//	    // ... run export
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Export().OnArtifactStart(ctx, repo, path)
//	// ... download ...
//	observability.Export().OnArtifactComplete(ctx, repo, path, status, bytes, elapsed)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from export runs. Artifact events arrive from
// multiple worker goroutines; implementations must be safe for concurrent use.
type ExportHooks interface {
	// Run events
	OnRunStart(ctx context.Context, runID, server string, repositories int)
	OnRunComplete(ctx context.Context, runID string, duration time.Duration, err error)

	// Repository events
	OnRepositoryStart(ctx context.Context, repository string)
	OnRepositoryComplete(ctx context.Context, repository string, downloaded, skipped, failed int, bytes int64, duration time.Duration, err error)

	// Listing events
	OnListingPage(ctx context.Context, repository string, artifacts int)

	// Artifact events
	OnArtifactStart(ctx context.Context, repository, path string)
	OnArtifactComplete(ctx context.Context, repository, path, status string, bytes int64, duration time.Duration)
	OnArtifactFailed(ctx context.Context, repository, path string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from listing-cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnRunStart(context.Context, string, string, int)            {}
func (NoopExportHooks) OnRunComplete(context.Context, string, time.Duration, error) {}
func (NoopExportHooks) OnRepositoryStart(context.Context, string)                  {}
func (NoopExportHooks) OnRepositoryComplete(context.Context, string, int, int, int, int64, time.Duration, error) {
}
func (NoopExportHooks) OnListingPage(context.Context, string, int)     {}
func (NoopExportHooks) OnArtifactStart(context.Context, string, string) {}
func (NoopExportHooks) OnArtifactComplete(context.Context, string, string, string, int64, time.Duration) {
}
func (NoopExportHooks) OnArtifactFailed(context.Context, string, string, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Fanout
// =============================================================================

// MultiExportHooks forwards every export event to each of hooks in order.
// Use it to feed several consumers (console reporter and status tracker)
// from one engine.
func MultiExportHooks(hooks ...ExportHooks) ExportHooks {
	return multiExport(hooks)
}

type multiExport []ExportHooks

func (m multiExport) OnRunStart(ctx context.Context, runID, server string, repositories int) {
	for _, h := range m {
		h.OnRunStart(ctx, runID, server, repositories)
	}
}

func (m multiExport) OnRunComplete(ctx context.Context, runID string, duration time.Duration, err error) {
	for _, h := range m {
		h.OnRunComplete(ctx, runID, duration, err)
	}
}

func (m multiExport) OnRepositoryStart(ctx context.Context, repository string) {
	for _, h := range m {
		h.OnRepositoryStart(ctx, repository)
	}
}

func (m multiExport) OnRepositoryComplete(ctx context.Context, repository string, downloaded, skipped, failed int, bytes int64, duration time.Duration, err error) {
	for _, h := range m {
		h.OnRepositoryComplete(ctx, repository, downloaded, skipped, failed, bytes, duration, err)
	}
}

func (m multiExport) OnListingPage(ctx context.Context, repository string, artifacts int) {
	for _, h := range m {
		h.OnListingPage(ctx, repository, artifacts)
	}
}

func (m multiExport) OnArtifactStart(ctx context.Context, repository, path string) {
	for _, h := range m {
		h.OnArtifactStart(ctx, repository, path)
	}
}

func (m multiExport) OnArtifactComplete(ctx context.Context, repository, path, status string, bytes int64, duration time.Duration) {
	for _, h := range m {
		h.OnArtifactComplete(ctx, repository, path, status, bytes, duration)
	}
}

func (m multiExport) OnArtifactFailed(ctx context.Context, repository, path string, err error) {
	for _, h := range m {
		h.OnArtifactFailed(ctx, repository, path, err)
	}
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	exportHooks ExportHooks = NoopExportHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetExportHooks registers custom export hooks.
// This should be called once at application startup before any export runs.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	exportHooks = NoopExportHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
