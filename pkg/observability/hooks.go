// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about graph builds, compilations, and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The server registers Prometheus-backed hooks; the CLI keeps the no-ops.
//
// # Usage
//
// Register hooks at application startup:
//
//	observability.SetBuildHooks(&myBuildHooks{})
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnBuildStart(ctx, uri)
//	// ... process batches ...
//	observability.Build().OnBuildComplete(ctx, uri, stats, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildStats summarizes a finished graph build.
type BuildStats struct {
	Batches   int
	Nodes     int
	Edges     int
	HasErrors bool
}

// BuildHooks receives events from the graph builder.
type BuildHooks interface {
	// OnBuildStart is called before the first batch.
	OnBuildStart(ctx context.Context, uri string)

	// OnBatch is called after one model has been turned into nodes and edges.
	// depth is 0 for the entry document.
	OnBatch(ctx context.Context, uri string, depth, nodes, edges int)

	// OnBuildComplete is called once per build, also on failure.
	OnBuildComplete(ctx context.Context, uri string, stats BuildStats, duration time.Duration, err error)
}

// =============================================================================
// Compile Hooks
// =============================================================================

// CompileHooks receives events from document compilation.
type CompileHooks interface {
	// OnCompile records a finished compilation of an entry document.
	OnCompile(ctx context.Context, uri string, documents, errors int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnResponse records a served request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string)                {}
func (NoopBuildHooks) OnBatch(context.Context, string, int, int, int)      {}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, BuildStats, time.Duration, error) {
}

// NoopCompileHooks is a no-op implementation of CompileHooks.
type NoopCompileHooks struct{}

func (NoopCompileHooks) OnCompile(context.Context, string, int, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks   BuildHooks   = NoopBuildHooks{}
	compileHooks CompileHooks = NoopCompileHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetBuildHooks registers custom build hooks.
// This should be called once at application startup before any builds.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetCompileHooks registers custom compile hooks.
func SetCompileHooks(h CompileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		compileHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Compile returns the registered compile hooks.
func Compile() CompileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return compileHooks
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
	buildHooks = NoopBuildHooks{}
	compileHooks = NoopCompileHooks{}
	httpHooks = NoopHTTPHooks{}
}
