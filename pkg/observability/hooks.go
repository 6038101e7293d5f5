// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about GC sweeps, precompile runs, and dispatcher mutations.
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
//	    observability.SetGCHooks(&myGCHooks{})
//	    observability.SetPrecompileHooks(&myPrecompileHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.GC().OnSweepStart(ctx, environmentPath)
//	// ... run the sweep ...
//	observability.GC().OnSweepComplete(ctx, environmentPath, len(report.Deleted), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// GC Hooks
// =============================================================================

// GCHooks receives events from the GC Driver's reachability sweep.
type GCHooks interface {
	// OnSweepStart records the beginning of a sweep. The GC Driver passes
	// the root of its first depot as environmentPath.
	OnSweepStart(ctx context.Context, environmentPath string)
	// OnSweepComplete records a sweep's outcome: how many depot entries were
	// deleted and how long the sweep took.
	OnSweepComplete(ctx context.Context, environmentPath string, deleted int, duration time.Duration, err error)
	// OnOrphaned records a package/artifact/scratch entry newly marked
	// orphaned this sweep, ahead of its grace period.
	OnOrphaned(ctx context.Context, category, key string)
}

// =============================================================================
// Precompile Hooks
// =============================================================================

// PrecompileHooks receives events from the Precompile Scheduler. The
// scheduler passes each package's pkgid.ID.Key() (its uuid string) as
// name.
type PrecompileHooks interface {
	// OnPackageStart records a package entering the compile step.
	OnPackageStart(ctx context.Context, name string)
	// OnPackageComplete records a package's compile outcome.
	OnPackageComplete(ctx context.Context, name string, duration time.Duration, err error)
	// OnCircular records a run whose dependency graph could not be
	// scheduled because of a cycle.
	OnCircular(ctx context.Context, names []string)
	// OnSuspended records a package suspended by cooperative cancellation,
	// to be resumed on a future run.
	OnSuspended(ctx context.Context, name string)
}

// =============================================================================
// Dispatcher Hooks
// =============================================================================

// DispatcherHooks receives events from the Operation Dispatcher.
type DispatcherHooks interface {
	// OnMutationStart records an operation (add/rm/up/pin/free/...)
	// beginning against a project.
	OnMutationStart(ctx context.Context, op, projectPath string)
	// OnMutationComplete records an operation's outcome.
	OnMutationComplete(ctx context.Context, op, projectPath string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGCHooks is a no-op implementation of GCHooks.
type NoopGCHooks struct{}

func (NoopGCHooks) OnSweepStart(context.Context, string)                                   {}
func (NoopGCHooks) OnSweepComplete(context.Context, string, int, time.Duration, error)     {}
func (NoopGCHooks) OnOrphaned(context.Context, string, string)                             {}

// NoopPrecompileHooks is a no-op implementation of PrecompileHooks.
type NoopPrecompileHooks struct{}

func (NoopPrecompileHooks) OnPackageStart(context.Context, string)                      {}
func (NoopPrecompileHooks) OnPackageComplete(context.Context, string, time.Duration, error) {}
func (NoopPrecompileHooks) OnCircular(context.Context, []string)                        {}
func (NoopPrecompileHooks) OnSuspended(context.Context, string)                         {}

// NoopDispatcherHooks is a no-op implementation of DispatcherHooks.
type NoopDispatcherHooks struct{}

func (NoopDispatcherHooks) OnMutationStart(context.Context, string, string)                        {}
func (NoopDispatcherHooks) OnMutationComplete(context.Context, string, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	gcHooks         GCHooks         = NoopGCHooks{}
	precompileHooks PrecompileHooks = NoopPrecompileHooks{}
	dispatcherHooks DispatcherHooks = NoopDispatcherHooks{}
	hooksMu         sync.RWMutex
)

// SetGCHooks registers custom GC hooks. Call once at startup before any
// GC run; a nil argument is ignored.
func SetGCHooks(h GCHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		gcHooks = h
	}
}

// SetPrecompileHooks registers custom precompile hooks. Call once at
// startup before any precompile run; a nil argument is ignored.
func SetPrecompileHooks(h PrecompileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		precompileHooks = h
	}
}

// SetDispatcherHooks registers custom dispatcher hooks. Call once at
// startup before any mutation; a nil argument is ignored.
func SetDispatcherHooks(h DispatcherHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		dispatcherHooks = h
	}
}

// GC returns the registered GC hooks.
func GC() GCHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return gcHooks
}

// Precompile returns the registered precompile hooks.
func Precompile() PrecompileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return precompileHooks
}

// Dispatcher returns the registered dispatcher hooks.
func Dispatcher() DispatcherHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return dispatcherHooks
}

// Reset restores all hooks to their no-op defaults. Primarily useful for
// testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	gcHooks = NoopGCHooks{}
	precompileHooks = NoopPrecompileHooks{}
	dispatcherHooks = NoopDispatcherHooks{}
}
