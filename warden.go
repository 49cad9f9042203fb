package warden

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/EvilLord666/warden/internal/core"
	"github.com/EvilLord666/warden/internal/metrics"
	"github.com/EvilLord666/warden/internal/proctree"
)

// Compile-time interface satisfaction check.
var _ Manager = (*managerWrapper)(nil)

// PlaceholderThreshold is the smallest placeholder id. Real process ids
// stay below it.
const PlaceholderThreshold = proctree.PlaceholderThreshold

// IsPlaceholder reports whether pid is a placeholder rather than a real id.
func IsPlaceholder(pid int) bool {
	return proctree.IsPlaceholder(pid)
}

type (
	// Resolution reports, exactly once, whether a placeholder root bound
	// to a real process. Roots registered with a real id are resolved
	// from the start.
	Resolution = proctree.Resolution

	// ResolveFunc is the optional callback of a Resolution.
	ResolveFunc = proctree.ResolveFunc

	// ProcessInfo is the identity of a tracked process.
	ProcessInfo = proctree.Info

	// Snapshot is an immutable copy of a tracked tree.
	Snapshot = proctree.Snapshot

	// State is the lifecycle state of a tracked process.
	State = proctree.State

	// ChildAdded is delivered to a root's handler when a child is attached.
	ChildAdded = core.ChildAdded

	// RootOption configures RegisterRoot.
	RootOption = core.RootOption
)

// Process states.
const (
	Alive = proctree.Alive
	Dead  = proctree.Dead
)

// WithPath records the executable path of a root.
func WithPath(path string) RootOption {
	return core.WithPath(path)
}

// WithArgs records the command line of a root.
func WithArgs(args ...string) RootOption {
	return core.WithArgs(args...)
}

// WithResolutionCallback runs fn once when the root's Resolution completes:
// with the real pid on success, or with ErrRootFlushed or ErrShuttingDown
// when the root is removed first. It runs on the goroutine that completes
// the resolution, which for a real pid is the caller of RegisterRoot.
func WithResolutionCallback(fn ResolveFunc) RootOption {
	return core.WithResolutionCallback(fn)
}

// WithChildAddedHandler registers fn for child-added notifications. fn is
// called synchronously while the event is being processed and should
// return quickly.
func WithChildAddedHandler(fn func(ChildAdded)) RootOption {
	return core.WithChildAddedHandler(fn)
}

// managerWrapper wraps core.Manager to implement the Manager interface.
//
// The core.Manager is stored as a named (unexported) field rather than
// embedded so callers cannot reach methods outside the Manager interface
// through type assertions.
type managerWrapper struct {
	mgr *core.Manager
}

func (w *managerWrapper) Initialize(ctx context.Context, opts *Options) error {
	return w.mgr.Initialize(ctx, opts)
}

func (w *managerWrapper) Stop() error {
	return w.mgr.Stop()
}

func (w *managerWrapper) Flush(pid int) bool {
	return w.mgr.Flush(pid)
}

func (w *managerWrapper) RegisterRoot(name string, pid int, filters []Filter, opts ...RootOption) (string, *Resolution) {
	return w.mgr.RegisterRoot(name, pid, filters, opts...)
}

func (w *managerWrapper) NextPlaceholderID() int {
	return w.mgr.NextPlaceholderID()
}

func (w *managerWrapper) Kill(ctx context.Context, key string, deep bool) error {
	return w.mgr.Kill(ctx, key, deep)
}

func (w *managerWrapper) KillDefault(ctx context.Context, key string) error {
	return w.mgr.KillDefault(ctx, key)
}

func (w *managerWrapper) Tree(key string) (Snapshot, bool) {
	return w.mgr.Tree(key)
}

func (w *managerWrapper) Keys() []string {
	return w.mgr.Keys()
}

// NewManager returns a Manager backed by the operating system: the process
// table poller as event feed, gopsutil for metadata and termination. It
// performs no I/O; call Initialize to start tracking.
//
// Every call returns an independent Manager with its own registry.
//
//nolint:ireturn // Returns Manager interface by design for testability (mockable).
func NewManager() Manager {
	return &managerWrapper{mgr: core.NewManager(core.Deps{})}
}

// MetricsRegistry returns the Prometheus registry holding the warden_*
// collectors, for callers that expose metrics.
func MetricsRegistry() *prometheus.Registry {
	return metrics.Registry()
}
