package warden

import "context"

// Manager tracks process trees rooted at registered processes.
//
// Callers follow this lifecycle:
//
//	NewManager → Initialize → RegisterRoot/Kill/Flush (repeatable) → Stop
//
// Roots may be registered before Initialize; they are tracked once events
// flow. Stop is safe at any point, including before Initialize, and a
// stopped Manager can be initialized again.
type Manager interface {
	// Initialize checks privileges, validates opts and subscribes to process
	// start and stop events. It returns ErrConfiguration for nil or invalid
	// options, ErrPermission for an unprivileged caller, ErrLocked when
	// another supervisor holds opts.LockFile and ErrSubscription when the
	// event feed cannot be subscribed. A failed Initialize leaves nothing
	// subscribed and may be retried. ctx bounds the wait for the lock file.
	Initialize(ctx context.Context, opts *Options) error

	// Stop unsubscribes from the event feed, clears all roots and then kills
	// every removed tree when CleanOnShutdown is set, so roots are gone from
	// Tree and Keys before their kill finishes. Kill failures are returned
	// for information; every root is still attempted and removed.
	Stop() error

	// Flush stops tracking the root whose current process id is pid. It
	// reports whether a root was removed and never fails.
	Flush(pid int) bool

	// RegisterRoot starts tracking the tree rooted at pid and returns its
	// tracking key. It returns immediately, also for placeholder ids; the
	// Resolution reports when a placeholder binds to a real process.
	RegisterRoot(name string, pid int, filters []Filter, opts ...RootOption) (key string, res *Resolution)

	// NextPlaceholderID returns a fresh placeholder id for RegisterRoot.
	NextPlaceholderID() int

	// Kill terminates the root registered under key, and with deep set its
	// whole subtree. A failing node does not stop the others. It returns
	// ErrUnknownRoot for an unregistered key and wraps ErrTermination when
	// any node could not be terminated.
	Kill(ctx context.Context, key string, deep bool) error

	// KillDefault is Kill with the depth chosen by the DeepKill option.
	KillDefault(ctx context.Context, key string) error

	// Tree returns a point-in-time copy of the tree registered under key.
	Tree(key string) (Snapshot, bool)

	// Keys returns the tracking keys of all registered roots.
	Keys() []string
}
