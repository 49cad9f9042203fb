package warden

import (
	"github.com/EvilLord666/warden/internal/core"
	"github.com/EvilLord666/warden/internal/proctree"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrPermission is returned by Initialize when the caller cannot observe
	// process events.
	ErrPermission = core.ErrPermission

	// ErrConfiguration is returned by Initialize for nil or invalid options.
	ErrConfiguration = core.ErrConfiguration

	// ErrSubscription is returned by Initialize when the event feed refuses
	// a subscription.
	ErrSubscription = core.ErrSubscription

	// ErrLocked is returned by Initialize when another supervisor holds the
	// configured lock file.
	ErrLocked = core.ErrLocked

	// ErrLookup wraps a failed process metadata lookup. The engine recovers
	// from it by keeping blank metadata; it is only visible in logs.
	ErrLookup = core.ErrLookup

	// ErrTermination is wrapped by Kill and Stop when a process could not be
	// terminated.
	ErrTermination = core.ErrTermination

	// ErrShuttingDown completes resolutions still pending when Stop runs.
	ErrShuttingDown = core.ErrShuttingDown

	// ErrUnknownRoot is returned by Kill for an unregistered tracking key.
	ErrUnknownRoot = core.ErrUnknownRoot

	// ErrRootFlushed completes the resolution of a root removed by Flush
	// before it resolved.
	ErrRootFlushed = core.ErrRootFlushed

	// ErrResolutionPending is returned by Resolution.Result before the
	// resolution completed.
	ErrResolutionPending = proctree.ErrPending
)
