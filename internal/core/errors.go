package core

import (
	"github.com/EvilLord666/warden/internal/process"
	"github.com/EvilLord666/warden/internal/sentinel"
)

const (
	// ErrPermission is returned by Initialize when the caller lacks the
	// privilege needed to observe process events.
	ErrPermission = sentinel.Error("insufficient privilege to observe process events")

	// ErrConfiguration is returned by Initialize for missing or invalid options.
	ErrConfiguration = sentinel.Error("invalid configuration")

	// ErrSubscription wraps a failure to subscribe to the event feed.
	ErrSubscription = sentinel.Error("event subscription failed")

	// ErrShuttingDown completes pending resolutions abandoned by Stop.
	ErrShuttingDown = sentinel.Error("manager is shutting down")

	// ErrUnknownRoot is returned for a tracking key that is not registered.
	ErrUnknownRoot = sentinel.Error("unknown root")

	// ErrRootFlushed completes the pending resolution of a flushed root.
	ErrRootFlushed = sentinel.Error("root flushed before resolution")

	// ErrLocked is returned by Initialize when another supervisor holds the
	// configured lock file.
	ErrLocked = sentinel.Error("lock file held by another supervisor")

	// ErrLookup is re-exported from process so the public API imports only
	// from core.
	ErrLookup = process.ErrLookup

	// ErrTermination is re-exported from process so the public API imports
	// only from core.
	ErrTermination = process.ErrTermination
)
