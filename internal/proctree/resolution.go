package proctree

import (
	"context"
	"sync"

	"github.com/EvilLord666/warden/internal/sentinel"
)

// ErrPending is returned by Result while a resolution has not fired yet.
const ErrPending = sentinel.Error("resolution pending")

// ResolveFunc is the optional callback attached to a Resolution. It runs
// exactly once, on the goroutine that completes the resolution.
type ResolveFunc func(pid int, err error)

// Resolution is a single-fire notification that a placeholder root was
// bound to a real process (err == nil) or abandoned (err != nil). Pending
// and completed states are observable through Done.
type Resolution struct {
	once     sync.Once
	done     chan struct{}
	callback ResolveFunc

	// pid and err are written once before done is closed.
	pid int
	err error
}

// NewResolution returns a pending Resolution. fn may be nil.
func NewResolution(fn ResolveFunc) *Resolution {
	return &Resolution{done: make(chan struct{}), callback: fn}
}

// Done is closed once the resolution completes.
func (r *Resolution) Done() <-chan struct{} {
	return r.done
}

// Completed reports whether the resolution already fired.
func (r *Resolution) Completed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Result returns the resolved id and the completion error without blocking.
// It returns ErrPending while the resolution has not fired.
func (r *Resolution) Result() (int, error) {
	if !r.Completed() {
		return 0, ErrPending
	}
	return r.pid, r.err
}

// Wait blocks until the resolution completes or ctx is done.
func (r *Resolution) Wait(ctx context.Context) (int, error) {
	select {
	case <-r.done:
		return r.pid, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Complete fires the resolution. Only the first call has any effect; it
// reports whether this call was the one that fired.
func (r *Resolution) Complete(pid int, err error) bool {
	fired := false
	r.once.Do(func() {
		r.pid, r.err = pid, err
		close(r.done)
		fired = true
	})
	if fired && r.callback != nil {
		r.callback(pid, err)
	}
	return fired
}
