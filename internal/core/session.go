package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/EvilLord666/warden/internal/feed"
)

// exitSignals stop an initialized manager when Options.HandleSignals is set.
var exitSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// raiseSignal redelivers sig to the current process after the manager
// stopped, so the default disposition (or another handler) still applies.
var raiseSignal = func(sig os.Signal) {
	if p, err := os.FindProcess(os.Getpid()); err == nil {
		_ = p.Signal(sig)
	}
}

// session is the state of one Initialize..Stop cycle. Handlers capture the
// session they were subscribed with, so a late event from a stopped session
// never touches a newer one.
//
// inflight counts handlers between enter and leave. drain sets stopping and
// waits for inflight to reach zero; the handler that brings it to zero
// closes drained.
type session struct {
	opts   Options
	corr   *correlator
	ctx    context.Context
	cancel context.CancelFunc
	subs   []feed.Subscription
	lock   *flock.Flock

	inflight    atomic.Int64
	stopping    atomic.Bool
	drained     chan struct{}
	drainedOnce sync.Once
}

func newSession(o Options, c *correlator) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		opts:    o,
		corr:    c,
		ctx:     ctx,
		cancel:  cancel,
		drained: make(chan struct{}),
	}
}

// handler wraps fn so it runs only while the session admits events.
func (s *session) handler(fn func(context.Context, feed.Event)) feed.Handler {
	return func(ev feed.Event) {
		if !s.enter() {
			return
		}
		defer s.leave()
		fn(s.ctx, ev)
	}
}

func (s *session) enter() bool {
	s.inflight.Add(1)
	if s.stopping.Load() {
		s.leave()
		return false
	}
	return true
}

func (s *session) leave() {
	if s.inflight.Add(-1) == 0 && s.stopping.Load() {
		s.drainedOnce.Do(func() { close(s.drained) })
	}
}

// drain stops admitting events and waits up to timeout for in-flight
// handlers. It reports whether they all finished.
func (s *session) drain(timeout time.Duration) bool {
	s.stopping.Store(true)
	if s.inflight.Load() == 0 {
		s.drainedOnce.Do(func() { close(s.drained) })
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.drained:
		return true
	case <-timer.C:
		return false
	}
}

// unsubscribe cancels every subscription, newest first.
func (s *session) unsubscribe() []error {
	var errs []error
	for i := len(s.subs) - 1; i >= 0; i-- {
		if err := s.subs[i].Unsubscribe(); err != nil {
			errs = append(errs, fmt.Errorf("unsubscribe: %w", err))
		}
	}
	s.subs = nil
	return errs
}

// close releases everything the session owns. In-flight handlers see a
// canceled context.
func (s *session) close() {
	s.stopping.Store(true)
	s.cancel()
	releaseLock(Logger(), s.lock)
	s.lock = nil
}

// watchSignals stops m when an exit signal arrives while s is current.
func (s *session) watchSignals(m *Manager) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, exitSignals...)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			signal.Stop(ch)
			Logger().Info("exit signal received; stopping", "signal", sig.String())
			if err := m.stop(s); err != nil {
				Logger().Warn("stop on exit signal", "error", err)
			}
			raiseSignal(sig)
		case <-s.ctx.Done():
		}
	}()
}
