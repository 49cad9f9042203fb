package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/EvilLord666/warden/internal/feed"
	"github.com/EvilLord666/warden/internal/metrics"
	"github.com/EvilLord666/warden/internal/proctree"
)

// managerState represents the lifecycle state of a Manager.
type managerState uint32

const (
	managerCreated      managerState = iota // Zero value; also the state after Stop
	managerInitializing                     // Initialize in progress
	managerReady                            // Subscribed to the feed
	managerStopping                         // Stop in progress
)

func (s managerState) String() string {
	switch s {
	case managerCreated:
		return "created"
	case managerInitializing:
		return "initializing"
	case managerReady:
		return "ready"
	case managerStopping:
		return "stopping"
	default:
		return fmt.Sprintf("managerState(%d)", uint32(s))
	}
}

// Manager owns a Registry and keeps it in sync with the process event feed.
// It is safe for concurrent use by multiple goroutines.
//
// Synchronization strategy:
//   - state is an atomic managerState (created → initializing → ready →
//     stopping → created). A stopped Manager can be initialized again.
//   - initMu serializes Initialize and Stop.
//   - sess holds the per-initialization state. Event handlers capture
//     their session and are drained by Stop through its inflight counter.
//   - the registry and every tree node carry their own locks, so fan-out
//     across roots runs in parallel.
type Manager struct {
	deps     Deps
	registry *Registry

	state atomic.Uint32 // managerState
	sess  atomic.Pointer[session]

	placeholders atomic.Int64

	initMu sync.Mutex
}

// NewManager returns a Manager in the created state. It performs no I/O.
// Zero-valued Deps fields use the real OS collaborators.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps.withDefaults(),
		registry: NewRegistry(),
	}
}

func (m *Manager) loadState() managerState {
	return managerState(m.state.Load())
}

func (m *Manager) storeState(s managerState) {
	m.state.Store(uint32(s))
}

// Ready reports whether the manager is subscribed to the event feed.
func (m *Manager) Ready() bool {
	return m.loadState() == managerReady
}

// Initialize validates opts, checks the caller's privilege, takes the
// optional lock file and subscribes to start and then stop events. On any
// failure nothing stays subscribed or locked and the manager remains in the
// created state, so Initialize can be retried. Calling it on a ready manager
// returns nil and ignores opts.
//
// ctx bounds the wait for the lock file.
func (m *Manager) Initialize(ctx context.Context, opts *Options) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	if m.loadState() == managerReady {
		return nil
	}
	if opts == nil {
		return fmt.Errorf("initialize: %w: options are required", ErrConfiguration)
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("initialize: %w: %w", ErrConfiguration, err)
	}

	m.storeState(managerInitializing)
	s, err := m.open(ctx, *opts)
	if err != nil {
		m.storeState(managerCreated)
		return fmt.Errorf("initialize: %w", err)
	}
	m.sess.Store(s)
	m.storeState(managerReady)

	if opts.HandleSignals {
		s.watchSignals(m)
	}
	Logger().Info("process tracking started",
		slog.Bool("clean_on_shutdown", opts.CleanOnShutdown),
		slog.String("kill_mode", opts.TerminateMode().String()),
		slog.Int("roots", m.registry.Len()))
	return nil
}

func (m *Manager) open(ctx context.Context, o Options) (_ *session, err error) {
	if !m.deps.IsElevated() {
		return nil, ErrPermission
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := newSession(o, &correlator{
		registry: m.registry,
		lookup:   m.deps.Lookup,
		inspect:  m.deps.InspectHeader,
		limit:    o.FanOutLimit,
		headers:  o.FileHeaderInspection,
	})
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	if o.LockFile != "" {
		if s.lock, err = acquireLock(ctx, o.LockFile); err != nil {
			return nil, err
		}
	}

	f := m.deps.feedFor(o)
	start, err := f.Subscribe(feed.KindStart, s.handler(s.corr.handleStart))
	if err != nil {
		return nil, fmt.Errorf("%w: start events: %w", ErrSubscription, err)
	}
	stop, err := f.Subscribe(feed.KindStop, s.handler(s.corr.handleStop))
	if err != nil {
		if uerr := start.Unsubscribe(); uerr != nil {
			Logger().Warn("failed to roll back start subscription", "error", uerr)
		}
		return nil, fmt.Errorf("%w: stop events: %w", ErrSubscription, err)
	}
	s.subs = []feed.Subscription{start, stop}
	return s, nil
}

// Stop unsubscribes from the feed, waits up to ShutdownDrainTimeout for
// in-flight event handlers, clears the registry and then deep-kills the
// removed roots if CleanOnShutdown is set. Roots disappear from Tree and
// Keys before their kill finishes. Pending resolutions complete with
// ErrShuttingDown. Kill failures do not stop the remaining kills; they are
// joined into the returned error for information only.
//
// Stop is safe to call before Initialize and more than once. The manager
// returns to the created state and may be initialized again.
func (m *Manager) Stop() error {
	return m.stop(nil)
}

// stop stops the current session. With only set, it does nothing unless
// only is still the current session.
func (m *Manager) stop(only *session) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	s := m.sess.Load()
	if only != nil && s != only {
		return nil
	}

	m.storeState(managerStopping)
	defer m.storeState(managerCreated)

	var errs []error
	if s != nil {
		errs = append(errs, s.unsubscribe()...)
		if !s.drain(s.opts.ShutdownDrainTimeout) {
			Logger().Warn("stop: timed out waiting for in-flight events to drain; proceeding",
				slog.Int64("inflight", s.inflight.Load()),
				slog.Duration("timeout", s.opts.ShutdownDrainTimeout))
		}
	}

	roots := m.registry.Clear()
	if s != nil && s.opts.CleanOnShutdown && len(roots) > 0 {
		if err := m.killAll(roots, s.opts); err != nil {
			errs = append(errs, err)
		}
	}
	for _, r := range roots {
		if r.Resolution != nil {
			r.Resolution.Complete(0, ErrShuttingDown)
		}
	}

	if s != nil {
		s.close()
		m.sess.Store(nil)
		Logger().Info("process tracking stopped", slog.Int("roots", len(roots)))
	}
	return errors.Join(errs...)
}

// killAll deep-kills roots in parallel. Each root is independent, so one
// failing kill does not prevent the others.
func (m *Manager) killAll(roots []*Root, o Options) error {
	t := m.deps.Terminator(o.TerminateMode(), o.KillTimeout)
	killErrs := make([]error, len(roots))

	var g errgroup.Group
	if o.FanOutLimit > 0 {
		g.SetLimit(o.FanOutLimit)
	}
	for idx, r := range roots {
		g.Go(func() error {
			err := r.Node.Kill(context.Background(), t, true)
			metrics.Terminated(err != nil)
			if err != nil {
				killErrs[idx] = fmt.Errorf("kill root %s: %w", r.Key, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(killErrs...)
}

// Flush removes the root whose current id is pid. It never fails and
// reports whether a root was removed. A pending resolution of the removed
// root completes with ErrRootFlushed.
func (m *Manager) Flush(pid int) bool {
	r := m.registry.RemoveByPID(pid)
	if r == nil {
		return false
	}
	if r.Resolution != nil {
		r.Resolution.Complete(0, ErrRootFlushed)
	}
	Logger().Debug("root flushed", "key", r.Key, "pid", pid)
	return true
}

// rootConfig collects RootOption values.
type rootConfig struct {
	path         string
	args         []string
	onResolved   proctree.ResolveFunc
	onChildAdded ChildAddedFunc
}

// RootOption configures RegisterRoot.
type RootOption func(*rootConfig)

// WithPath records the executable path of the root.
func WithPath(path string) RootOption {
	return func(c *rootConfig) { c.path = path }
}

// WithArgs records the command line of the root.
func WithArgs(args ...string) RootOption {
	return func(c *rootConfig) { c.args = args }
}

// WithResolutionCallback registers fn to run exactly once when the root's
// resolution completes.
func WithResolutionCallback(fn proctree.ResolveFunc) RootOption {
	return func(c *rootConfig) { c.onResolved = fn }
}

// WithChildAddedHandler registers fn for child-added notifications of the root.
func WithChildAddedHandler(fn ChildAddedFunc) RootOption {
	return func(c *rootConfig) { c.onChildAdded = fn }
}

// RegisterRoot starts tracking the process tree rooted at pid and returns
// its tracking key. pid may be a placeholder (see NextPlaceholderID); the
// returned Resolution then completes when a matching process starts. For a
// real pid the Resolution is already complete when RegisterRoot returns.
//
// RegisterRoot works in any state; roots registered before Initialize are
// tracked once events flow.
func (m *Manager) RegisterRoot(name string, pid int, filters []proctree.Filter, opts ...RootOption) (string, *proctree.Resolution) {
	var cfg rootConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	info := proctree.Info{PID: pid, Name: name, Path: cfg.path, Args: cfg.args}
	if s := m.sess.Load(); s != nil && s.opts.FileHeaderInspection && info.Path != "" {
		h, err := m.deps.InspectHeader(info.Path)
		if err != nil {
			Logger().Debug("header inspection failed", "pid", pid, "path", info.Path, "error", err)
		}
		info.Header = h
	}

	res := proctree.NewResolution(cfg.onResolved)
	r := &Root{
		Key:          uuid.NewString(),
		Node:         proctree.NewNode(info, filters),
		Resolution:   res,
		OnChildAdded: cfg.onChildAdded,
	}
	m.registry.Add(r)
	Logger().Debug("root registered", "key", r.Key, "pid", pid, "name", name,
		"placeholder", proctree.IsPlaceholder(pid), "filters", len(filters))

	if !proctree.IsPlaceholder(pid) {
		res.Complete(pid, nil)
	}
	return r.Key, res
}

// NextPlaceholderID returns a fresh placeholder id. Ids start at
// proctree.PlaceholderThreshold and only increase.
func (m *Manager) NextPlaceholderID() int {
	return proctree.PlaceholderThreshold + int(m.placeholders.Add(1)-1)
}

// options returns the options of the current session, or the defaults.
func (m *Manager) options() Options {
	if s := m.sess.Load(); s != nil {
		return s.opts
	}
	return DefaultOptions()
}

// Kill terminates the root registered under key, and with deep set its
// whole subtree first. Every node is attempted even when some fail.
func (m *Manager) Kill(ctx context.Context, key string, deep bool) error {
	r := m.registry.Get(key)
	if r == nil {
		return fmt.Errorf("kill %s: %w", key, ErrUnknownRoot)
	}
	o := m.options()
	err := r.Node.Kill(ctx, m.deps.Terminator(o.TerminateMode(), o.KillTimeout), deep)
	metrics.Terminated(err != nil)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTermination):
		return fmt.Errorf("kill root %s: %w", key, err)
	default:
		return fmt.Errorf("kill root %s: %w: %w", key, ErrTermination, err)
	}
}

// KillDefault is Kill with the depth configured by Options.DeepKill.
func (m *Manager) KillDefault(ctx context.Context, key string) error {
	return m.Kill(ctx, key, m.options().DeepKill)
}

// Tree returns a snapshot of the tree registered under key.
func (m *Manager) Tree(key string) (proctree.Snapshot, bool) {
	r := m.registry.Get(key)
	if r == nil {
		return proctree.Snapshot{}, false
	}
	return r.Node.Snapshot(), true
}

// Keys returns the tracking keys of every registered root, sorted.
func (m *Manager) Keys() []string {
	return m.registry.Keys()
}
