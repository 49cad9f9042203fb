package core

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/EvilLord666/warden/internal/feed"
	"github.com/EvilLord666/warden/internal/process"
	"github.com/EvilLord666/warden/internal/proctree"
)

// fakeFeed hands events to the subscribed handlers synchronously.
type fakeFeed struct {
	mu       sync.Mutex
	handlers map[feed.Kind]feed.Handler
	fail     map[feed.Kind]error
	// history keeps every handler ever subscribed, to replay late events.
	history      []feed.Handler
	unsubscribed []feed.Kind
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		handlers: make(map[feed.Kind]feed.Handler),
		fail:     make(map[feed.Kind]error),
	}
}

func (f *fakeFeed) Subscribe(kind feed.Kind, h feed.Handler) (feed.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[kind]; err != nil {
		return nil, err
	}
	f.handlers[kind] = h
	f.history = append(f.history, h)
	return &fakeSubscription{f: f, kind: kind}, nil
}

func (f *fakeFeed) failOn(kind feed.Kind, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, kind)
		return
	}
	f.fail[kind] = err
}

func (f *fakeFeed) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *fakeFeed) emit(ev feed.Event) {
	f.mu.Lock()
	h := f.handlers[ev.Kind]
	f.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

func (f *fakeFeed) start(name string, pid, ppid int) {
	f.emit(feed.Event{Kind: feed.KindStart, Name: name, PID: pid, ParentPID: ppid})
}

func (f *fakeFeed) stop(name string, pid int) {
	f.emit(feed.Event{Kind: feed.KindStop, Name: name, PID: pid})
}

type fakeSubscription struct {
	f    *fakeFeed
	kind feed.Kind
}

func (s *fakeSubscription) Unsubscribe() error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	delete(s.f.handlers, s.kind)
	s.f.unsubscribed = append(s.f.unsubscribed, s.kind)
	return nil
}

// fakeLookup serves metadata from maps and fails for pids without an entry.
type fakeLookup struct {
	paths map[int]string
	args  map[int][]string
}

var errNoSuchProcess = errors.New("no such process")

func (l fakeLookup) Path(_ context.Context, pid int) (string, error) {
	if p, ok := l.paths[pid]; ok {
		return p, nil
	}
	return "", errNoSuchProcess
}

func (l fakeLookup) Args(_ context.Context, pid int) ([]string, error) {
	if a, ok := l.args[pid]; ok {
		return a, nil
	}
	return nil, errNoSuchProcess
}

// fakeTerminator records terminated pids and fails for those in fail.
// onTerminate, if set, runs before the pid is recorded.
type fakeTerminator struct {
	mu          sync.Mutex
	mode        process.Mode
	killed      []int
	fail        map[int]bool
	onTerminate func(pid int)
}

func (f *fakeTerminator) Terminate(_ context.Context, pid int) error {
	if f.onTerminate != nil {
		f.onTerminate(pid)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, pid)
	if f.fail[pid] {
		return process.ErrTermination
	}
	return nil
}

func (f *fakeTerminator) factory(mode process.Mode, _ time.Duration) proctree.Terminator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
	return f
}

func (f *fakeTerminator) Killed() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.killed)
	slices.Sort(out)
	return out
}

func (f *fakeTerminator) Mode() process.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

type harness struct {
	m    *Manager
	feed *fakeFeed
	term *fakeTerminator
}

// newHarness returns an initialized Manager wired to fakes. opts may be nil
// for the test defaults.
func newHarness(t *testing.T, opts *Options) *harness {
	t.Helper()
	h := &harness{feed: newFakeFeed(), term: &fakeTerminator{}}
	h.m = NewManager(Deps{
		Feed: h.feed,
		Lookup: fakeLookup{
			paths: map[int]string{4821: `C:\Games\Heroes\HeroesOfTheStorm_x64.exe`, 200: "/usr/bin/game"},
			args:  map[int][]string{4821: {"-launch"}},
		},
		InspectHeader: func(string) (process.Header, error) {
			return process.Header{Format: process.FormatELF, Arch: "amd64"}, nil
		},
		Terminator: h.term.factory,
		IsElevated: func() bool { return true },
	})
	if opts == nil {
		o := testOptions()
		opts = &o
	}
	if err := h.m.Initialize(context.Background(), opts); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { _ = h.m.Stop() })
	return h
}

func testOptions() Options {
	o := DefaultOptions()
	o.ShutdownDrainTimeout = time.Second
	return o
}

// childRecorder collects child-added notifications.
type childRecorder struct {
	mu    sync.Mutex
	added []ChildAdded
}

func (r *childRecorder) handle(c ChildAdded) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, c)
}

func (r *childRecorder) pids() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.added))
	for _, c := range r.added {
		out = append(out, c.PID)
	}
	slices.Sort(out)
	return out
}
