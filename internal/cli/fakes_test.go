package cli

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/EvilLord666/warden"
	"github.com/EvilLord666/warden/internal/proctree"
)

type registration struct {
	name    string
	pid     int
	filters []warden.Filter
}

// fakeManager records calls and resolves placeholders to resolveTo.
type fakeManager struct {
	initErr   error
	resolveTo int
	dead      bool

	mu         sync.Mutex
	opts       *warden.Options
	registered []registration
	flushed    []int
	stops      int
	next       int
}

var _ warden.Manager = (*fakeManager)(nil)

func (f *fakeManager) Initialize(_ context.Context, opts *warden.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = opts
	return f.initErr
}

func (f *fakeManager) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeManager) Flush(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed = append(f.flushed, pid)
	return true
}

func (f *fakeManager) RegisterRoot(name string, pid int, filters []warden.Filter, _ ...warden.RootOption) (string, *warden.Resolution) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, registration{name: name, pid: pid, filters: filters})

	res := proctree.NewResolution(nil)
	switch {
	case !warden.IsPlaceholder(pid):
		res.Complete(pid, nil)
	case f.resolveTo != 0:
		res.Complete(f.resolveTo, nil)
	}
	return fmt.Sprintf("key-%d", len(f.registered)), res
}

func (f *fakeManager) NextPlaceholderID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return warden.PlaceholderThreshold + f.next
}

func (f *fakeManager) Kill(context.Context, string, bool) error { return nil }

func (f *fakeManager) KillDefault(context.Context, string) error { return nil }

// Tree reports the last registered root with one child.
func (f *fakeManager) Tree(string) (warden.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.registered) == 0 {
		return warden.Snapshot{}, false
	}
	r := f.registered[len(f.registered)-1]
	pid := r.pid
	if f.resolveTo != 0 {
		pid = f.resolveTo
	}
	s := warden.Snapshot{
		Info:     warden.ProcessInfo{PID: pid, Name: r.name},
		Children: []warden.Snapshot{{Info: warden.ProcessInfo{PID: pid + 1, Name: "worker"}}},
	}
	if f.dead {
		s.State = warden.Dead
	}
	return s, true
}

func (f *fakeManager) Keys() []string { return nil }

func (f *fakeManager) snapshot() (regs []registration, flushed []int, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]registration(nil), f.registered...), append([]int(nil), f.flushed...), f.stops
}

// execute runs the command tree against f and returns stdout.
func execute(ctx context.Context, f *fakeManager, args ...string) (string, error) {
	root := newRootCommand(func() warden.Manager { return f })
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), err
}
