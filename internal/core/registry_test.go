package core

import (
	"slices"
	"testing"

	"github.com/EvilLord666/warden/internal/proctree"
)

func newRoot(key string, pid int) *Root {
	return &Root{Key: key, Node: proctree.NewNode(proctree.Info{PID: pid, Name: key}, nil)}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	g := NewRegistry()
	g.Add(newRoot("b", 200))
	g.Add(newRoot("a", 100))
	g.Add(newRoot("c", 300))

	if got := g.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	if got := g.Keys(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v, want [a b c]", got)
	}
	if r := g.Get("b"); r == nil || r.Node.ID() != 200 {
		t.Errorf("Get(b) = %v", r)
	}
	if r := g.Get("z"); r != nil {
		t.Errorf("Get(z) = %v, want nil", r)
	}

	if r := g.RemoveByPID(100); r == nil || r.Key != "a" {
		t.Errorf("RemoveByPID(100) = %v, want root a", r)
	}
	if r := g.RemoveByPID(100); r != nil {
		t.Errorf("second RemoveByPID(100) = %v, want nil", r)
	}
	if got := len(g.Snapshot()); got != 2 {
		t.Errorf("len(Snapshot()) = %d, want 2", got)
	}

	cleared := g.Clear()
	if len(cleared) != 2 || g.Len() != 0 {
		t.Errorf("Clear() returned %d roots, Len() = %d; want 2, 0", len(cleared), g.Len())
	}
}

func TestRegistry_RemoveByResolvedPID(t *testing.T) {
	t.Parallel()

	g := NewRegistry()
	r := newRoot("game", proctree.PlaceholderThreshold)
	g.Add(r)
	r.Node.Resolve(proctree.Info{PID: 4821, Name: "game"})

	if got := g.RemoveByPID(proctree.PlaceholderThreshold); got != nil {
		t.Error("RemoveByPID(old placeholder) removed a root")
	}
	if got := g.RemoveByPID(4821); got != r {
		t.Error("RemoveByPID(current id) did not remove the root")
	}
}
