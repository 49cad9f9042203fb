package core

import (
	"slices"
	"sync"

	"github.com/EvilLord666/warden/internal/metrics"
	"github.com/EvilLord666/warden/internal/proctree"
)

// ChildAdded describes a process attached to a tracked tree.
type ChildAdded struct {
	Name      string
	PID       int
	ParentPID int
}

// ChildAddedFunc is called synchronously from the fan-out goroutine that
// attached the child. It must not block for long: the event that produced
// the child waits for it.
type ChildAddedFunc func(ChildAdded)

// Root is one registry entry: a tracked tree and the hooks registered with it.
type Root struct {
	Key          string
	Node         *proctree.Node
	Resolution   *proctree.Resolution
	OnChildAdded ChildAddedFunc
}

// Registry maps tracking keys to roots. The lock covers only map access;
// tree mutations are synchronized by the nodes themselves so roots can be
// processed in parallel.
type Registry struct {
	mu    sync.RWMutex
	roots map[string]*Root
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{roots: make(map[string]*Root)}
}

// Add inserts r, replacing any root with the same key.
func (g *Registry) Add(r *Root) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.roots[r.Key]; !exists {
		metrics.RootsChanged(1)
	}
	g.roots[r.Key] = r
}

// Get returns the root registered under key, or nil.
func (g *Registry) Get(key string) *Root {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roots[key]
}

// RemoveByPID removes and returns the first root whose current id is pid.
// It returns nil when no root matches.
func (g *Registry) RemoveByPID(pid int) *Root {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, r := range g.roots {
		if r.Node.ID() == pid {
			delete(g.roots, key)
			metrics.RootsChanged(-1)
			return r
		}
	}
	return nil
}

// Clear empties the registry and returns the roots it held.
func (g *Registry) Clear() []*Root {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Root, 0, len(g.roots))
	for _, r := range g.roots {
		out = append(out, r)
	}
	clear(g.roots)
	metrics.RootsChanged(-len(out))
	return out
}

// Len returns the number of registered roots.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.roots)
}

// Snapshot returns the registered roots at this instant, for fan-out.
func (g *Registry) Snapshot() []*Root {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Root, 0, len(g.roots))
	for _, r := range g.roots {
		out = append(out, r)
	}
	return out
}

// Keys returns the registered tracking keys in sorted order.
func (g *Registry) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]string, 0, len(g.roots))
	for k := range g.roots {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
