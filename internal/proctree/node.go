package proctree

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/EvilLord666/warden/internal/process"
)

// PlaceholderThreshold is the smallest placeholder id. Real OS process ids
// stay below it; callers registering a deferred launch pick an id at or
// above it.
const PlaceholderThreshold = 999999

// IsPlaceholder reports whether pid is a placeholder rather than a real OS id.
func IsPlaceholder(pid int) bool {
	return pid >= PlaceholderThreshold
}

// Info is the descriptive identity of a tracked process.
type Info struct {
	PID  int
	Name string
	Path string
	Args []string
	// Header is only populated when executable header inspection is enabled.
	Header process.Header
}

func (i Info) clone() Info {
	i.Args = slices.Clone(i.Args)
	return i
}

// Terminator sends the termination primitive to a single OS process.
type Terminator interface {
	Terminate(ctx context.Context, pid int) error
}

// Node is one tracked process and the subtree it owns.
//
// Children are keyed by the id they had when attached. Only roots are ever
// resolved from a placeholder, so a child's key never goes stale.
type Node struct {
	mu       sync.RWMutex
	info     Info
	state    State
	children map[int]*Node

	// filters is set at construction and never reassigned.
	filters []Filter
}

// NewNode returns an Alive node with no children. filters is copied; the
// node evaluates them against itself in IsFiltered and hands them down to
// children the correlator creates beneath it.
func NewNode(info Info, filters []Filter) *Node {
	return &Node{
		info:     info.clone(),
		filters:  slices.Clone(filters),
		children: make(map[int]*Node),
	}
}

// ID returns the current OS id, which changes once if a placeholder resolves.
func (n *Node) ID() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.info.PID
}

// Info returns a copy of the node's identity.
func (n *Node) Info() Info {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.info.clone()
}

// State returns the current lifecycle state.
func (n *Node) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Filters returns a copy of the inherited filter set.
func (n *Node) Filters() []Filter {
	return slices.Clone(n.filters)
}

// IsPlaceholder reports whether the node still waits for its real process.
func (n *Node) IsPlaceholder() bool {
	return IsPlaceholder(n.ID())
}

// Children returns a point-in-time copy of the direct children.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	return out
}

// AddChild attaches candidate unless a child with the same id is already
// present. It reports whether the candidate was inserted.
func (n *Node) AddChild(candidate *Node) bool {
	if candidate == nil || candidate == n {
		return false
	}
	pid := candidate.ID()

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.children[pid]; exists {
		return false
	}
	n.children[pid] = candidate
	return true
}

func (n *Node) removeChild(c *Node) {
	pid := c.ID()
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.children[pid] == c {
		delete(n.children, pid)
	}
}

// FindDescendant searches the subtree below n depth-first for a node whose
// id is pid. n itself is not considered.
func (n *Node) FindDescendant(pid int) *Node {
	for _, c := range n.Children() {
		if c.ID() == pid {
			return c
		}
		if found := c.FindDescendant(pid); found != nil {
			return found
		}
	}
	return nil
}

// IsFiltered evaluates the node's inherited filters against its own name
// and path. A filtered candidate must not be attached.
func (n *Node) IsFiltered() bool {
	return Filtered(n.filters, n.Info())
}

// UpdateState moves the node to s. Dead is terminal, so any transition out
// of it is ignored. The change is local to n; children keep their state.
// It reports whether the state actually changed.
func (n *Node) UpdateState(s State) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == Dead || n.state == s {
		return false
	}
	n.state = s
	return true
}

// Resolve rewrites the identity of a placeholder node with that of the real
// process. It does nothing and returns false when the node no longer holds a
// placeholder id, so concurrent resolvers cannot both win. The header of the
// placeholder is kept when info carries none.
func (n *Node) Resolve(info Info) bool {
	if IsPlaceholder(info.PID) {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !IsPlaceholder(n.info.PID) {
		return false
	}
	header := n.info.Header
	n.info = info.clone()
	if n.info.Header.Format == "" {
		n.info.Header = header
	}
	return true
}

// Kill invokes t on this node's process. With deep set it first kills every
// descendant; a failure somewhere in the subtree is collected and the rest of
// the subtree is still attempted. Children attached while the kill runs, for
// example a crash reporter spawned on SIGTERM, are killed as well. A child is
// pruned from the tree only once it was killed and has no children left.
//
// Placeholder ids and Dead nodes are never signalled: the former do not name
// a process and the latter may already have been recycled by the OS.
func (n *Node) Kill(ctx context.Context, t Terminator, deep bool) error {
	var (
		errs      []error
		attempted map[*Node]bool
	)
	if deep {
		attempted = make(map[*Node]bool)
		errs = n.killChildren(ctx, t, attempted, errs)
	}

	info := n.Info()
	switch {
	case IsPlaceholder(info.PID) || n.State() == Dead:
	case ctx.Err() != nil:
		errs = append(errs, fmt.Errorf("kill %s (%d): %w", info.Name, info.PID, ctx.Err()))
	default:
		if err := t.Terminate(ctx, info.PID); err != nil {
			errs = append(errs, fmt.Errorf("kill %s (%d): %w", info.Name, info.PID, err))
		}
	}

	if deep {
		errs = n.killChildren(ctx, t, attempted, errs)
	}
	return errors.Join(errs...)
}

// killChildren kills every child not yet in attempted and repeats until no
// new child shows up or ctx is done.
func (n *Node) killChildren(ctx context.Context, t Terminator, attempted map[*Node]bool, errs []error) []error {
	for ctx.Err() == nil {
		var fresh []*Node
		for _, c := range n.Children() {
			if !attempted[c] {
				fresh = append(fresh, c)
			}
		}
		if len(fresh) == 0 {
			return errs
		}
		for _, c := range fresh {
			attempted[c] = true
			if err := c.Kill(ctx, t, true); err != nil {
				errs = append(errs, err)
				continue
			}
			if len(c.Children()) == 0 {
				n.removeChild(c)
			}
		}
	}
	return errs
}

// Len returns the number of nodes in the subtree, n included.
func (n *Node) Len() int {
	total := 1
	for _, c := range n.Children() {
		total += c.Len()
	}
	return total
}
