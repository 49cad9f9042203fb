package proctree

import "slices"

// Snapshot is an immutable deep copy of a subtree, suitable for handing to
// a UI or a log line while the live tree keeps changing.
type Snapshot struct {
	Info     Info
	State    State
	Children []Snapshot
}

// Snapshot copies the subtree rooted at n. Children are ordered by id.
func (n *Node) Snapshot() Snapshot {
	n.mu.RLock()
	s := Snapshot{Info: n.info.clone(), State: n.state}
	n.mu.RUnlock()

	for _, c := range n.Children() {
		s.Children = append(s.Children, c.Snapshot())
	}
	slices.SortFunc(s.Children, func(a, b Snapshot) int {
		return a.Info.PID - b.Info.PID
	})
	return s
}

// Find returns the snapshot of pid within s, including s itself.
func (s Snapshot) Find(pid int) (Snapshot, bool) {
	if s.Info.PID == pid {
		return s, true
	}
	for _, c := range s.Children {
		if found, ok := c.Find(pid); ok {
			return found, true
		}
	}
	return Snapshot{}, false
}

// Walk calls fn for s and every descendant in depth-first pre-order, along
// with the id of the parent (0 for s itself).
func (s Snapshot) Walk(fn func(parent int, node Snapshot)) {
	s.walk(0, fn)
}

func (s Snapshot) walk(parent int, fn func(int, Snapshot)) {
	fn(parent, s)
	for _, c := range s.Children {
		c.walk(s.Info.PID, fn)
	}
}
