// Package proctree holds the in-memory model of a supervised process tree.
//
// A Node is one tracked OS process. It owns its children, carries the filter
// rules its children inherit, and records a one-way Alive → Dead state. Every
// Node guards its own fields with its own RWMutex, so structural changes to
// one subtree never serialize work on another; no lock is held across a
// recursive descent or while an external collaborator (a terminator) runs.
//
// Roots may start life with a placeholder id (>= PlaceholderThreshold) when
// the real process does not exist yet. Resolve rewrites the identity of such
// a node exactly once, and a Resolution reports the outcome to whoever
// registered the root.
package proctree
