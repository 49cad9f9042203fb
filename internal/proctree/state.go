package proctree

import "fmt"

// State is the lifecycle state of a tracked process. The zero value is Alive.
type State uint32

const (
	// Alive is the implicit state of every newly created node.
	Alive State = iota
	// Dead is terminal: a node never leaves it.
	Dead
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Alive:
		return "Alive"
	case Dead:
		return "Dead"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}
