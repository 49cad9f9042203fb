package warden

import "github.com/EvilLord666/warden/internal/core"

// NewManagerForTesting returns a Manager wired to the given collaborators
// instead of the operating system.
//
//nolint:ireturn // Mirrors NewManager.
func NewManagerForTesting(deps core.Deps) Manager {
	return &managerWrapper{mgr: core.NewManager(deps)}
}
