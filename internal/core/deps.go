package core

import (
	"context"
	"time"

	"github.com/EvilLord666/warden/internal/feed"
	"github.com/EvilLord666/warden/internal/process"
	"github.com/EvilLord666/warden/internal/proctree"
)

// MetadataLookup reads the path and command line of a live process.
type MetadataLookup interface {
	Path(ctx context.Context, pid int) (string, error)
	Args(ctx context.Context, pid int) ([]string, error)
}

// HeaderInspector reads the executable header at path.
type HeaderInspector func(path string) (process.Header, error)

// TerminatorFactory returns the kill primitive for mode. timeout bounds the
// wait for a signalled process to exit.
type TerminatorFactory func(mode process.Mode, timeout time.Duration) proctree.Terminator

// Deps are the OS collaborators of a Manager. Nil fields fall back to the
// real implementations in the process and feed packages; tests replace them
// with fakes.
type Deps struct {
	// Feed delivers start and stop events. Nil creates a feed.Poller with
	// Options.PollInterval on every Initialize.
	Feed feed.Feed

	Lookup        MetadataLookup
	InspectHeader HeaderInspector
	Terminator    TerminatorFactory

	// IsElevated reports whether the caller may observe process events.
	IsElevated func() bool
}

func (d Deps) withDefaults() Deps {
	if d.Lookup == nil {
		d.Lookup = process.Lookup{}
	}
	if d.InspectHeader == nil {
		d.InspectHeader = process.InspectHeader
	}
	if d.Terminator == nil {
		d.Terminator = newProcessTerminator
	}
	if d.IsElevated == nil {
		d.IsElevated = process.IsElevated
	}
	return d
}

func newProcessTerminator(mode process.Mode, timeout time.Duration) proctree.Terminator {
	return process.Terminator{Mode: mode, Timeout: timeout, Logger: Logger()}
}

func (d Deps) feedFor(o Options) feed.Feed {
	if d.Feed != nil {
		return d.Feed
	}
	return feed.NewPoller(o.PollInterval, nil, Logger())
}
