package core

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/EvilLord666/warden/internal/feed"
	"github.com/EvilLord666/warden/internal/match"
	"github.com/EvilLord666/warden/internal/metrics"
	"github.com/EvilLord666/warden/internal/proctree"
)

// correlator maps feed events onto the registered trees. Every event is
// fanned out across all roots; each root is an isolated unit of work.
type correlator struct {
	registry *Registry
	lookup   MetadataLookup
	inspect  HeaderInspector

	// limit bounds per-event fan-out; 0 is unbounded.
	limit int
	// headers enables executable header inspection of new nodes.
	headers bool
}

// handleStart runs the resolution pass over placeholder roots to completion
// and only then the attachment pass, because resolving a root can turn it
// into the parent the attachment pass is looking for.
func (c *correlator) handleStart(ctx context.Context, ev feed.Event) {
	metrics.ObserveEvent(feed.KindStart.String())
	roots := c.registry.Snapshot()

	var pending []*Root
	for _, r := range roots {
		if r.Node.IsPlaceholder() {
			pending = append(pending, r)
		}
	}
	if len(pending) > 0 {
		c.fanOut(pending, func(r *Root) { c.resolve(ctx, r, ev) })
	}
	c.fanOut(roots, func(r *Root) { c.attach(ctx, r, ev) })
}

// handleStop marks the matching node Dead. A root that matches is not
// searched further; descendants of a dead node keep their own state.
func (c *correlator) handleStop(_ context.Context, ev feed.Event) {
	metrics.ObserveEvent(feed.KindStop.String())
	c.fanOut(c.registry.Snapshot(), func(r *Root) {
		if r.Node.ID() == ev.PID {
			if r.Node.UpdateState(proctree.Dead) {
				Logger().Debug("root exited", "key", r.Key, "pid", ev.PID, "name", ev.Name)
			}
			return
		}
		if n := r.Node.FindDescendant(ev.PID); n != nil && n.UpdateState(proctree.Dead) {
			Logger().Debug("tracked process exited", "key", r.Key, "pid", ev.PID, "name", ev.Name)
		}
	})
}

func (c *correlator) resolve(ctx context.Context, r *Root, ev feed.Event) {
	if !r.Node.IsPlaceholder() || !match.Deferred(r.Node.Info().Name, ev.Name) {
		return
	}
	info := c.describe(ctx, ev.PID, match.StripExtension(ev.Name))
	if !r.Node.Resolve(info) {
		return
	}
	metrics.Resolved()
	Logger().Debug("deferred launch resolved",
		"key", r.Key, "pid", ev.PID, "name", info.Name, "path", info.Path)
	if r.Resolution != nil {
		r.Resolution.Complete(ev.PID, nil)
	}
}

func (c *correlator) attach(ctx context.Context, r *Root, ev feed.Event) {
	if proctree.IsPlaceholder(ev.ParentPID) || ev.PID == ev.ParentPID {
		return
	}
	parent := r.Node
	if parent.ID() != ev.ParentPID {
		if parent = r.Node.FindDescendant(ev.ParentPID); parent == nil {
			return
		}
	}

	child := proctree.NewNode(c.describe(ctx, ev.PID, ev.Name), parent.Filters())
	if child.IsFiltered() {
		metrics.ChildFiltered()
		Logger().Debug("child filtered", "key", r.Key, "pid", ev.PID, "ppid", ev.ParentPID, "name", ev.Name)
		return
	}
	if !parent.AddChild(child) {
		return
	}
	metrics.ChildAttached()
	Logger().Debug("child attached", "key", r.Key, "pid", ev.PID, "ppid", ev.ParentPID, "name", ev.Name)
	if r.OnChildAdded != nil {
		r.OnChildAdded(ChildAdded{Name: ev.Name, PID: ev.PID, ParentPID: ev.ParentPID})
	}
}

// describe builds the identity of pid. Lookup failures are logged and leave
// the affected field blank.
func (c *correlator) describe(ctx context.Context, pid int, name string) proctree.Info {
	info := proctree.Info{PID: pid, Name: name}
	if c.lookup == nil {
		return info
	}

	path, err := c.lookup.Path(ctx, pid)
	if err != nil {
		Logger().Debug("path lookup failed", "pid", pid, "name", name, "error", err)
	}
	info.Path = path

	args, err := c.lookup.Args(ctx, pid)
	if err != nil {
		Logger().Debug("command line lookup failed", "pid", pid, "name", name, "error", err)
	}
	info.Args = args

	if c.headers && info.Path != "" && c.inspect != nil {
		h, err := c.inspect(info.Path)
		if err != nil {
			Logger().Debug("header inspection failed", "pid", pid, "path", info.Path, "error", err)
		}
		info.Header = h
	}
	return info
}

// fanOut runs fn for every root concurrently and waits for all of them.
// A panic in one unit is recovered and logged; siblings are unaffected.
func (c *correlator) fanOut(roots []*Root, fn func(*Root)) {
	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	for _, r := range roots {
		g.Go(func() error {
			isolate(r, fn)
			return nil
		})
	}
	_ = g.Wait()
}

func isolate(r *Root, fn func(*Root)) {
	defer func() {
		if v := recover(); v != nil {
			metrics.Contained()
			Logger().Warn("root event handling failed",
				slog.String("key", r.Key),
				slog.Int("pid", r.Node.ID()),
				slog.String("error", fmt.Sprint(v)))
		}
	}()
	fn(r)
}
