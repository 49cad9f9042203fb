package feed

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	gops "github.com/shirou/gopsutil/v4/process"
	"k8s.io/apimachinery/pkg/util/wait"
)

// DefaultPollInterval is the snapshot interval used when none is given.
const DefaultPollInterval = 250 * time.Millisecond

// Entry is one row of a process table snapshot.
type Entry struct {
	PID       int
	ParentPID int
	Name      string
	// CreateTime distinguishes a recycled id from the process that held it
	// before. Zero when unknown.
	CreateTime int64
}

// Lister returns the current process table.
type Lister func(ctx context.Context) ([]Entry, error)

// ListProcesses is the default Lister, backed by gopsutil. Processes that
// exit while the table is being read are skipped.
func ListProcesses(ctx context.Context) ([]Entry, error) {
	procs, err := gops.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	out := make([]Entry, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		ppid, err := p.PpidWithContext(ctx)
		if err != nil {
			ppid = 0
		}
		created, err := p.CreateTimeWithContext(ctx)
		if err != nil {
			created = 0
		}
		out = append(out, Entry{
			PID:        int(p.Pid),
			ParentPID:  int(ppid),
			Name:       name,
			CreateTime: created,
		})
	}
	return out, nil
}

type subscriber struct {
	kind    Kind
	handler Handler
}

// Poller is a Feed that polls the process table. The poll loop runs while
// at least one subscription is active. The first snapshot after the loop
// starts is a baseline and produces no events.
type Poller struct {
	interval time.Duration
	list     Lister
	log      *slog.Logger

	mu       sync.Mutex
	subs     map[uint64]subscriber
	nextID   uint64
	cancel   context.CancelFunc
	known    map[int]Entry
	baseline bool
}

// NewPoller returns a Poller. A non-positive interval uses
// DefaultPollInterval, a nil list uses ListProcesses and a nil logger uses
// slog.Default().
func NewPoller(interval time.Duration, list Lister, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if list == nil {
		list = ListProcesses
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		interval: interval,
		list:     list,
		log:      logger,
		subs:     make(map[uint64]subscriber),
	}
}

// Subscribe registers h for events of kind. The first subscription starts
// the poll loop.
func (p *Poller) Subscribe(kind Kind, h Handler) (Subscription, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("subscribe: %w: %v", ErrInvalidKind, kind)
	}
	if h == nil {
		return nil, fmt.Errorf("subscribe %s: %w", kind, ErrNilHandler)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	p.subs[id] = subscriber{kind: kind, handler: h}
	if p.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.known = nil
		p.baseline = false
		go wait.UntilWithContext(ctx, p.tick, p.interval)
	}
	return &pollerSubscription{p: p, id: id}, nil
}

func (p *Poller) unsubscribe(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.subs, id)
	if len(p.subs) == 0 && p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
		p.log.Debug("process poll failed", "error", err)
	}
}

// Poll takes one snapshot, diffs it against the previous one and dispatches
// the resulting events synchronously. The poll loop calls it on every tick;
// tests call it directly.
func (p *Poller) Poll(ctx context.Context) error {
	entries, err := p.list(ctx)
	if err != nil {
		return err
	}

	current := make(map[int]Entry, len(entries))
	for _, e := range entries {
		current[e.PID] = e
	}

	p.mu.Lock()
	previous, primed := p.known, p.baseline
	p.known, p.baseline = current, true
	p.mu.Unlock()

	if !primed {
		return nil
	}
	for _, ev := range Diff(previous, current) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.dispatch(ev)
	}
	return nil
}

func (p *Poller) dispatch(ev Event) {
	p.mu.Lock()
	handlers := make([]Handler, 0, len(p.subs))
	for _, s := range p.subs {
		if s.kind == ev.Kind {
			handlers = append(handlers, s.handler)
		}
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Diff returns the events that turn previous into current: stops first
// (ordered by id), then starts ordered by creation time and id so parents
// precede their children. An id whose creation time changed was recycled
// and yields a stop followed by a start.
func Diff(previous, current map[int]Entry) []Event {
	var stops, starts []Entry
	for pid, old := range previous {
		now, ok := current[pid]
		if !ok || recycled(old, now) {
			stops = append(stops, old)
		}
	}
	for pid, now := range current {
		old, ok := previous[pid]
		if !ok || recycled(old, now) {
			starts = append(starts, now)
		}
	}

	slices.SortFunc(stops, func(a, b Entry) int { return cmp.Compare(a.PID, b.PID) })
	slices.SortFunc(starts, func(a, b Entry) int {
		if c := cmp.Compare(a.CreateTime, b.CreateTime); c != 0 {
			return c
		}
		return cmp.Compare(a.PID, b.PID)
	})

	events := make([]Event, 0, len(stops)+len(starts))
	for _, e := range stops {
		events = append(events, Event{Kind: KindStop, Name: e.Name, PID: e.PID})
	}
	for _, e := range starts {
		events = append(events, Event{Kind: KindStart, Name: e.Name, PID: e.PID, ParentPID: e.ParentPID})
	}
	return events
}

func recycled(old, now Entry) bool {
	return old.CreateTime != 0 && now.CreateTime != 0 && old.CreateTime != now.CreateTime
}

type pollerSubscription struct {
	p    *Poller
	id   uint64
	once sync.Once
}

func (s *pollerSubscription) Unsubscribe() error {
	s.once.Do(func() { s.p.unsubscribe(s.id) })
	return nil
}
