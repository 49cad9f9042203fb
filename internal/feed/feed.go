package feed

import (
	"fmt"

	"github.com/EvilLord666/warden/internal/sentinel"
)

// ErrNilHandler is returned by Subscribe when the handler is nil.
const ErrNilHandler = sentinel.Error("handler must not be nil")

// ErrInvalidKind is returned by Subscribe for an unknown event kind.
const ErrInvalidKind = sentinel.Error("invalid event kind")

// Kind distinguishes process start from process stop events.
type Kind int

const (
	KindStart Kind = iota
	KindStop
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindStart || k == KindStop
}

// String returns "start" or "stop".
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindStop:
		return "stop"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is one OS notification. ParentPID is only meaningful for starts.
type Event struct {
	Kind      Kind
	Name      string
	PID       int
	ParentPID int
}

// Handler receives events on the feed's dispatch goroutine.
type Handler func(Event)

// Subscription is a live registration with a Feed.
type Subscription interface {
	// Unsubscribe stops delivery. An event already being dispatched when
	// Unsubscribe is called may still arrive.
	Unsubscribe() error
}

// Feed is the OS event source.
type Feed interface {
	Subscribe(kind Kind, h Handler) (Subscription, error)
}
