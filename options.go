package warden

import (
	"fmt"
	"time"

	"github.com/EvilLord666/warden/internal/core"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("warden: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("warden: %s must not be empty", name))
	}
}

// Option sets one field of the Options built by NewOptions.
//
// Several With* functions panic on invalid input (negative limits, empty
// paths, non-positive durations). Option values are typically constants,
// so an invalid value is a programmer error; the pattern mirrors
// [regexp.MustCompile].
type Option func(*Options)

// NewOptions returns Options with every default applied and then opts.
func NewOptions(opts ...Option) *Options {
	o := core.DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &o
}

// WithCleanOnShutdown kills every tracked tree during Stop.
//
// Default: false.
func WithCleanOnShutdown(enabled bool) Option {
	return func(o *Options) {
		o.CleanOnShutdown = enabled
	}
}

// WithDeepKill makes KillDefault terminate whole subtrees instead of the
// root process only.
//
// Default: false.
func WithDeepKill(enabled bool) Option {
	return func(o *Options) {
		o.DeepKill = enabled
	}
}

// WithFileHeaderInspection records the executable format, architecture and
// GUI subsystem flag of every tracked process whose path is known.
//
// Default: false.
func WithFileHeaderInspection(enabled bool) Option {
	return func(o *Options) {
		o.FileHeaderInspection = enabled
	}
}

// WithLegacyKill asks processes to exit (SIGTERM) and only kills them
// forcefully after the kill timeout.
//
// Default: false (immediate forceful kill).
func WithLegacyKill(enabled bool) Option {
	return func(o *Options) {
		o.LegacyKill = enabled
	}
}

// WithHandleSignals stops the Manager on SIGINT and SIGTERM before the
// signal takes its usual effect.
//
// Default: false.
func WithHandleSignals(enabled bool) Option {
	return func(o *Options) {
		o.HandleSignals = enabled
	}
}

// WithLockFile makes Initialize take an exclusive lock on path, so that
// only one supervisor tracks the host at a time. The lock is released by
// Stop.
//
// Panics if path is empty.
func WithLockFile(path string) Option {
	requireNonEmpty("lock file path", path)
	return func(o *Options) {
		o.LockFile = path
	}
}

// WithFanOutLimit bounds how many roots are processed concurrently for a
// single event. 0 means unbounded.
//
// Default: 0.
//
// Panics if n < 0.
func WithFanOutLimit(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("warden: fan-out limit must not be negative, got %d", n))
	}
	return func(o *Options) {
		o.FanOutLimit = n
	}
}

// WithShutdownDrainTimeout sets how long Stop waits for in-flight event
// handlers.
//
// Default: 30 seconds.
//
// Panics if d <= 0.
func WithShutdownDrainTimeout(d time.Duration) Option {
	requirePositive("shutdown drain timeout", d)
	return func(o *Options) {
		o.ShutdownDrainTimeout = d
	}
}

// WithKillTimeout sets how long a kill waits for a signalled process to
// exit.
//
// Default: 5 seconds.
//
// Panics if d <= 0.
func WithKillTimeout(d time.Duration) Option {
	requirePositive("kill timeout", d)
	return func(o *Options) {
		o.KillTimeout = d
	}
}

// WithPollInterval sets the process table polling period.
//
// Default: 250 milliseconds.
//
// Panics if d <= 0.
func WithPollInterval(d time.Duration) Option {
	requirePositive("poll interval", d)
	return func(o *Options) {
		o.PollInterval = d
	}
}
