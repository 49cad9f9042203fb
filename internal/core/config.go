package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/EvilLord666/warden/internal/feed"
	"github.com/EvilLord666/warden/internal/process"
)

// Defaults applied by DefaultOptions.
const (
	DefaultShutdownDrainTimeout = 30 * time.Second
	DefaultKillTimeout          = 5 * time.Second
	DefaultPollInterval         = feed.DefaultPollInterval
)

// Options configures an initialized Manager. The Manager copies it during
// Initialize; later changes to the caller's value have no effect.
type Options struct {
	// CleanOnShutdown deep-kills every registered root during Stop.
	CleanOnShutdown bool

	// DeepKill is the default depth for kill requests that do not choose
	// one explicitly.
	DeepKill bool

	// FileHeaderInspection reads the executable header of every tracked
	// process whose path is known.
	FileHeaderInspection bool

	// LegacyKill selects graceful termination (SIGTERM, escalating after
	// KillTimeout) instead of an immediate forceful kill.
	LegacyKill bool

	// HandleSignals stops the manager on SIGINT or SIGTERM and then lets
	// the signal continue to its default disposition.
	HandleSignals bool

	// LockFile, when set, is locked exclusively for the lifetime of the
	// initialized manager so only one supervisor tracks at a time.
	LockFile string

	// FanOutLimit bounds how many roots are processed concurrently for a
	// single event. 0 means unbounded.
	FanOutLimit int

	// ShutdownDrainTimeout bounds how long Stop waits for in-flight event
	// handlers before clearing the registry.
	ShutdownDrainTimeout time.Duration

	// KillTimeout bounds the wait for a signalled process to disappear.
	KillTimeout time.Duration

	// PollInterval is the process table polling period of the default feed.
	PollInterval time.Duration
}

// DefaultOptions returns Options with every duration set to its default and
// every flag off.
func DefaultOptions() Options {
	return Options{
		ShutdownDrainTimeout: DefaultShutdownDrainTimeout,
		KillTimeout:          DefaultKillTimeout,
		PollInterval:         DefaultPollInterval,
	}
}

// Validate checks every field and returns all violations joined.
func (o Options) Validate() error {
	var errs []error
	if o.FanOutLimit < 0 {
		errs = append(errs, fmt.Errorf("fan-out limit must not be negative, got %d", o.FanOutLimit))
	}
	if o.ShutdownDrainTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown drain timeout must be greater than 0, got %v", o.ShutdownDrainTimeout))
	}
	if o.KillTimeout <= 0 {
		errs = append(errs, fmt.Errorf("kill timeout must be greater than 0, got %v", o.KillTimeout))
	}
	if o.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be greater than 0, got %v", o.PollInterval))
	}
	return errors.Join(errs...)
}

// TerminateMode maps LegacyKill onto the terminate primitive's mode.
func (o Options) TerminateMode() process.Mode {
	if o.LegacyKill {
		return process.ModeGraceful
	}
	return process.ModeForceful
}
