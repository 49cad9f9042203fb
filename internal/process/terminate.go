package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gops "github.com/shirou/gopsutil/v4/process"
)

// Mode selects the termination mechanism.
type Mode int

const (
	// ModeForceful kills the process outright (SIGKILL, TerminateProcess).
	ModeForceful Mode = iota
	// ModeGraceful asks the process to exit (SIGTERM) and escalates to a
	// forceful kill once the grace period runs out. This is the legacy
	// mechanism.
	ModeGraceful
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeForceful:
		return "forceful"
	case ModeGraceful:
		return "graceful"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// defaultExitPollInterval is how often Terminator polls for exit after a
// signal was delivered.
const defaultExitPollInterval = 20 * time.Millisecond

// Terminator is the OS kill primitive.
type Terminator struct {
	Mode Mode

	// Timeout bounds the wait for the process to disappear after it was
	// signalled. In graceful mode it is the grace period before escalation.
	// Zero means fire and forget.
	Timeout time.Duration

	// Check overrides the exit check; nil uses Exited.
	Check ExitCheck

	Logger *slog.Logger
}

// Terminate signals pid according to t.Mode. A process that is already gone
// counts as terminated.
func (t Terminator) Terminate(ctx context.Context, pid int) error {
	p, err := handle(ctx, pid)
	if err != nil {
		if errors.Is(err, gops.ErrorProcessNotRunning) {
			return nil
		}
		return fmt.Errorf("%w: %d: %w", ErrTermination, pid, err)
	}

	switch t.Mode {
	case ModeGraceful:
		err = p.TerminateWithContext(ctx)
	default:
		err = p.KillWithContext(ctx)
	}
	if err != nil {
		if gone, _ := t.exited(ctx, pid); gone {
			return nil
		}
		return fmt.Errorf("%w: %s signal to %d: %w", ErrTermination, t.Mode, pid, err)
	}

	if t.Timeout <= 0 {
		return nil
	}
	waitErr := WaitExited(ctx, pid, defaultExitPollInterval, t.Timeout, t.Check)
	if waitErr == nil {
		return nil
	}
	if t.Mode != ModeGraceful {
		return fmt.Errorf("%w: %w", ErrTermination, waitErr)
	}

	t.logger().Warn("process ignored graceful termination; killing",
		"pid", pid, "grace", t.Timeout)
	if err := p.KillWithContext(ctx); err != nil {
		if gone, _ := t.exited(ctx, pid); gone {
			return nil
		}
		return fmt.Errorf("%w: escalate to kill %d: %w", ErrTermination, pid, err)
	}
	if err := WaitExited(ctx, pid, defaultExitPollInterval, t.Timeout, t.Check); err != nil {
		return fmt.Errorf("%w: %w", ErrTermination, err)
	}
	return nil
}

func (t Terminator) exited(ctx context.Context, pid int) (bool, error) {
	if t.Check != nil {
		return t.Check(ctx, pid)
	}
	return Exited(ctx, pid)
}

func (t Terminator) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}
