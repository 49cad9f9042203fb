package process

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"github.com/EvilLord666/warden/internal/sentinel"
)

// ErrNilCmd is returned when Launch is called with a nil *exec.Cmd.
const ErrNilCmd = sentinel.Error("cmd must not be nil")

// ErrEmptyCmdPath is returned when Launch is called with an empty cmd.Path.
const ErrEmptyCmdPath = sentinel.Error("cmd.Path must not be empty")

// termGracePeriod is the maximum time to wait for a launched command to
// exit after SIGTERM before escalating to SIGKILL. It is capped at the
// timeout passed to Stop.
const termGracePeriod = 5 * time.Second

// killDrainTimeout bounds the wait on the done channel once SIGKILL was sent.
const killDrainTimeout = 10 * time.Second

// Launched is a command started by Launch, typically the root a supervisor
// registers right after starting it. Exited, Wait and PID may be used from
// any goroutine; Stop calls must be serialized by the caller.
type Launched struct {
	cmd    *exec.Cmd
	exited chan struct{} // closed once cmd.Wait returned
	name   string
	log    *slog.Logger

	// waitErr is written before exited is closed.
	waitErr error
}

// Launch starts cmd with its stdio left as configured by the caller. On
// Linux the child receives SIGTERM if the supervisor dies.
func Launch(cmd *exec.Cmd, logger *slog.Logger) (*Launched, error) {
	if cmd == nil {
		return nil, ErrNilCmd
	}
	if cmd.Path == "" {
		return nil, ErrEmptyCmdPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	configureSysProcAttr(cmd)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cmd.Path, err)
	}

	l := &Launched{
		cmd:    cmd,
		exited: make(chan struct{}),
		name:   cmd.Path,
		log:    logger,
	}
	// cmd.Wait must be called exactly once; this goroutine owns the call.
	go func() {
		l.waitErr = cmd.Wait()
		close(l.exited)
	}()
	return l, nil
}

// PID returns the OS id of the launched process.
func (l *Launched) PID() int {
	return l.cmd.Process.Pid
}

// Exited is closed when the process exits.
func (l *Launched) Exited() <-chan struct{} {
	return l.exited
}

// Wait blocks until the process exits and returns its wait error.
func (l *Launched) Wait() error {
	<-l.exited
	return l.waitErr
}

// Stop sends SIGTERM, escalates to SIGKILL after the grace period and waits
// up to timeout for the process to exit. Exits caused by either signal are
// not errors. Stopping an exited process reports how it exited.
func (l *Launched) Stop(timeout time.Duration) error {
	select {
	case <-l.exited:
		return expectSignalExit(l.waitErr, l.name)
	default:
	}

	if err := l.stop(timeout); err != nil {
		l.log.Warn("launched process did not stop cleanly", "pid", l.PID(), "error", err)
		return err
	}
	return nil
}

// drainDone waits up to timeout for done to close and reports whether it did.
func drainDone(done <-chan struct{}, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}

func (l *Launched) stop(timeout time.Duration) error {
	if err := l.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already exited, or SIGTERM is unsupported (Windows): fall back
		// to Kill and drain.
		_ = l.cmd.Process.Kill()
		if !drainDone(l.exited, killDrainTimeout) {
			return fmt.Errorf("%s: timed out draining process after signal failure", l.name)
		}
		return expectSignalExit(l.waitErr, l.name)
	}

	grace := min(termGracePeriod, timeout)
	killTimer := time.AfterFunc(grace, func() {
		_ = l.cmd.Process.Kill()
	})
	defer killTimer.Stop()

	if drainDone(l.exited, timeout) {
		return expectSignalExit(l.waitErr, l.name)
	}
	if !drainDone(l.exited, killDrainTimeout) {
		return fmt.Errorf("%s: timed out waiting for process to exit after SIGKILL", l.name)
	}
	if err := expectSignalExit(l.waitErr, l.name); err != nil {
		return fmt.Errorf("%s stop timeout: %w", l.name, err)
	}
	return nil
}

// expectSignalExit treats exits caused by SIGTERM or SIGKILL as success.
func expectSignalExit(err error, name string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			sig := status.Signal()
			if sig == syscall.SIGTERM || sig == syscall.SIGKILL {
				return nil
			}
		}
	}
	return fmt.Errorf("%s: %w", name, err)
}
