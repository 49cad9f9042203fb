package process

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	gops "github.com/shirou/gopsutil/v4/process"
	"k8s.io/apimachinery/pkg/util/wait"
)

// Sentinel errors returned by WaitExited for invalid configuration.
var (
	// ErrIntervalNotPositive indicates a non-positive poll interval.
	ErrIntervalNotPositive = errors.New("interval must be positive")

	// ErrTimeoutNotPositive indicates a non-positive timeout.
	ErrTimeoutNotPositive = errors.New("timeout must be positive")
)

// ExitCheck reports whether pid is gone. Zombies count as gone: they hold no
// resources and only wait for their parent to reap them.
type ExitCheck func(ctx context.Context, pid int) (bool, error)

// Exited is the default ExitCheck backed by gopsutil.
func Exited(ctx context.Context, pid int) (bool, error) {
	exists, err := gops.PidExistsWithContext(ctx, int32(pid))
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	p, err := gops.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if errors.Is(err, gops.ErrorProcessNotRunning) {
			return true, nil
		}
		return false, err
	}
	status, err := p.StatusWithContext(ctx)
	if err != nil {
		// The process vanished between the two calls, or status is not
		// readable on this platform; let the next poll decide.
		return false, nil
	}
	return slices.Contains(status, gops.Zombie), nil
}

// WaitExited polls check every interval until pid is gone or timeout
// elapses. Transient check errors are retried.
func WaitExited(ctx context.Context, pid int, interval, timeout time.Duration, check ExitCheck) error {
	if interval <= 0 {
		return fmt.Errorf("wait for %d: %w", pid, ErrIntervalNotPositive)
	}
	if timeout <= 0 {
		return fmt.Errorf("wait for %d: %w", pid, ErrTimeoutNotPositive)
	}
	if check == nil {
		check = Exited
	}

	if err := wait.PollUntilContextTimeout(ctx, interval, timeout, true,
		func(pollCtx context.Context) (bool, error) {
			gone, err := check(pollCtx, pid)
			if err != nil {
				return false, nil
			}
			return gone, nil
		}); err != nil {
		return fmt.Errorf("wait for %d to exit: %w", pid, err)
	}
	return nil
}
