package process

import (
	"context"
	"fmt"
	"math"

	gops "github.com/shirou/gopsutil/v4/process"
)

// Lookup reads process metadata from the operating system.
// The zero value is ready to use.
type Lookup struct{}

func handle(ctx context.Context, pid int) (*gops.Process, error) {
	if pid <= 0 || pid > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return gops.NewProcessWithContext(ctx, int32(pid))
}

// Path returns the absolute path of the executable backing pid.
func (Lookup) Path(ctx context.Context, pid int) (string, error) {
	p, err := handle(ctx, pid)
	if err != nil {
		return "", fmt.Errorf("%w: path of %d: %w", ErrLookup, pid, err)
	}
	exe, err := p.ExeWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: path of %d: %w", ErrLookup, pid, err)
	}
	return exe, nil
}

// Args returns the command line of pid split into arguments.
func (Lookup) Args(ctx context.Context, pid int) ([]string, error) {
	p, err := handle(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("%w: command line of %d: %w", ErrLookup, pid, err)
	}
	args, err := p.CmdlineSliceWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: command line of %d: %w", ErrLookup, pid, err)
	}
	return args, nil
}
