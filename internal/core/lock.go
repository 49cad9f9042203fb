package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"github.com/EvilLord666/warden/internal/fileutil"
)

// lockRetryInterval is the interval between attempts to take the
// supervisor lock while another process holds it.
const lockRetryInterval = 50 * time.Millisecond

// acquireLock takes an exclusive lock on path, retrying until ctx is done.
// Missing parent directories are created. Failing to get the lock wraps
// ErrLocked.
func acquireLock(ctx context.Context, path string) (*flock.Flock, error) {
	if err := fileutil.ParentDir(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLocked, err)
	}
	fl := flock.New(path)

	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLocked, path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return fl, nil
}

// releaseLock unlocks and closes fl. The lock file stays on disk so a lock
// concurrently taken by another process through the same path stays valid.
func releaseLock(logger *slog.Logger, fl *flock.Flock) {
	if fl == nil {
		return
	}
	if err := fl.Close(); err != nil {
		logger.Debug("failed to release lock file", "path", fl.Path(), "error", err)
	}
}
