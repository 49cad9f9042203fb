//go:build integration && !windows

package warden_test

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/EvilLord666/warden"
)

// TestIntegration_TracksAndKillsRealTree needs root: it observes the real
// process table and kills the shell tree it started.
func TestIntegration_TracksAndKillsRealTree(t *testing.T) {
	if unix.Geteuid() != 0 {
		t.Skip("requires root")
	}

	mgr := warden.NewManager()
	opts := warden.NewOptions(
		warden.WithPollInterval(200*time.Millisecond),
		warden.WithKillTimeout(2*time.Second),
		warden.WithDeepKill(true),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mgr.Initialize(ctx, opts); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer func() { _ = mgr.Stop() }()

	// Let the baseline poll pass before the tree exists.
	time.Sleep(300 * time.Millisecond)

	cmd := exec.Command("sh", "-c", "sleep 60 & sleep 60 & wait")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start shell: %v", err)
	}
	defer func() { _ = cmd.Process.Kill() }()

	children := make(chan warden.ChildAdded, 8)
	key, _ := mgr.RegisterRoot("sh", cmd.Process.Pid, nil,
		warden.WithChildAddedHandler(func(c warden.ChildAdded) { children <- c }))

	for range 2 {
		select {
		case c := <-children:
			if c.ParentPID != cmd.Process.Pid {
				t.Errorf("child %d has parent %d, want %d", c.PID, c.ParentPID, cmd.Process.Pid)
			}
		case <-ctx.Done():
			t.Fatal("children were not attached")
		}
	}

	if err := mgr.KillDefault(ctx, key); err != nil {
		t.Fatalf("KillDefault() error = %v", err)
	}
	if err := cmd.Wait(); err == nil {
		t.Error("shell exited cleanly, want killed")
	}
}
