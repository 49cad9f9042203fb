package cli

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/EvilLord666/warden"
	"github.com/EvilLord666/warden/internal/process"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Launch a command and track its process tree",
		Long: `Launch a command, track every process it starts and print each child as
it appears. On interrupt the tree is killed. With --clean-on-shutdown any
descendants still alive when the command exits are killed too.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd, args)
		},
	}
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	path, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	out := &lockedWriter{w: cmd.OutOrStdout()}
	errOut := &lockedWriter{w: cmd.ErrOrStderr()}
	s, err := a.start(ctx, errOut)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer s.close()

	c := exec.Command(path, args[1:]...)
	c.Stdin, c.Stdout, c.Stderr = cmd.InOrStdin(), out, errOut
	launched, err := process.Launch(c, s.log)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	key, _ := s.mgr.RegisterRoot(filepath.Base(path), launched.PID(), s.cfg.filters,
		warden.WithPath(path), warden.WithArgs(args...), childPrinter(out))

	select {
	case <-launched.Exited():
	case <-ctx.Done():
		s.log.Info("interrupted, terminating tree", "pid", launched.PID())
		killCtx, cancel := context.WithTimeout(context.Background(), s.cfg.opts.KillTimeout)
		if err := s.mgr.KillDefault(killCtx, key); err != nil {
			s.log.Warn("tree not fully terminated", "pid", launched.PID(), "error", err)
		}
		cancel()
		if err := launched.Stop(s.cfg.opts.KillTimeout); err != nil {
			s.log.Warn("command did not stop cleanly", "pid", launched.PID(), "error", err)
		}
	}

	if snap, ok := s.mgr.Tree(key); ok {
		printTree(out, snap)
	}
	if err := launched.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	return nil
}
