package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/EvilLord666/warden"
)

func newAwaitCmd(a *app) *cobra.Command {
	var (
		timeout time.Duration
		follow  bool
	)
	cmd := &cobra.Command{
		Use:   "await NAME",
		Short: "Wait for a process to start and print its tree",
		Long: `Register NAME as a placeholder root and wait until a process with that
name starts. Spaces, case and a trailing extension are ignored when
matching. With --follow, children are printed as they appear until the
process exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.await(cmd.Context(), cmd, args[0], timeout, follow)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 = wait until interrupted)")
	cmd.Flags().BoolVar(&follow, "follow", false, "Keep printing children until the process exits")
	return cmd
}

func (a *app) await(ctx context.Context, cmd *cobra.Command, name string, timeout time.Duration, follow bool) error {
	out := &lockedWriter{w: cmd.OutOrStdout()}
	s, err := a.start(ctx, &lockedWriter{w: cmd.ErrOrStderr()})
	if err != nil {
		return fmt.Errorf("await: %w", err)
	}
	defer s.close()

	var opts []warden.RootOption
	if follow {
		opts = append(opts, childPrinter(out))
	}
	placeholder := s.mgr.NextPlaceholderID()
	key, res := s.mgr.RegisterRoot(name, placeholder, s.cfg.filters, opts...)

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	pid, err := res.Wait(waitCtx)
	if err != nil {
		s.mgr.Flush(placeholder)
		return fmt.Errorf("await %s: %w", name, err)
	}
	out.printf("%s resolved to pid %d\n", name, pid)

	if follow {
		err := wait.PollUntilContextCancel(ctx, s.cfg.opts.PollInterval, true, func(context.Context) (bool, error) {
			snap, ok := s.mgr.Tree(key)
			return !ok || snap.State == warden.Dead, nil
		})
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("await %s: %w", name, err)
		}
	}

	if snap, ok := s.mgr.Tree(key); ok {
		printTree(out, snap)
	}
	return nil
}
