package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/EvilLord666/warden"
)

// NewRootCmd returns the warden command tree backed by the real process
// table.
func NewRootCmd() *cobra.Command {
	return newRootCommand(warden.NewManager)
}

// app carries what subcommands share.
type app struct {
	v          *viper.Viper
	newManager func() warden.Manager
}

func newRootCommand(newManager func() warden.Manager) *cobra.Command {
	a := &app{v: newViper(), newManager: newManager}

	root := &cobra.Command{
		Use:   "warden",
		Short: "Track and clean up process trees",
	}
	if err := registerFlags(root, a.v); err != nil {
		// Flag names are constants; a bind failure is a programming error.
		panic(err)
	}

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newAwaitCmd(a))

	root.SilenceUsage = true
	root.SilenceErrors = true
	return root
}

// session is an initialized manager plus the surfaces started with it.
type session struct {
	mgr     warden.Manager
	cfg     settings
	log     *slog.Logger
	metrics *metricsServer
}

// start loads the configuration, installs the logger, serves metrics if
// requested and initializes a fresh manager.
func (a *app) start(ctx context.Context, stderr io.Writer) (*session, error) {
	cfg, err := loadSettings(a.v)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.logLevel}))
	warden.SetLogger(logger.With("component", "warden"))

	s := &session{mgr: a.newManager(), cfg: cfg, log: logger}
	if cfg.metricsAddr != "" {
		if s.metrics, err = serveMetrics(cfg.metricsAddr, logger); err != nil {
			return nil, err
		}
	}
	if err := s.mgr.Initialize(ctx, cfg.opts); err != nil {
		s.closeMetrics()
		return nil, err
	}
	return s, nil
}

// close stops the manager and the metrics server. Termination failures
// during cleanup are logged, not returned.
func (s *session) close() {
	if err := s.mgr.Stop(); err != nil {
		s.log.Warn("cleanup incomplete", "error", err)
	}
	s.closeMetrics()
}

func (s *session) closeMetrics() {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.Close(); err != nil {
		s.log.Warn("metrics server did not stop cleanly", "error", err)
	}
}

// lockedWriter serializes writes from concurrent child-added handlers,
// the logger and the launched command's output copiers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, format, args...)
}

func childPrinter(out *lockedWriter) warden.RootOption {
	return warden.WithChildAddedHandler(func(ev warden.ChildAdded) {
		out.printf("+ %s (pid %d, parent %d)\n", ev.Name, ev.PID, ev.ParentPID)
	})
}

// printTree writes s as an indented listing, one process per line.
func printTree(out *lockedWriter, s warden.Snapshot) {
	depth := map[int]int{}
	s.Walk(func(parent int, n warden.Snapshot) {
		d := 0
		if parent != 0 {
			d = depth[parent] + 1
		}
		depth[n.Info.PID] = d
		state := ""
		if n.State == warden.Dead {
			state = " [dead]"
		}
		out.printf("%*s%s (pid %d)%s\n", 2*d, "", n.Info.Name, n.Info.PID, state)
	})
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exit exitCoder
		if errors.As(err, &exit) && exit.ExitCode() > 0 {
			os.Exit(exit.ExitCode())
		}
		os.Exit(1)
	}
}

// exitCoder is implemented by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}
