package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/EvilLord666/warden"
)

func TestAwait_PrintsResolvedTree(t *testing.T) {
	t.Parallel()

	f := &fakeManager{resolveTo: 4821}
	out, err := execute(context.Background(), f, "await", "--exclude", "name==conhost", "Heroes Of The Storm")
	if err != nil {
		t.Fatalf("await: %v", err)
	}

	for _, want := range []string{
		"Heroes Of The Storm resolved to pid 4821\n",
		"Heroes Of The Storm (pid 4821)\n",
		"  worker (pid 4822)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	regs, flushed, stops := f.snapshot()
	if len(regs) != 1 || !warden.IsPlaceholder(regs[0].pid) || len(regs[0].filters) != 1 {
		t.Errorf("registrations = %+v, want one placeholder with one filter", regs)
	}
	if len(flushed) != 0 {
		t.Errorf("flushed = %v, want none", flushed)
	}
	if stops != 1 {
		t.Errorf("stops = %d, want 1", stops)
	}
}

func TestAwait_FollowEndsWhenRootDies(t *testing.T) {
	t.Parallel()

	f := &fakeManager{resolveTo: 4821, dead: true}
	out, err := execute(context.Background(), f, "await", "--follow", "--poll-interval", "5ms", "game")
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if !strings.Contains(out, "game (pid 4821) [dead]\n") {
		t.Errorf("output missing dead root:\n%s", out)
	}
}

func TestAwait_TimeoutFlushesPlaceholder(t *testing.T) {
	t.Parallel()

	f := &fakeManager{}
	_, err := execute(context.Background(), f, "await", "--timeout", "20ms", "never")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}

	regs, flushed, stops := f.snapshot()
	if len(regs) != 1 || len(flushed) != 1 || flushed[0] != regs[0].pid {
		t.Errorf("flushed = %v, want the placeholder of %+v", flushed, regs)
	}
	if stops != 1 {
		t.Errorf("stops = %d, want 1", stops)
	}
}

func TestStart_Failures(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mgr  *fakeManager
		args []string
		want error
	}{
		"initialize rejected": {
			mgr:  &fakeManager{initErr: warden.ErrPermission},
			args: []string{"await", "x"},
			want: warden.ErrPermission,
		},
		"invalid configuration": {
			mgr:  &fakeManager{},
			args: []string{"--fan-out-limit", "-1", "await", "x"},
			want: warden.ErrConfiguration,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(context.Background(), tc.mgr, tc.args...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			regs, _, stops := tc.mgr.snapshot()
			if len(regs) != 0 || stops != 0 {
				t.Errorf("registrations, stops = %d, %d; want 0, 0", len(regs), stops)
			}
		})
	}
}

func TestAwait_RequiresName(t *testing.T) {
	t.Parallel()

	if _, err := execute(context.Background(), &fakeManager{}, "await"); err == nil {
		t.Fatal("await without a name succeeded")
	}
}
