//go:build linux

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr makes a launched command receive SIGTERM when the
// supervisor dies, so an abruptly killed warden does not orphan its root.
func configureSysProcAttr(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = syscall.SIGTERM
}
