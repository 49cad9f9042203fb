//go:build !windows

package process

import "golang.org/x/sys/unix"

// IsElevated reports whether the current process runs as root. Reading the
// executable and command line of other users' processes requires it.
func IsElevated() bool {
	return unix.Geteuid() == 0
}
