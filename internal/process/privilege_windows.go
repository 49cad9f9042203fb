//go:build windows

package process

import "golang.org/x/sys/windows"

// IsElevated reports whether the current process token is elevated, which
// is required to open other sessions' processes and to subscribe to kernel
// process events.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
