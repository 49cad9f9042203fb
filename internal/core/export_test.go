package core

import "os"

// SetRaiseSignal replaces the redelivery of exit signals for the duration
// of a test and returns a restore function.
func SetRaiseSignal(fn func(os.Signal)) (restore func()) {
	prev := raiseSignal
	raiseSignal = fn
	return func() { raiseSignal = prev }
}
