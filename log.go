package warden

import (
	"log/slog"

	"github.com/EvilLord666/warden/internal/core"
)

// SetLogger replaces the logger used by warden. The provided logger should
// already carry any attributes the application wants; warden adds none.
//
// If l is nil, the logger resets to the default: slog.Default() with
// "component" attribute, re-derived on the next Logger() call and then
// cached. Call SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call while events are being handled; handlers
// already running may still log through the previous logger.
//
// Example:
//
//	warden.SetLogger(myLogger.With("component", "warden"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
