package warden

import "github.com/EvilLord666/warden/internal/core"

// Default configuration values for NewOptions.
const (
	// DefaultShutdownDrainTimeout is the maximum time Stop waits for
	// in-flight event handlers before clearing the registry.
	DefaultShutdownDrainTimeout = core.DefaultShutdownDrainTimeout

	// DefaultKillTimeout is how long a kill waits for a signalled process to
	// disappear. With LegacyKill it is the grace period before escalating
	// to a forceful kill.
	DefaultKillTimeout = core.DefaultKillTimeout

	// DefaultPollInterval is the process table polling period.
	DefaultPollInterval = core.DefaultPollInterval

	// DefaultFanOutLimit leaves per-event fan-out across roots unbounded.
	DefaultFanOutLimit = 0
)
