package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/EvilLord666/warden"
)

const envPrefix = "WARDEN"

// Flag names double as viper keys. The environment variable for a key is
// WARDEN_ followed by the upper-cased key with dashes replaced by
// underscores, e.g. WARDEN_KILL_TIMEOUT.
const (
	keyCleanOnShutdown  = "clean-on-shutdown"
	keyDeepKill         = "deep-kill"
	keyLegacyKill       = "legacy-kill"
	keyHeaderInspection = "file-header-inspection"
	keyLockFile         = "lock-file"
	keyFanOutLimit      = "fan-out-limit"
	keyDrainTimeout     = "drain-timeout"
	keyKillTimeout      = "kill-timeout"
	keyPollInterval     = "poll-interval"
	keyExclude          = "exclude"
	keyMetricsAddr      = "metrics-addr"
	keyLogLevel         = "log-level"
)

// settings is the resolved configuration of one command invocation.
type settings struct {
	opts        *warden.Options
	filters     []warden.Filter
	metricsAddr string
	logLevel    slog.Level
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// registerFlags declares the persistent flags shared by every subcommand
// and binds them to v, so flags override environment variables, which
// override the defaults below.
func registerFlags(root *cobra.Command, v *viper.Viper) error {
	fs := root.PersistentFlags()
	fs.Bool(keyCleanOnShutdown, false, "Kill every tracked tree when warden exits")
	fs.Bool(keyDeepKill, false, "Kill whole subtrees instead of only the root process")
	fs.Bool(keyLegacyKill, false, "Ask processes to exit before forcing termination")
	fs.Bool(keyHeaderInspection, false, "Record the executable format of tracked processes")
	fs.String(keyLockFile, "", "Lock file guarding against a second supervisor")
	fs.Int(keyFanOutLimit, warden.DefaultFanOutLimit, "Maximum concurrent per-root handlers per event (0 = unlimited)")
	fs.Duration(keyDrainTimeout, warden.DefaultShutdownDrainTimeout, "Maximum wait for in-flight events on shutdown")
	fs.Duration(keyKillTimeout, warden.DefaultKillTimeout, "Maximum wait for a process to exit after termination")
	fs.Duration(keyPollInterval, warden.DefaultPollInterval, "Process table poll interval")
	fs.StringSlice(keyExclude, nil, `Child filter such as "name==conhost" (repeatable; env values are space separated)`)
	fs.String(keyMetricsAddr, "", "Serve Prometheus metrics on this address (empty = disabled)")
	fs.String(keyLogLevel, "info", "Log level: debug, info, warn or error")

	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return nil
}

// loadSettings reads the bound configuration and validates it.
func loadSettings(v *viper.Viper) (settings, error) {
	opts := warden.NewOptions()
	opts.CleanOnShutdown = v.GetBool(keyCleanOnShutdown)
	opts.DeepKill = v.GetBool(keyDeepKill)
	opts.LegacyKill = v.GetBool(keyLegacyKill)
	opts.FileHeaderInspection = v.GetBool(keyHeaderInspection)
	opts.LockFile = v.GetString(keyLockFile)
	opts.FanOutLimit = v.GetInt(keyFanOutLimit)
	opts.ShutdownDrainTimeout = v.GetDuration(keyDrainTimeout)
	opts.KillTimeout = v.GetDuration(keyKillTimeout)
	opts.PollInterval = v.GetDuration(keyPollInterval)
	if err := opts.Validate(); err != nil {
		return settings{}, fmt.Errorf("%w: %w", warden.ErrConfiguration, err)
	}

	filters, err := warden.ParseFilters(v.GetStringSlice(keyExclude))
	if err != nil {
		return settings{}, fmt.Errorf("%w: %w", warden.ErrConfiguration, err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		return settings{}, fmt.Errorf("%w: log level: %w", warden.ErrConfiguration, err)
	}

	return settings{
		opts:        opts,
		filters:     filters,
		metricsAddr: v.GetString(keyMetricsAddr),
		logLevel:    level,
	}, nil
}
