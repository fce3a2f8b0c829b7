// Package config loads tidytray and sysmon settings from YAML, environment
// variables and command-line flags.
package config

import "time"

// Default configuration values.
const (
	// AppName names the config, data and state directories.
	AppName = "tidytray"

	// EnvPrefix prefixes environment overrides, e.g. TIDYTRAY_BIN_POLL_INTERVAL.
	EnvPrefix = "TIDYTRAY"

	// DefaultBinPollInterval is how often the recycle bin size is sampled.
	DefaultBinPollInterval = 10 * time.Second

	// DefaultMemoryPollInterval is how often used memory is sampled.
	DefaultMemoryPollInterval = 1 * time.Second

	// DefaultTooltip is shown until the first bin sample arrives.
	DefaultTooltip = "Recycle Bin"

	// Menu item ids. Left click on the icon is bound to the open action.
	DefaultOpenID  = "1001"
	DefaultClearID = "1002"
	DefaultExitID  = "1003"

	// DefaultAutostartName is the registry value (or desktop entry) name.
	DefaultAutostartName = "tidytray"

	// DefaultListen is the sysmon HTTP listen address.
	DefaultListen = "127.0.0.1:2025"
)
