package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Console    string            `mapstructure:"console"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// MenuConfig assigns the opaque ids of the tray menu items.
type MenuConfig struct {
	Open  string `mapstructure:"open"`
	Clear string `mapstructure:"clear"`
	Exit  string `mapstructure:"exit"`
}

// TrayConfig configures the tray icon.
type TrayConfig struct {
	Tooltip string     `mapstructure:"tooltip"`
	Icon    string     `mapstructure:"icon"` // optional .ico/.png path; empty uses the built-in icon
	Menu    MenuConfig `mapstructure:"menu"`
}

// BinConfig configures the recycle bin poller.
type BinConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Path         string        `mapstructure:"path"` // trash directory override (non-Windows)
}

// MemoryConfig configures the memory poller.
type MemoryConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// AutostartConfig configures login autostart registration.
type AutostartConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name"`
}

// ServerConfig configures the sysmon HTTP server.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// Config is the application configuration.
type Config struct {
	Bin       BinConfig       `mapstructure:"bin"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Tray      TrayConfig      `mapstructure:"tray"`
	Autostart AutostartConfig `mapstructure:"autostart"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bin.poll_interval", DefaultBinPollInterval)
	v.SetDefault("bin.path", "")
	v.SetDefault("memory.poll_interval", DefaultMemoryPollInterval)

	v.SetDefault("tray.tooltip", DefaultTooltip)
	v.SetDefault("tray.icon", "")
	v.SetDefault("tray.menu.open", DefaultOpenID)
	v.SetDefault("tray.menu.clear", DefaultClearID)
	v.SetDefault("tray.menu.exit", DefaultExitID)

	v.SetDefault("autostart.enabled", true)
	v.SetDefault("autostart.name", DefaultAutostartName)

	v.SetDefault("server.listen", DefaultListen)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.console", "")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"poller": "info",
		"tray":   "info",
		"server": "info",
	})
}

// New returns a viper instance with search paths, env binding and defaults
// set and the config file read. A missing config file is not an error.
// A non-empty file overrides the search paths.
func New(file string) (*viper.Viper, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the configuration from the default locations.
func Load() (*Config, error) {
	v, err := New("")
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks intervals and menu ids.
func (c *Config) Validate() error {
	if c.Bin.PollInterval <= 0 {
		return fmt.Errorf("%w: bin.poll_interval must be positive, got %s", ErrInvalidConfig, c.Bin.PollInterval)
	}
	if c.Memory.PollInterval <= 0 {
		return fmt.Errorf("%w: memory.poll_interval must be positive, got %s", ErrInvalidConfig, c.Memory.PollInterval)
	}

	ids := map[string]string{}
	for action, id := range map[string]string{"open": c.Tray.Menu.Open, "clear": c.Tray.Menu.Clear, "exit": c.Tray.Menu.Exit} {
		if id == "" {
			return fmt.Errorf("%w: tray.menu.%s is empty", ErrInvalidConfig, action)
		}
		if other, dup := ids[id]; dup {
			return fmt.Errorf("%w: tray.menu.%s and tray.menu.%s share id %q", ErrInvalidConfig, other, action, id)
		}
		ids[id] = action
	}
	return nil
}

// Watch calls onChange with the re-decoded configuration whenever the config
// file in use changes. Invalid edits are passed to onError and ignored.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// ConfigDir returns the configuration directory, honouring XDG_CONFIG_HOME.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", AppName), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/tidytray for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultLogPath returns the default log file path for the named binary.
func DefaultLogPath(binary string) string {
	return filepath.Join(StateDir(), binary+".log")
}

const defaultConfigTemplate = `# tidytray configuration

bin:
  # How often the recycle bin size is sampled
  poll_interval: %s
  # Trash directory override (Linux/macOS only; empty uses the desktop trash)
  path: ""

memory:
  # How often sysmon samples used memory
  poll_interval: %s

tray:
  tooltip: %q
  # Optional icon file (.ico on Windows, .png elsewhere)
  icon: ""
  # Menu item ids; each id maps to exactly one action
  menu:
    open: %q
    clear: %q
    exit: %q

autostart:
  # Register the tray manager to start at login
  enabled: true
  name: %s

server:
  # sysmon HTTP listen address
  listen: %s

logging:
  # debug, info, warn, error
  level: info
  # Empty means $XDG_STATE_HOME/tidytray/<binary>.log
  path: ""
  # Mirror log records to stderr at this level (empty disables)
  console: ""
  rotation:
    max_size: 10MB
    max_age: 30
    max_backups: 5
    daily: true
  components:
    poller: info
    tray: info
    server: info
`

// WriteDefault writes a default config file unless one exists. It returns
// the path of the file.
func WriteDefault() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(defaultConfigTemplate,
		DefaultBinPollInterval, DefaultMemoryPollInterval, DefaultTooltip,
		DefaultOpenID, DefaultClearID, DefaultExitID,
		DefaultAutostartName, DefaultListen)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return path, nil
}

// MaxSizeBytes parses MaxSize ("10MB", "512KiB"). Empty means zero, which the
// log writer treats as its default.
func (r RotationConfig) MaxSizeBytes() (int64, error) {
	if strings.TrimSpace(r.MaxSize) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(r.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("%w: logging.rotation.max_size: %w", ErrInvalidConfig, err)
	}
	return int64(n), nil
}

// Options converts the logging section into logging.Config for the named
// binary. An unparsable max_size falls back to the writer default. Verbose
// forces debug level and mirrors entries to stderr.
func (l LoggingConfig) Options(binary string, verbose bool) logging.Config {
	maxSize, err := l.Rotation.MaxSizeBytes()
	if err != nil {
		maxSize = logging.DefaultRotationConfig().MaxSize
	}
	if maxSize == 0 {
		maxSize = logging.DefaultRotationConfig().MaxSize
	}

	path := l.Path
	if path == "" {
		path = DefaultLogPath(binary)
	}

	opts := logging.Config{
		Level: l.Level,
		Path:  path,
		Rotation: logging.RotationConfig{
			MaxSize:    maxSize,
			MaxAge:     l.Rotation.MaxAge,
			MaxBackups: l.Rotation.MaxBackups,
			Daily:      l.Rotation.Daily,
		},
		Components:   l.Components,
		ConsoleLevel: l.Console,
	}
	if verbose {
		opts.Level = "debug"
		opts.ConsoleLevel = "debug"
		opts.Components = nil
	}
	return opts
}
