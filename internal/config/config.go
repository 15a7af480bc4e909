package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/daylog/internal/format"
	"github.com/Iron-Ham/daylog/internal/logging"
	"github.com/Iron-Ham/daylog/internal/remote"
	"github.com/Iron-Ham/daylog/internal/severity"
)

// EnvPrefix is the prefix of environment variables that override config
// keys, e.g. DAYLOG_LOGGING_LEVEL for logging.level.
const EnvPrefix = "DAYLOG"

// Config represents the complete daylog configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	File    FileConfig    `mapstructure:"file" yaml:"file"`
	Remote  RemoteConfig  `mapstructure:"remote" yaml:"remote"`
}

// LoggingConfig controls the threshold and console rendering
type LoggingConfig struct {
	// Level is the minimum severity that is logged
	Level severity.Level `mapstructure:"level" yaml:"level"`
	// Color is one of "auto", "always", "never"
	Color string `mapstructure:"color" yaml:"color"`
}

// FileConfig controls the daily file sink
type FileConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Dir is the directory day files are written to (created if missing)
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// RemoteConfig controls delivery to the log collector
type RemoteConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Service tags every entry sent to the collector
	Service string `mapstructure:"service" yaml:"service"`
	Host    string `mapstructure:"host" yaml:"host"`
	// Port also reads NEXUS_PORT
	Port string `mapstructure:"port" yaml:"port"`
	Path string `mapstructure:"path" yaml:"path"`
	// Timeout bounds a single delivery attempt
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// MaxPending caps undelivered entries, dropping the oldest (0 = unbounded)
	MaxPending int `mapstructure:"max_pending" yaml:"max_pending"`
	// DrainTimeout is how long shutdown waits for pending entries
	DrainTimeout time.Duration `mapstructure:"drain_timeout" yaml:"drain_timeout"`
}

// URL returns the collector endpoint.
func (r RemoteConfig) URL() string {
	return remote.Endpoint(r.Host, r.Port, r.Path)
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: severity.Info,
			Color: format.ColorAuto,
		},
		File: FileConfig{
			Enabled: false,
			Dir:     "logs",
		},
		Remote: RemoteConfig{
			Enabled:      false,
			Service:      logging.DefaultService,
			Host:         "nexus-api",
			Port:         "8080",
			Path:         "/logs",
			Timeout:      remote.DefaultTimeout,
			MaxPending:   0,
			DrainTimeout: time.Second,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Logging defaults
	viper.SetDefault("logging.level", strings.ToLower(defaults.Logging.Level.String()))
	viper.SetDefault("logging.color", defaults.Logging.Color)

	// File defaults
	viper.SetDefault("file.enabled", defaults.File.Enabled)
	viper.SetDefault("file.dir", defaults.File.Dir)

	// Remote defaults
	viper.SetDefault("remote.enabled", defaults.Remote.Enabled)
	viper.SetDefault("remote.service", defaults.Remote.Service)
	viper.SetDefault("remote.host", defaults.Remote.Host)
	viper.SetDefault("remote.port", defaults.Remote.Port)
	viper.SetDefault("remote.path", defaults.Remote.Path)
	viper.SetDefault("remote.timeout", defaults.Remote.Timeout.String())
	viper.SetDefault("remote.max_pending", defaults.Remote.MaxPending)
	viper.SetDefault("remote.drain_timeout", defaults.Remote.DrainTimeout.String())
}

// BindEnv enables environment overrides. Every key can be set with
// DAYLOG_<SECTION>_<KEY>; remote.port also honors NEXUS_PORT.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	// e.g., DAYLOG_REMOTE_MAX_PENDING for remote.max_pending
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("remote.port", EnvPrefix+"_REMOTE_PORT", "NEXUS_PORT")
}

// decodeHook converts level names and duration strings while unmarshaling.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// LoggerOptions translates the configuration into options for a logger
// writing its console output to out.
func (c *Config) LoggerOptions(out io.Writer) []logging.Option {
	return []logging.Option{
		logging.WithOutput(out),
		logging.WithMinLevel(c.Logging.Level),
		logging.WithColor(format.ShouldColor(out, c.Logging.Color)),
		logging.WithRemote(logging.RemoteConfig{
			URL:          c.Remote.URL(),
			Timeout:      c.Remote.Timeout,
			MaxPending:   c.Remote.MaxPending,
			DrainTimeout: c.Remote.DrainTimeout,
		}),
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "daylog")
	}
	// Fall back to ~/.config/daylog
	home, err := os.UserHomeDir()
	if err != nil {
		return ".daylog"
	}
	return filepath.Join(home, ".config", "daylog")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
