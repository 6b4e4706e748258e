// Package config provides configuration management for snaptail.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SNAPTAIL_ prefix)
//  3. Config file (snaptail.yaml)
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Defaults for the preview environment.
const (
	DefaultPort         = 9000
	DefaultHost         = "0.0.0.0"
	DefaultProjectDir   = ".snaptail"
	DefaultVenvDir      = ".venv"
	DefaultRequirements = "requirements.txt"
	DefaultAPIFile      = "api.py"
	DefaultTemplate     = "react"
	DefaultGracePeriod  = 5 * time.Second
)

// DefaultCORSOrigins are the origins the API server accepts cross-origin
// requests from.
var DefaultCORSOrigins = []string{
	"http://localhost.tiangolo.com",
	"https://localhost.tiangolo.com",
	"http://localhost:5173",
	"http://localhost:8080",
}

// Config represents the global configuration for snaptail.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" yaml:"log-level"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" yaml:"log-format"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" yaml:"no-color"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" yaml:"quiet"`

	// Port is the API server port. The React app receives it as apiUrl.
	Port int `mapstructure:"port" yaml:"port"`

	// Host is the API server bind address and the apiUrl host.
	Host string `mapstructure:"host" yaml:"host"`

	// ProjectDir is the scaffold location, relative to the working directory.
	ProjectDir string `mapstructure:"project-dir" yaml:"project-dir"`

	// VenvDir is the Python virtual environment location.
	VenvDir string `mapstructure:"venv-dir" yaml:"venv-dir"`

	// Requirements is the pip requirements file installed by init.
	Requirements string `mapstructure:"requirements" yaml:"requirements"`

	// APIFile is the user routes module served by the API server.
	APIFile string `mapstructure:"api-file" yaml:"api-file"`

	// Template is the Vite template passed to the project generator.
	Template string `mapstructure:"template" yaml:"template"`

	// GracePeriod is how long a server gets to exit after a termination
	// request before it is killed.
	GracePeriod time.Duration `mapstructure:"grace-period" yaml:"grace-period"`

	// Debounce coalesces rapid edits of the watched file. Zero disables it.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`

	// CORSOrigins are the origins allowed by the API server.
	CORSOrigins []string `mapstructure:"cors-origins" yaml:"cors-origins"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), never read from config itself.
	ConfigFile string `mapstructure:"-" yaml:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:     LogLevelInfo,
		LogFormat:    LogFormatText,
		Port:         DefaultPort,
		Host:         DefaultHost,
		ProjectDir:   DefaultProjectDir,
		VenvDir:      DefaultVenvDir,
		Requirements: DefaultRequirements,
		APIFile:      DefaultAPIFile,
		Template:     DefaultTemplate,
		GracePeriod:  DefaultGracePeriod,
		CORSOrigins:  append([]string(nil), DefaultCORSOrigins...),
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}

	if c.Host == "" {
		return errors.New("host must not be empty")
	}

	if c.ProjectDir == "" {
		return errors.New("project-dir must not be empty")
	}

	if c.GracePeriod < 0 {
		return fmt.Errorf("invalid grace period %s: must not be negative", c.GracePeriod)
	}

	if c.Debounce < 0 {
		return fmt.Errorf("invalid debounce %s: must not be negative", c.Debounce)
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", d.NoColor)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("port", d.Port)
	v.SetDefault("host", d.Host)
	v.SetDefault("project-dir", d.ProjectDir)
	v.SetDefault("venv-dir", d.VenvDir)
	v.SetDefault("requirements", d.Requirements)
	v.SetDefault("api-file", d.APIFile)
	v.SetDefault("template", d.Template)
	v.SetDefault("grace-period", d.GracePeriod)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("cors-origins", d.CORSOrigins)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("SNAPTAIL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	// Auto-discovery mode.
	v.SetConfigName("snaptail")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "snaptail"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
