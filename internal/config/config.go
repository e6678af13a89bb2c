package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// EnvPrefix is the prefix of every environment variable read by FromEnv.
const EnvPrefix = "IMAGE_EDIT_"

// Config holds the application configuration
type Config struct {
	Log     LogConfig     `json:"log"`
	Source  SourceConfig  `json:"source"`
	Export  ExportConfig  `json:"export"`
	Render  RenderConfig  `json:"render"`
	Session SessionConfig `json:"session"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL"`
	Format string `json:"format" env:"LOG_FORMAT"`
}

// SourceConfig holds limits for loading source images
type SourceConfig struct {
	MaxBytes     int64    `json:"max_bytes" env:"MAX_SOURCE_BYTES"`
	FetchTimeout Duration `json:"fetch_timeout" env:"FETCH_TIMEOUT"`
}

// ExportConfig holds configuration for export output
type ExportConfig struct {
	Format string `json:"format" env:"EXPORT_FORMAT"`
	Dir    string `json:"dir" env:"EXPORT_DIR"`
}

// RenderConfig holds render pipeline options
type RenderConfig struct {
	StableGrain bool   `json:"stable_grain" env:"STABLE_GRAIN"`
	GrainSeed   uint64 `json:"grain_seed" env:"GRAIN_SEED"`
}

// SessionConfig holds limits on open editor sessions
type SessionConfig struct {
	MaxSessions int `json:"max_sessions" env:"MAX_SESSIONS"`
}

// Duration is a time.Duration that reads and writes as a string such as "30s".
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(n)
	return nil
}

// UnmarshalText parses a duration string such as "30s".
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Source: SourceConfig{
			MaxBytes:     10 << 20,
			FetchTimeout: Duration(30 * time.Second),
		},
		Export: ExportConfig{
			Format: "png",
			Dir:    ".",
		},
		Session: SessionConfig{
			MaxSessions: 16,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Keys missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FromEnv overlays IMAGE_EDIT_* environment variables onto c. Unset and
// empty variables leave the current value alone. A nil environ reads the
// process environment.
//
//	IMAGE_EDIT_LOG_LEVEL        debug, info, warn, error
//	IMAGE_EDIT_LOG_FORMAT       text or json
//	IMAGE_EDIT_MAX_SOURCE_BYTES maximum source image size in bytes
//	IMAGE_EDIT_FETCH_TIMEOUT    URL fetch timeout, e.g. 30s
//	IMAGE_EDIT_EXPORT_FORMAT    png or webp
//	IMAGE_EDIT_EXPORT_DIR       directory for exported files
//	IMAGE_EDIT_STABLE_GRAIN     true to reuse one film grain seed
//	IMAGE_EDIT_GRAIN_SEED       seed used when stable grain is on
//	IMAGE_EDIT_MAX_SESSIONS     maximum number of open sessions
func (c *Config) FromEnv(environ map[string]string) error {
	if err := env.ParseWithOptions(c, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return fmt.Errorf("%s environment: %w", EnvPrefix, err)
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.Export.Format = strings.ToLower(c.Export.Format)
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if c.Source.MaxBytes < 1 {
		return fmt.Errorf("source.max_bytes must be positive")
	}

	if c.Source.FetchTimeout <= 0 {
		return fmt.Errorf("source.fetch_timeout must be positive")
	}

	if c.Export.Format != "png" && c.Export.Format != "webp" {
		return fmt.Errorf("export.format must be png or webp, got %q", c.Export.Format)
	}

	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("session.max_sessions must be positive")
	}

	return nil
}

// LogLevel returns the parsed log level, falling back to info.
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-edit-mcp", "config.json")
}
