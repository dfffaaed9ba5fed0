package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by the CLI.
const EnvPrefix = "SGA"

// Config holds environment configuration for the CLI.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogFormat is text or json.
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// PluginAutoload controls whether declared plugins are loaded at startup.
	PluginAutoload bool `envconfig:"PLUGIN_AUTOLOAD" default:"true"`
}

// LoadConfig reads configuration from SGA_* environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds the CLI logger writing to w.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.LogFormat) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", c.LogFormat)
	}
}
