package devserver

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the development backend settings, parsed from
// PHOTOSTREAM_DEVSERVER_* environment variables.
type Config struct {
	HTTPPort   int    `envconfig:"HTTP_PORT" default:"3001"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/photostream.db"`
	ImageDir   string `envconfig:"IMAGE_DIR" default:"./images"`
	Seed       bool   `envconfig:"SEED" default:"true"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	ShutdownTimeoutSeconds int `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"10"`
}

// NewConfig parses the environment.
func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PHOTOSTREAM_DEVSERVER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP_PORT %d", cfg.HTTPPort)
	}
	if cfg.SQLitePath == "" {
		return nil, fmt.Errorf("SQLITE_PATH is required")
	}
	return &cfg, nil
}
