// Package config loads the photoctl settings from PHOTOSTREAM_* environment
// variables and sets up CLI logging.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the client-side settings.
type Config struct {
	APIURL string `envconfig:"API_URL" default:"http://localhost:3001"`

	// Token wins over UserID; UserID alone selects a development token.
	Token  string `envconfig:"TOKEN"`
	UserID string `envconfig:"USER_ID"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	Debug       bool          `envconfig:"DEBUG" default:"false"`
}

// New parses the environment.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PHOTOSTREAM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug().
		Str("api_url", cfg.APIURL).
		Bool("token_present", cfg.Token != "").
		Str("user_id", cfg.UserID).
		Dur("http_timeout", cfg.HTTPTimeout).
		Msg("Configuration loaded")
	return &cfg, nil
}

// Validate checks the fields New cannot default.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// InitLogger points the global logger at a plain console writer on w and
// applies level. debug forces the debug level.
func InitLogger(w io.Writer, level string, debug bool) {
	if w == nil {
		w = os.Stderr
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
