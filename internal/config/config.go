// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the verifier.
type Config struct {
	Addr           string        `env:"PFVERIFY_ADDR"            envDefault:"127.0.0.1:8078"`
	RTP            int           `env:"PFVERIFY_RTP"             envDefault:"97"`
	LogLevel       string        `env:"PFVERIFY_LOG_LEVEL"       envDefault:"info"`
	LogFormat      string        `env:"PFVERIFY_LOG_FORMAT"      envDefault:"text"`
	ScanTimeout    time.Duration `env:"PFVERIFY_SCAN_TIMEOUT"    envDefault:"60s"`
	ScanMaxRange   uint64        `env:"PFVERIFY_SCAN_MAX_RANGE"  envDefault:"1000000"`
	HistoryPage    int           `env:"PFVERIFY_HISTORY_PAGE"    envDefault:"50"`
	RequestTimeout time.Duration `env:"PFVERIFY_REQUEST_TIMEOUT" envDefault:"30s"`
}

const maxHistoryPage = 1000

// Load reads the given .env files (or ./.env when none are named) and then
// parses the environment. Missing .env files are not an error; variables
// already set in the environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("PFVERIFY_ADDR must not be empty")
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("PFVERIFY_LOG_FORMAT must be text, json or logfmt, got %q", c.LogFormat)
	}
	if c.ScanTimeout < 0 || c.RequestTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.ScanMaxRange == 0 {
		return errors.New("PFVERIFY_SCAN_MAX_RANGE must be positive")
	}
	if c.HistoryPage < 1 || c.HistoryPage > maxHistoryPage {
		return fmt.Errorf("PFVERIFY_HISTORY_PAGE must be between 1 and %d, got %d", maxHistoryPage, c.HistoryPage)
	}
	return nil
}
