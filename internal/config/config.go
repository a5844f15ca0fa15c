// Package config loads runtime settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into Config.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidWorkers is returned for a negative worker count.
	ErrInvalidWorkers = errors.New("workers must not be negative")
)

type Config struct {
	DBPath     string   `env:"BROWSETRACE_DB_PATH"`
	LogLevel   string   `env:"BROWSETRACE_LOG_LEVEL" envDefault:"info"`
	LogFile    string   `env:"BROWSETRACE_LOG_FILE"`
	Workers    int      `env:"BROWSETRACE_WORKERS" envDefault:"1"` // 1 = sequential, 0 = GOMAXPROCS
	EventTypes []string `env:"BROWSETRACE_EVENT_TYPES" envSeparator:","`
}

// Load reads the given .env files (or ./.env when none are given and it
// exists) and parses the environment into a Config. Variables already set in
// the environment take precedence over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	} else {
		// The default .env file is optional.
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}

	if cfg.DBPath == "" {
		dir, err := DataDir()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = filepath.Join(dir, "events.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}
	return nil
}

// DataDir returns the platform-specific BrowserTrace application directory.
func DataDir() (string, error) {
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDirectory, "Library", "Application Support", "BrowserTrace"), nil
	case "windows":
		return filepath.Join(homeDirectory, "AppData", "Roaming", "BrowserTrace"), nil
	default: // linux and others
		return filepath.Join(homeDirectory, ".local", "share", "BrowserTrace"), nil
	}
}
