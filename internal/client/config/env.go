package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL         = "EXPENSE_API_URL"
	EnvSessionDB      = "EXPENSE_SESSION_DB"
	EnvLogLevel       = "EXPENSE_LOG_LEVEL"
	EnvRequestTimeout = "EXPENSE_REQUEST_TIMEOUT"
)

// dotenvPath is read if present. Variables already set in the environment
// win over the file.
var dotenvPath = ".env"

func parseEnv(cfg *Config) error {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvSessionDB); ok && v != "" {
		cfg.SessionDBPath = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvRequestTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
