package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
)

// Config holds runtime settings for the expense CLI.
//
// Fields:
//   - APIBaseURL: backend root including the /api prefix.
//   - SessionDBPath: SQLite file holding the session token.
//   - RequestTimeout: upper bound for a single backend request.
//   - BulkDeleteConcurrency: deletes in flight during "delete-selected".
//   - LogLevel: debug, info, warn or error.
//   - Ephemeral: keep the session in memory only.
type Config struct {
	APIBaseURL            string
	SessionDBPath         string
	RequestTimeout        time.Duration
	BulkDeleteConcurrency int
	LogLevel              string
	Ephemeral             bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = api.DefaultBaseURL
	c.SessionDBPath = "session.db"
	c.RequestTimeout = 15 * time.Second
	c.BulkDeleteConcurrency = api.DefaultDeleteConcurrency
	c.LogLevel = "warn"
	c.Ephemeral = false
}

func (c *Config) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("api base url is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.BulkDeleteConcurrency < 1 {
		errs = append(errs, fmt.Errorf("bulk delete concurrency must be at least 1, got %d", c.BulkDeleteConcurrency))
	}
	if !c.Ephemeral && c.SessionDBPath == "" {
		errs = append(errs, errors.New("session db path is empty"))
	}
	return errors.Join(errs...)
}

// Load constructs a Config from args (without the program name): defaults,
// then JSON (if -c/-config is given), then environment, then flags. Later
// sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
