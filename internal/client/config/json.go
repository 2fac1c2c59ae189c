package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/expensekeeper/internal/flagx"
	"github.com/dmitrijs2005/expensekeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "15s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL            string         `json:"api_base_url"`
	SessionDBPath         string         `json:"session_db_path"`
	RequestTimeout        timex.Duration `json:"request_timeout"`
	BulkDeleteConcurrency int            `json:"bulk_delete_concurrency"`
	LogLevel              string         `json:"log_level"`
	Ephemeral             *bool          `json:"ephemeral"`
}

// parseJson overlays cfg with the JSON file named by -c or -config. Keys
// missing from the file keep their current value.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.BulkDeleteConcurrency != 0 {
		cfg.BulkDeleteConcurrency = jc.BulkDeleteConcurrency
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.Ephemeral != nil {
		cfg.Ephemeral = *jc.Ephemeral
	}
	return nil
}
