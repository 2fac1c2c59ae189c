// Package config loads runtime configuration for the expense CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables, including a .env file in the working
//     directory (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL, including /api
//	-d string   session database file
//	-t value    request timeout (seconds, or a duration like "1500ms")
//	-n int      concurrent deletes for delete-selected
//	-l string   log level: debug, info, warn, error
//	-ephemeral  keep the session in memory only
//
// Environment
//
//	EXPENSE_API_URL, EXPENSE_SESSION_DB, EXPENSE_LOG_LEVEL,
//	EXPENSE_REQUEST_TIMEOUT (Go duration, e.g. "20s")
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so it can be either a
// string like "15s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:5000/api",
//	  "session_db_path": "session.db",
//	  "request_timeout": "15s",
//	  "bulk_delete_concurrency": 4,
//	  "log_level": "info"
//	}
package config
