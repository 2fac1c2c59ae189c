package config

import (
	"flag"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend base URL
//	-d string   session database file
//	-t value    request timeout: seconds ("10") or a duration ("1500ms")
//	-n int      concurrent deletes for delete-selected
//	-l string   log level
//	-ephemeral  keep the session in memory only
//
// args is filtered with flagx.FilterArgs so flags owned by other loaders
// (-c/-config) do not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-n", "-l", "-ephemeral"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base url")
	fs.StringVar(&cfg.SessionDBPath, "d", cfg.SessionDBPath, "session database file")
	fs.Var((*timeoutValue)(&cfg.RequestTimeout), "t", "request timeout (seconds or duration)")
	fs.IntVar(&cfg.BulkDeleteConcurrency, "n", cfg.BulkDeleteConcurrency, "concurrent deletes")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.Ephemeral, "ephemeral", cfg.Ephemeral, "do not persist the session")

	return fs.Parse(args)
}

// timeoutValue is a flag.Value over a time.Duration. A bare integer is read
// as seconds.
type timeoutValue time.Duration

func (v *timeoutValue) String() string {
	if v == nil {
		return "0s"
	}
	return time.Duration(*v).String()
}

func (v *timeoutValue) Set(s string) error {
	if n, err := strconv.Atoi(s); err == nil {
		*v = timeoutValue(time.Duration(n) * time.Second)
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*v = timeoutValue(d)
	return nil
}
