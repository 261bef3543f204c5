/*
Package observability wires structured logging and Prometheus metrics for
the server process. Logs always go to stderr: stdout belongs to the framed
protocol stream.
*/
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log output formats accepted by InitLogger.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// InitLogger configures the global logger and returns it. Unknown levels
// fall back to info; unknown formats fall back to JSON.
func InitLogger(level, format string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(parsed).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
