// Package logger configures the application-wide zerolog logger. Services
// receive a sub-logger tagged with their component name instead of using
// the global instance, so log output stays attributable and test doubles
// can pass zerolog.Nop().
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. Pretty output is for local development only;
// production emits plain JSON lines.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var l zerolog.Logger
	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		l = zerolog.New(os.Stdout)
	}

	return l.Level(lvl).With().
		Timestamp().
		Str("service", "velvet").
		Logger()
}
