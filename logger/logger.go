// Package logger builds the service's zerolog loggers.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New creates the base service logger. Level and format come from
// LOG_LEVEL ("debug", "info", ...) and LOG_FORMAT ("console" or "json").
func New(service string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out = zerolog.New(os.Stderr)
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return out.Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// WithComponent tags a child logger with a component name.
func WithComponent(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
