package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns the service logger: a console writer in development, JSON elsewhere.
func New(env string) zerolog.Logger {
	return newWithWriter(env, os.Stdout)
}

func newWithWriter(env string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if !isProduction(env) {
		level = zerolog.DebugLevel
	}

	var writer io.Writer = out
	if isDevelopment(env) {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", "liftcare").
		Logger()
}

func isProduction(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "production" || env == "prod"
}

func isDevelopment(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "" || env == "development" || env == "dev" || env == "local"
}
