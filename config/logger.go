package config

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog.Logger configured from GO_ENV and
// LOG_LEVEL. Production logs JSON to stdout; elsewhere the console
// writer is used. LOG_LEVEL may be: debug, info, warn, error
// (default: info).
func NewLogger() zerolog.Logger {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	level := zerolog.InfoLevel
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if env == "production" {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(level).With().Timestamp().Logger()
}
