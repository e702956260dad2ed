package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05"

// New returns a console logger writing to w. An unknown or empty level falls back to warn,
// keeping command output quiet unless asked otherwise.
func New(w io.Writer, level string) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:          w,
		TimeFormat:   timeFormat,
		TimeLocation: time.UTC,
		NoColor:      true,
	}

	return zerolog.New(console).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.WarnLevel
	}

	return parsed
}

// WithComponent tags every event of log with the emitting component.
func WithComponent(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
