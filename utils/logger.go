package utils

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a console Logger writing to stdout. The level is read
// from LOG_LEVEL and defaults to info.
func NewLogger() *Logger {
	return NewLoggerWithWriter(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// NewLoggerWithWriter creates a Logger emitting to w. A plain writer
// receives JSON lines.
func NewLoggerWithWriter(w io.Writer) *Logger {
	zl := zerolog.New(w).Level(levelFromEnv()).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func levelFromEnv() zerolog.Level {
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// With returns a child logger carrying key=value on every entry.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Err logs at error level with err attached as a field.
func (l *Logger) Err(err error, format string, args ...any) {
	l.zl.Error().Err(err).Msgf(format, args...)
}
