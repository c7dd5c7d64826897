// Package logger provides a small leveled logger for the paperpdf tools,
// backed by zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level represents logging severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name such as "warn" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger writes leveled, prefixed lines through a zerolog console writer.
// A nil *Logger is valid and discards everything.
type Logger struct {
	zl       zerolog.Logger
	minLevel Level
	prefix   string
}

// New creates a new logger
func New(out io.Writer, minLevel Level, prefix string) *Logger {
	return newLogger(out, minLevel, prefix, true)
}

func newLogger(out io.Writer, minLevel Level, prefix string, timestamps bool) *Logger {
	if out == nil {
		out = os.Stderr
	}
	cw := zerolog.ConsoleWriter{
		Out:        zerolog.SyncWriter(out),
		NoColor:    true,
		TimeFormat: "15:04:05",
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i any) string {
			return strings.ToUpper(fmt.Sprint(i))
		},
	}
	if timestamps {
		cw.PartsOrder = append([]string{zerolog.TimestampFieldName}, cw.PartsOrder...)
	}
	zl := zerolog.New(cw).Level(minLevel.zerolog())
	if timestamps {
		zl = zl.With().Timestamp().Logger()
	}
	return &Logger{
		zl:       zl,
		minLevel: minLevel,
		prefix:   prefix,
	}
}

// Default returns a logger writing INFO and above to stderr.
func Default() *Logger {
	return New(os.Stderr, LevelInfo, "")
}

// WithPrefix creates a sub-logger with an additional prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	if l == nil {
		return nil
	}
	newPrefix := prefix
	if l.prefix != "" {
		newPrefix = l.prefix + "/" + prefix
	}
	return &Logger{
		zl:       l.zl,
		minLevel: l.minLevel,
		prefix:   newPrefix,
	}
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.minLevel
}

func (l *Logger) log(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = "[" + l.prefix + "] " + msg
	}
	l.zl.WithLevel(level.zerolog()).Msg(msg)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Step logs the start of a named step and returns a function that logs
// its completion at debug level.
func (l *Logger) Step(name string) func() {
	if l == nil {
		return func() {}
	}
	start := time.Now()
	l.Debug("start: %s", name)
	return func() {
		l.Debug("done: %s (%v)", name, time.Since(start).Round(time.Microsecond))
	}
}
