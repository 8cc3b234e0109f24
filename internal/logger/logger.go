// Package logger provides structured logging for addrsearch.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger plus a set of fields attached to every entry.
type Logger struct {
	log    *logrus.Logger
	fields logrus.Fields
}

// Entry accumulates fields for a single log line.
type Entry struct {
	entry *logrus.Entry
	level logrus.Level
}

// New creates a new logger instance.
// An unknown or empty level falls back to info.
func New(level string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	log := logrus.New()
	log.SetOutput(output)
	log.SetLevel(ParseLevel(level))
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})

	return &Logger{log: log, fields: logrus.Fields{}}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New("error", io.Discard)
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Component returns a child logger tagging every line with component=name.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// With returns a child logger carrying an extra field.
func (l *Logger) With(key string, value interface{}) *Logger {
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{log: l.log, fields: fields}
}

// Enabled reports whether lines at the given level would be written.
func (l *Logger) Enabled(level string) bool {
	return l.log.IsLevelEnabled(ParseLevel(level))
}

func (l *Logger) newEntry(level logrus.Level) *Entry {
	return &Entry{entry: l.log.WithFields(l.fields), level: level}
}

// Debug starts a debug entry
func (l *Logger) Debug() *Entry { return l.newEntry(logrus.DebugLevel) }

// Info starts an info entry
func (l *Logger) Info() *Entry { return l.newEntry(logrus.InfoLevel) }

// Warn starts a warning entry
func (l *Logger) Warn() *Entry { return l.newEntry(logrus.WarnLevel) }

// Error starts an error entry
func (l *Logger) Error() *Entry { return l.newEntry(logrus.ErrorLevel) }

// Str adds a string field
func (e *Entry) Str(key, value string) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Int adds an int field
func (e *Entry) Int(key string, value int) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Bool adds a bool field
func (e *Entry) Bool(key string, value bool) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Float adds a float field
func (e *Entry) Float(key string, value float64) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Any adds a field of arbitrary type
func (e *Entry) Any(key string, value interface{}) *Entry {
	e.entry = e.entry.WithField(key, value)
	return e
}

// Err adds an error field. A nil error is ignored.
func (e *Entry) Err(err error) *Entry {
	if err != nil {
		e.entry = e.entry.WithError(err)
	}
	return e
}

// Dur adds a duration field expressed in milliseconds.
func (e *Entry) Dur(key string, duration time.Duration) *Entry {
	ms := float64(duration.Microseconds()) / 1000.0
	e.entry = e.entry.WithField(key, ms)
	return e
}

// Msg writes the entry with the accumulated fields.
func (e *Entry) Msg(msg string) {
	e.entry.Log(e.level, msg)
}

// Msgf writes the entry with a formatted message.
func (e *Entry) Msgf(format string, args ...interface{}) {
	e.entry.Logf(e.level, format, args...)
}
