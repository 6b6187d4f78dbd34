// Package shelllog adapts the teacher's utils.Logger (a thin wrapper with
// Info/Warn/Error call sites and an optional timestamp) onto logrus, the
// structured logger the rest of the retrieval pack reaches for.
package shelllog

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Entry so call sites keep the teacher's
// Info(format, args...) shape instead of logrus's field-first API.
type Logger struct {
	entry *logrus.Entry
}

// New builds a Logger writing to stdout. withTimestamp controls whether
// entries carry a time field, matching the teacher's NewLogger(bool) knob.
func New(withTimestamp bool) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !withTimestamp, DisableQuote: true})
	return &Logger{entry: logrus.NewEntry(base)}
}

func (l *Logger) Info(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...any) { l.entry.Errorf(format, args...) }

// WithFields returns a Logger whose subsequent entries carry fields, for
// call sites that want structured context (e.g. the bulk loader tagging
// each batch with its chunk index).
func (l *Logger) WithFields(fields logrus.Fields) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// Entry exposes the underlying logrus.Entry for packages (csvstore,
// loader) that want to call WithFields/Info directly without going through
// the format-string wrapper.
func (l *Logger) Entry() *logrus.Entry { return l.entry }

// Timer mirrors the teacher's utils.Timer: a start mark and an elapsed
// reading, used to log how long a bulk load or chunk computation took.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer { return &Timer{start: time.Now()} }

// Elapsed returns the duration since the timer started.
func (t *Timer) Elapsed() time.Duration { return time.Since(t.start) }
