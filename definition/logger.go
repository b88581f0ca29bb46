// Package definition supplies the default ambient implementations the
// runtime packages consult through types.Logger and types.Metrics: a
// leveled, color-prefixed logger backed by logrus, and a Prometheus
// collector. Adapted from
// pkg/mcast/definition/default_logger.go (teacher), swapping the
// teacher's stdlib `log.Logger` for logrus + fatih/color per SPEC_FULL.md
// §11 — the teacher's own go.mod already carries both.
package definition

import (
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jabolina/calculus/types"
)

var (
	infoPrefix  = color.New(color.FgCyan).SprintFunc()
	warnPrefix  = color.New(color.FgYellow).SprintFunc()
	errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()
	debugPrefix = color.New(color.FgWhite).SprintFunc()
)

// DefaultLogger is the logrus-backed types.Logger implementation; callers
// pass it in explicitly (a nil logger falls back to types.NopLogger, not to
// this). Every line carries a per-program correlation id so
// interleaved worker goroutines' log lines can be told apart.
type DefaultLogger struct {
	entry *logrus.Entry
}

// NewDefaultLogger builds a DefaultLogger stamped with a fresh correlation
// id, writing at info level by default.
func NewDefaultLogger() *DefaultLogger {
	base := logrus.New()
	base.SetLevel(logrus.InfoLevel)
	return &DefaultLogger{entry: base.WithField("run", uuid.NewString())}
}

// ToggleDebug flips the underlying logger between info and debug level,
// matching the teacher's own ToggleDebug surface.
func (l *DefaultLogger) ToggleDebug(enabled bool) {
	if enabled {
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	l.entry.Debugf(debugPrefix("[DEBUG] ")+format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.entry.Infof(infoPrefix("[INFO] ")+format, args...)
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.entry.Warnf(warnPrefix("[WARN] ")+format, args...)
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.entry.Errorf(errorPrefix("[ERROR] ")+format, args...)
}

var _ types.Logger = (*DefaultLogger)(nil)
