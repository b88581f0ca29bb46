package types

// Logger is the leveled logging contract every runtime package logs
// through. definition.DefaultLogger is the logrus/fatih-color-backed
// implementation; NopLogger is used where no logger was supplied.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything. Used as the zero-value default so callers
// never need a nil check.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// Metrics is the counter surface the scheduler drives. definition.Collector
// backs this with Prometheus counters; NopMetrics is the no-op default.
type Metrics interface {
	TickObserved(pid PID, kind string)
	LateTickObserved(pid PID, kind string)
	MessageHandled(pid PID)
	UnhandledMessageDrained(pid PID)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) TickObserved(PID, string)       {}
func (NopMetrics) LateTickObserved(PID, string)   {}
func (NopMetrics) MessageHandled(PID)             {}
func (NopMetrics) UnhandledMessageDrained(PID)    {}
