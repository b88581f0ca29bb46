package definition

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jabolina/calculus/types"
)

// Collector is the types.Metrics implementation backed by
// github.com/prometheus/client_golang, contributed by linkerd-linkerd2 and
// the teacher's own prometheus/common dependency (see SPEC_FULL.md §11).
// It is optional — every scheduler call site falls back to
// types.NopMetrics when none is supplied.
type Collector struct {
	ticks      *prometheus.CounterVec
	lateTicks  *prometheus.CounterVec
	handled    *prometheus.CounterVec
	unhandled  *prometheus.CounterVec
}

// NewCollector registers a fresh set of counters against reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calculus_ticks_total",
			Help: "Ticks observed by a process loop, labelled by pid and kind.",
		}, []string{"pid", "kind"}),
		lateTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calculus_late_ticks_total",
			Help: "Late ticks observed by a process loop, labelled by pid and kind.",
		}, []string{"pid", "kind"}),
		handled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calculus_messages_handled_total",
			Help: "Messages handled by a process, labelled by pid.",
		}, []string{"pid"}),
		unhandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calculus_unhandled_messages_total",
			Help: "Messages drained as unhandled at worker shutdown, labelled by pid.",
		}, []string{"pid"}),
	}
	reg.MustRegister(c.ticks, c.lateTicks, c.handled, c.unhandled)
	return c
}

func (c *Collector) TickObserved(pid types.PID, kind string) {
	c.ticks.WithLabelValues(pidLabel(pid), kind).Inc()
}

func (c *Collector) LateTickObserved(pid types.PID, kind string) {
	c.lateTicks.WithLabelValues(pidLabel(pid), kind).Inc()
}

func (c *Collector) MessageHandled(pid types.PID) {
	c.handled.WithLabelValues(pidLabel(pid)).Inc()
}

func (c *Collector) UnhandledMessageDrained(pid types.PID) {
	c.unhandled.WithLabelValues(pidLabel(pid)).Inc()
}

func pidLabel(pid types.PID) string { return strconv.Itoa(int(pid)) }

var _ types.Metrics = (*Collector)(nil)
