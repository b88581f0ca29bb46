package process

import (
	"fmt"
	"sync"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/internal/vecmap"
	"github.com/jabolina/calculus/types"
)

// State is the worker state machine: Ready → Running → Ended.
type State int

const (
	Ready State = iota
	Running
	Ended
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Callbacks is the user contract a worker implements. Every worker type
// embeds *Base (which promotes the Base() accessor) and supplies these five
// methods, mirroring the original Process trait's inner_ref/inner_mut plus
// required methods.
type Callbacks interface {
	// Base returns the embedded runtime state; promoted automatically by
	// embedding *process.Base.
	Base() *Base
	// Initialize runs once before the loop. Returning Break skips the loop
	// entirely — the worker proceeds straight to Terminate/shutdown without
	// ever taking its endpoints, which is how a worker can disconnect
	// before receiving or sending anything (spec §8 scenario 3).
	Initialize() types.ControlFlow
	Terminate()
	HandleMessage(msg types.Message) types.ControlFlow
	Update() types.ControlFlow
	// Result returns the worker's current user-typed result, read once at
	// shutdown to report over the session's result channel.
	Result() types.Result
}

// Base is the runtime state every worker embeds: its definition, its
// sourcepoint map, its lazily-takeable endpoint map, its FSM state, its
// session rendezvous, and its logger/metrics.
type Base struct {
	def          Def
	sourcepoints vecmap.Map[types.CID, channel.Sourcepoint]

	epMu        sync.Mutex
	endpoints   *vecmap.Map[types.CID, channel.Endpoint]
	endpointsIn bool // true once taken, until put back

	stateMu sync.Mutex
	state   State

	handle WorkerHandle
	logger types.Logger
	stats  types.Metrics
}

// NewBase constructs a fresh Base in the Ready state, ready to be embedded
// into a concrete worker type and driven by Spawn or RunInline.
func NewBase(def Def, sourcepoints vecmap.Map[types.CID, channel.Sourcepoint], endpoints vecmap.Map[types.CID, channel.Endpoint], handle WorkerHandle, logger types.Logger, stats types.Metrics) *Base {
	if logger == nil {
		logger = types.NopLogger{}
	}
	if stats == nil {
		stats = types.NopMetrics{}
	}
	eps := endpoints
	return &Base{
		def:          def,
		sourcepoints: sourcepoints,
		endpoints:    &eps,
		state:        Ready,
		handle:       handle,
		logger:       logger,
		stats:        stats,
	}
}

// Base satisfies the Callbacks.Base() accessor directly, so any type
// embedding *Base gets it promoted for free.
func (b *Base) Base() *Base { return b }

// ID returns this worker's process id.
func (b *Base) ID() types.PID { return b.def.ID }

// Def returns the validated process definition this worker was built from.
func (b *Base) Def() Def { return b.def }

// State returns the current FSM state.
func (b *Base) State() State {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	return b.state
}

func (b *Base) setState(next State) {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	valid := (b.state == Ready && next == Running) || (b.state == Running && next == Ended)
	if !valid {
		panic(fmt.Sprintf("process %d: invalid state transition %s -> %s", b.def.ID, b.state, next))
	}
	b.state = next
}

// Send delivers msg on the sourcepoint identified by cid. Panics if cid is
// not one of this worker's declared sourcepoints (a definition-time
// guarantee, never reachable through valid use).
func (b *Base) Send(cid types.CID, msg types.Message) error {
	sp, ok := b.sourcepoints.Get(cid)
	if !ok {
		panic(fmt.Sprintf("process %d: %d is not a declared sourcepoint", b.def.ID, cid))
	}
	err := sp.Send(msg)
	if err != nil {
		b.logger.Warnf("process %d: send on channel %d failed: %v", b.def.ID, cid, err)
	}
	return err
}

// SendTo delivers msg to recipient on the Source sourcepoint identified by
// cid.
func (b *Base) SendTo(cid types.CID, recipient types.PID, msg types.Message) error {
	sp, ok := b.sourcepoints.Get(cid)
	if !ok {
		panic(fmt.Sprintf("process %d: %d is not a declared sourcepoint", b.def.ID, cid))
	}
	err := sp.SendTo(msg, recipient)
	if err != nil {
		b.logger.Warnf("process %d: send_to %d on channel %d failed: %v", b.def.ID, recipient, cid, err)
	}
	return err
}

// takeEndpoints moves the endpoint map out of the worker shell so the
// scheduler loop may iterate it. Calling this twice without an intervening
// putEndpoints is a fatal misuse, per spec §4.2/§7.
func (b *Base) takeEndpoints() vecmap.Map[types.CID, channel.Endpoint] {
	b.epMu.Lock()
	defer b.epMu.Unlock()
	if b.endpointsIn {
		panic(fmt.Sprintf("process %d: take-endpoints called twice", b.def.ID))
	}
	b.endpointsIn = true
	return *b.endpoints
}

func (b *Base) putEndpoints(eps vecmap.Map[types.CID, channel.Endpoint]) {
	b.epMu.Lock()
	defer b.epMu.Unlock()
	*b.endpoints = eps
	b.endpointsIn = false
}
