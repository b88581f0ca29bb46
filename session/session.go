package session

import (
	"fmt"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/internal/vecmap"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/types"
)

// State is the session state machine: Ready → Running → Ended.
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

// Factory constructs a process's initial Callbacks given its freshly built
// Base. One Factory is supplied per process id at session construction.
type Factory func(base *process.Base) process.Callbacks

// Session is a materialized, runnable instance of a Def.
type Session struct {
	def            Def
	factories      map[types.PID]Factory
	processHandles vecmap.Map[types.PID, *process.Handle]
	mainThread     process.Callbacks
	state          State
	logger         types.Logger
	stats          types.Metrics
}

// New constructs a Session ready to Run. factories must supply a
// constructor for every process id not already present in a carried-over
// handle map passed to RunWith.
func New(def Def, factories map[types.PID]Factory, logger types.Logger, stats types.Metrics) *Session {
	if logger == nil {
		logger = types.NopLogger{}
	}
	if stats == nil {
		stats = types.NopMetrics{}
	}
	return &Session{def: def, factories: factories, state: Ready, logger: logger, stats: stats}
}

// Run creates fresh channels and runs the session to completion with no
// carried-over handles — the common case for a standalone session.
func (s *Session) Run() (vecmap.Map[types.PID, types.Result], error) {
	channels, err := s.def.CreateChannels()
	if err != nil {
		return vecmap.Map[types.PID, types.Result]{}, err
	}
	return s.RunWith(channels, vecmap.Map[types.PID, *process.Handle]{}, nil), nil
}

// RunWith drives the session to completion reusing channels and handles
// supplied by a program transition (empty/nil for a fresh standalone run).
// Grounded on original_source/src/session/mod.rs's start()/run_with().
func (s *Session) RunWith(channels vecmap.Map[types.CID, *channel.Channel], handles vecmap.Map[types.PID, *process.Handle], mainWorker process.Callbacks) vecmap.Map[types.PID, types.Result] {
	s.start(channels, handles, mainWorker)
	s.setState(Running)

	if s.mainThread != nil {
		process.RunInline(s.mainThread)
	}

	var results vecmap.Map[types.PID, types.Result]
	s.processHandles.Each(func(pid types.PID, h *process.Handle) {
		results.Insert(pid, <-h.ResultRx)
	})
	s.setState(Ended)
	return results
}

func (s *Session) start(channels vecmap.Map[types.CID, *channel.Channel], handles vecmap.Map[types.PID, *process.Handle], mainWorker process.Callbacks) {
	for _, pd := range s.def.ProcessDefs {
		if existing, ok := handles.Get(pd.ID); ok {
			s.processHandles.Insert(pd.ID, existing)
			if s.def.MainThreadPID != nil && *s.def.MainThreadPID == pd.ID {
				s.mainThread = mainWorker
			}
			continue
		}

		sourcepoints := sourcepointsFor(pd, channels)
		endpoints := endpointsFor(pd, channels)
		workerHandle, sessionHandle := process.NewHandlePair()
		base := process.NewBase(pd, sourcepoints, endpoints, workerHandle, s.logger, s.stats)
		factory, ok := s.factories[pd.ID]
		if !ok {
			panic(fmt.Sprintf("session: no factory registered for process %d", pd.ID))
		}
		cb := factory(base)

		if s.def.MainThreadPID != nil && *s.def.MainThreadPID == pd.ID {
			s.mainThread = cb
			// sentinel: no thread, no pending continuation yet.
		} else {
			sessionHandle.Thread = process.Spawn(cb)
		}
		s.processHandles.Insert(pd.ID, sessionHandle)
	}
}

// Handle returns the session-side handle for pid, for the program engine to
// attach a pending continuation to ahead of Finish.
func (s *Session) Handle(pid types.PID) *process.Handle {
	h, _ := s.processHandles.Get(pid)
	return h
}

// TakeMainThreadWorker returns and clears the retained main-thread worker,
// for the program engine to run a migration closure against it inline.
func (s *Session) TakeMainThreadWorker() process.Callbacks {
	w := s.mainThread
	s.mainThread = nil
	return w
}

// Def returns this session's definition.
func (s *Session) Def() Def { return s.def }

// Finish dispatches each worker handle's continuation: a terminal
// continuation plus a join for handles with a real thread and no pending
// migration continuation; just a send (no join) for handles with a pending
// continuation already attached by a transition; nothing for a main-thread
// handle whose continuation the program already applied inline. Panics if
// called before the session reaches Ended, per spec §4.3.
func (s *Session) Finish() {
	if s.State() != Ended {
		panic(fmt.Sprintf("session: Finish called in state %s, must be Ended", s.State()))
	}
	s.processHandles.Each(func(_ types.PID, h *process.Handle) {
		switch {
		case h.Pending != nil:
			h.ContinuationTx <- *h.Pending
		case h.Thread != nil:
			h.ContinuationTx <- process.Terminal
			<-h.Thread.Done
		default:
			// main-thread worker, continuation already handled inline.
		}
	})
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) setState(next State) {
	valid := (s.state == Ready && next == Running) || (s.state == Running && next == Ended)
	if !valid {
		panic(fmt.Sprintf("session: invalid state transition %s -> %s", s.state, next))
	}
	s.state = next
}
