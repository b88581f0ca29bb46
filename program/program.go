// Package program implements the mode finite-state machine and the
// transition engine that moves live workers' state between sessions via
// continuation closures. Grounded on original_source/src/program/mod.rs and
// macro_def.rs's generated run() body.
package program

import (
	"fmt"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/internal/vecmap"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// Transfer moves user state from the outgoing worker's Callbacks into the
// freshly constructed target Base, returning the new worker's Callbacks.
// Grounded on spec §4.4's "constructor closure".
type Transfer func(prev process.Callbacks, next *process.Base) process.Callbacks

// Migration names one worker moving from mode A's PID to mode B's PID
// across a transition.
type Migration struct {
	SourcePID types.PID
	TargetPID types.PID
	Transfer  Transfer
}

// Transition is a named edge of the mode FSM.
type Transition struct {
	Name       string
	SourceMode string
	TargetMode string
	Migrations []Migration
}

// Arbiter inspects a finished session's collected results and names the
// next transition to take, or ok=false to halt the program.
type Arbiter func(results vecmap.Map[types.PID, types.Result]) (transition string, ok bool)

// Mode is one state of the program FSM: a session definition, the
// factories needed to build fresh workers in it, and the arbiter consulted
// once the session finishes.
type Mode struct {
	Name          string
	Session       session.Def
	Factories     map[types.PID]session.Factory
	Arbiter       Arbiter
}

// Def is a program definition: its modes, its transitions (keyed by name),
// and its initial mode.
type Def struct {
	Modes       map[string]Mode
	Transitions map[string]Transition
	Initial     string
}

// Program drives Def's mode FSM to completion.
type Program struct {
	def    Def
	logger types.Logger
	stats  types.Metrics
}

// New constructs a Program ready to Run.
func New(def Def, logger types.Logger, stats types.Metrics) *Program {
	if logger == nil {
		logger = types.NopLogger{}
	}
	if stats == nil {
		stats = types.NopMetrics{}
	}
	return &Program{def: def, logger: logger, stats: stats}
}

// carried is what one transition hands to the next mode's session. channels
// is the exact set of channel instances built while wiring the migrated
// workers' handles — it must be reused verbatim, not rebuilt, or a channel
// linking a migrated worker to a freshly-spawned one would resolve to two
// distinct queue.Unbounded instances on either end.
type carried struct {
	channels   vecmap.Map[types.CID, *channel.Channel]
	handles    vecmap.Map[types.PID, *process.Handle]
	mainThread process.Callbacks
}

// Run drives the program from its initial mode through transitions chosen
// by each mode's arbiter, until one returns ok=false.
func (p *Program) Run() (vecmap.Map[types.PID, types.Result], error) {
	currentName := p.def.Initial
	var carry *carried

	for {
		mode, ok := p.def.Modes[currentName]
		if !ok {
			return vecmap.Map[types.PID, types.Result]{}, fmt.Errorf("program: unknown mode %q", currentName)
		}
		validated, err := session.Define(mode.Session)
		if err != nil {
			return vecmap.Map[types.PID, types.Result]{}, fmt.Errorf("program: mode %q: %w", currentName, err)
		}

		sess := session.New(validated, mode.Factories, p.logger, p.stats)
		p.logger.Infof("program: entering mode %q", currentName)

		var results vecmap.Map[types.PID, types.Result]
		if carry == nil {
			results, err = sess.Run()
			if err != nil {
				return vecmap.Map[types.PID, types.Result]{}, err
			}
		} else {
			results = sess.RunWith(carry.channels, carry.handles, carry.mainThread)
		}

		transitionName, cont := mode.Arbiter(results)
		if !cont {
			p.logger.Infof("program: mode %q halted the program", currentName)
			sess.Finish()
			return results, nil
		}

		transition, ok := p.def.Transitions[transitionName]
		if !ok {
			panic(fmt.Sprintf("program: unknown transition %q", transitionName))
		}
		if transition.SourceMode != currentName {
			panic(fmt.Sprintf("program: transition %q does not originate from mode %q", transitionName, currentName))
		}
		targetMode, ok := p.def.Modes[transition.TargetMode]
		if !ok {
			panic(fmt.Sprintf("program: transition %q targets unknown mode %q", transitionName, transition.TargetMode))
		}
		targetDef, err := session.Define(targetMode.Session)
		if err != nil {
			return vecmap.Map[types.PID, types.Result]{}, fmt.Errorf("program: transition %q target: %w", transitionName, err)
		}

		p.logger.Infof("program: transition %q: %s -> %s", transitionName, transition.SourceMode, transition.TargetMode)

		nextChannels, err := targetDef.CreateChannels()
		if err != nil {
			return vecmap.Map[types.PID, types.Result]{}, err
		}
		var nextHandles vecmap.Map[types.PID, *process.Handle]
		var nextMainThread process.Callbacks

		for _, mig := range transition.Migrations {
			sourceIsMain := mode.Session.MainThreadPID != nil && *mode.Session.MainThreadPID == mig.SourcePID
			targetIsMain := targetDef.MainThreadPID != nil && *targetDef.MainThreadPID == mig.TargetPID
			if sourceIsMain != targetIsMain {
				panic(fmt.Sprintf("program: transition %q: main-thread constraint violated for %d -> %d",
					transitionName, mig.SourcePID, mig.TargetPID))
			}

			targetPD, ok := targetDef.ProcessDef(mig.TargetPID)
			if !ok {
				panic(fmt.Sprintf("program: transition %q: target pid %d not declared", transitionName, mig.TargetPID))
			}
			sourcepoints := sourcepointsForTarget(targetPD, nextChannels)
			endpoints := endpointsForTarget(targetPD, nextChannels)
			workerHandle, nextHandle := process.NewHandlePair()
			nextBase := process.NewBase(targetPD, sourcepoints, endpoints, workerHandle, p.logger, p.stats)

			constructor := func(prev process.Callbacks) process.Callbacks {
				return mig.Transfer(prev, nextBase)
			}

			prevHandle := sess.Handle(mig.SourcePID)
			if sourceIsMain {
				oldWorker := sess.TakeMainThreadWorker()
				nextMainThread = process.ApplyContinuation(constructor, oldWorker)
			} else {
				cont := process.Continuation(constructor)
				prevHandle.Pending = &cont
				nextHandle.Thread = prevHandle.Thread
			}
			nextHandles.Insert(mig.TargetPID, nextHandle)
		}

		sess.Finish()

		carry = &carried{channels: nextChannels, handles: nextHandles, mainThread: nextMainThread}
		currentName = transition.TargetMode
	}
}

// sourcepointsForTarget/endpointsForTarget extract a migrating worker's
// per-CID sub-maps from the freshly created target-mode channels — the
// same decomposition session.start performs for a freshly spawned worker,
// duplicated here because a migration never goes through session.start.
func sourcepointsForTarget(pd process.Def, channels vecmap.Map[types.CID, *channel.Channel]) vecmap.Map[types.CID, channel.Sourcepoint] {
	var out vecmap.Map[types.CID, channel.Sourcepoint]
	for _, cid := range pd.Sourcepoints {
		ch, _ := channels.Get(cid)
		sp, _ := ch.Sourcepoints.Get(pd.ID)
		out.Insert(cid, sp)
	}
	return out
}

func endpointsForTarget(pd process.Def, channels vecmap.Map[types.CID, *channel.Channel]) vecmap.Map[types.CID, channel.Endpoint] {
	var out vecmap.Map[types.CID, channel.Endpoint]
	for _, cid := range pd.Endpoints {
		ch, _ := channels.Get(cid)
		ep, _ := ch.Endpoints.Get(pd.ID)
		out.Insert(cid, ep)
	}
	return out
}
