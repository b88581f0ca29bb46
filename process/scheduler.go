package process

import (
	"time"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/channel/backend"
	"github.com/jabolina/calculus/internal/vecmap"
	"github.com/jabolina/calculus/types"
)

// run drives cb through initialize, its kind-specific loop, terminate, and
// shutdown, then posts its result. Grounded on
// original_source/src/process/mod.rs's run()/run_asynchronous()/
// run_isochronous()/run_mesochronous()/run_anisochronous().
func (b *Base) run(cb Callbacks) {
	b.setState(Running)

	if cb.Initialize() == types.Break {
		b.setState(Ended)
	} else {
		switch b.def.Kind.Kind {
		case Asynchronous:
			b.runAsynchronous(cb)
		case Isochronous:
			b.runIsochronous(cb)
		case Mesochronous:
			b.runMesochronous(cb)
		case Anisochronous:
			b.runAnisochronous(cb)
		}
	}

	if b.State() != Ended {
		b.setState(Ended)
	}
	cb.Terminate()
	b.shutdown(cb)
}

// runAsynchronous blocks on its single endpoint, invoking Update every N
// successful handles, per spec §4.2.
func (b *Base) runAsynchronous(cb Callbacks) {
	eps := b.takeEndpoints()
	defer func() { b.putEndpoints(eps) }()

	cid := eps.Keys()[0]
	ep, _ := eps.Get(cid)
	n := b.def.Kind.MessagesPerUpdate
	handled := 0

	for b.State() == Running {
		msg, err := ep.Recv()
		if err != nil {
			b.logger.Infof("process %d: sender disconnected on channel %d", b.def.ID, cid)
			b.setState(Ended)
			break
		}
		b.stats.MessageHandled(b.def.ID)
		flow := cb.HandleMessage(msg)
		handled++
		if flow == types.Break {
			b.setState(Ended)
		}
		if handled%n == 0 {
			if b.State() != Running {
				break
			}
			if cb.Update() == types.Break {
				b.setState(Ended)
			}
		}
	}
}

// runIsochronous runs an absolute, catch-up-allowed schedule: t_next only
// ever advances by tick_ms, never resets to now.
func (b *Base) runIsochronous(cb Callbacks) {
	eps := b.takeEndpoints()
	defer func() { b.putEndpoints(eps) }()
	st := newPollState(eps)

	spec := b.def.Kind
	tick := time.Duration(spec.TickMs) * time.Millisecond
	tNext := time.Now()
	ticksSinceUpdate := 0

	for b.State() == Running {
		now := time.Now()
		if tNext.Before(now) {
			b.pollPass(cb, st)
			tNext = tNext.Add(tick)
			b.stats.TickObserved(b.def.ID, "Isochronous")
			ticksSinceUpdate++
			if ticksSinceUpdate >= spec.TicksPerUpdate {
				ticksSinceUpdate = 0
				if b.State() == Running && cb.Update() == types.Break {
					b.setState(Ended)
				}
			}
		} else {
			b.logger.Debugf("process %d: tick too early", b.def.ID)
		}

		if b.State() != Running {
			break
		}
		now = time.Now()
		if now.Before(tNext) {
			time.Sleep(tNext.Sub(now) + time.Millisecond)
		} else {
			b.logger.Warnf("process %d: late tick", b.def.ID)
			b.stats.LateTickObserved(b.def.ID, "Isochronous")
		}
	}
}

// runMesochronous runs a rate-limited schedule: t_next resets to now after
// every tick, so lateness never accumulates and catch-up never happens.
func (b *Base) runMesochronous(cb Callbacks) {
	eps := b.takeEndpoints()
	defer func() { b.putEndpoints(eps) }()
	st := newPollState(eps)

	spec := b.def.Kind
	tick := time.Duration(spec.TickMs) * time.Millisecond
	tNext := time.Now().Add(tick)
	ticksSinceUpdate := 0

	for b.State() == Running {
		now := time.Now()
		if tNext.Before(now) {
			b.pollPass(cb, st)
			tNext = time.Now().Add(tick)
			b.stats.TickObserved(b.def.ID, "Mesochronous")
			ticksSinceUpdate++
			if ticksSinceUpdate >= spec.TicksPerUpdate {
				ticksSinceUpdate = 0
				if b.State() == Running && cb.Update() == types.Break {
					b.setState(Ended)
				}
			}
		} else {
			b.logger.Debugf("process %d: tick too early", b.def.ID)
		}

		if b.State() != Running {
			break
		}
		now = time.Now()
		if now.Before(tNext) {
			time.Sleep(tNext.Sub(now) + time.Millisecond)
		} else {
			b.logger.Warnf("process %d: late tick", b.def.ID)
			b.stats.LateTickObserved(b.def.ID, "Mesochronous")
		}
	}
}

// runAnisochronous does one poll pass then Update, untimed, every loop.
func (b *Base) runAnisochronous(cb Callbacks) {
	eps := b.takeEndpoints()
	defer func() { b.putEndpoints(eps) }()
	st := newPollState(eps)

	for b.State() == Running {
		b.pollPass(cb, st)
		if b.State() != Running {
			break
		}
		if cb.Update() == types.Break {
			b.setState(Ended)
		}
	}
}

// pollState is the per-worker parallel bitmap of still-open endpoint
// channels, persisted across tick/iteration boundaries for the life of the
// Iso/Meso/Aniso loop, per spec §4.2's poll pass.
type pollState struct {
	cids    []types.CID
	eps     vecmap.Map[types.CID, channel.Endpoint]
	open    map[types.CID]bool
	numOpen int
}

func newPollState(eps vecmap.Map[types.CID, channel.Endpoint]) *pollState {
	cids := eps.Keys()
	open := make(map[types.CID]bool, len(cids))
	for _, cid := range cids {
		open[cid] = true
	}
	return &pollState{cids: cids, eps: eps, open: open, numOpen: len(cids)}
}

// pollPass visits every still-open endpoint in ascending CID order, calling
// TryRecv until Empty or Disconnected.
func (b *Base) pollPass(cb Callbacks, st *pollState) {
	for _, cid := range st.cids {
		if !st.open[cid] {
			continue
		}
		ep, _ := st.eps.Get(cid)
		for {
			msg, err := ep.TryRecv()
			if err == backend.ErrEmpty {
				break
			}
			if err != nil {
				b.logger.Infof("process %d: sender disconnected on channel %d", b.def.ID, cid)
				st.open[cid] = false
				st.numOpen--
				break
			}
			b.stats.MessageHandled(b.def.ID)
			if cb.HandleMessage(msg) == types.Break {
				st.open[cid] = false
				st.numOpen--
				break
			}
		}
		if st.numOpen == 0 {
			b.setState(Ended)
			return
		}
	}
}

// shutdown runs after terminate: drops the sourcepoint map (triggering
// disconnect on peers), closes and drains every endpoint, logs one warning
// with the total number of drained (unhandled) messages and counts each in
// the metrics, then posts the result.
func (b *Base) shutdown(cb Callbacks) {
	b.sourcepoints.Each(func(_ types.CID, sp channel.Sourcepoint) {
		sp.Close()
	})

	eps := b.takeEndpoints()
	unhandled := 0
	eps.Each(func(cid types.CID, ep channel.Endpoint) {
		ep.Close()
		for {
			_, err := ep.TryRecv()
			if err != nil {
				break
			}
			unhandled++
		}
	})
	if unhandled > 0 {
		b.logger.Warnf("process %d: drained %d unhandled message(s) at shutdown", b.def.ID, unhandled)
		for i := 0; i < unhandled; i++ {
			b.stats.UnhandledMessageDrained(b.def.ID)
		}
	}
	b.putEndpoints(eps)

	result := cb.Result()
	b.handle.ResultTx <- result
}
