package scenarios

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// roundRobinProducer is an Anisochronous worker (untimed poll+update loop)
// that addresses perTarget IntMsg values to each consumer in turn via
// send_to, then broadcasts QuitInt to every target and stops.
type roundRobinProducer struct {
	*process.Base
	cid       types.CID
	targets   []types.PID
	perTarget int
	sent      map[types.PID]int
	next      int
}

func (p *roundRobinProducer) Initialize() types.ControlFlow {
	p.sent = make(map[types.PID]int, len(p.targets))
	return types.Continue
}

func (p *roundRobinProducer) Terminate() {}
func (p *roundRobinProducer) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (p *roundRobinProducer) Update() types.ControlFlow {
	target := p.targets[p.next%len(p.targets)]
	p.next++
	if p.sent[target] < p.perTarget {
		p.sent[target]++
		_ = p.SendTo(p.cid, target, IntMsg{Value: p.sent[target]})
		return types.Continue
	}

	total := 0
	for _, n := range p.sent {
		total += n
	}
	if total < p.perTarget*len(p.targets) {
		return types.Continue
	}

	for _, t := range p.targets {
		_ = p.SendTo(p.cid, t, QuitInt{})
	}
	return types.Break
}

func (p *roundRobinProducer) Result() types.Result { return nil }

// tally is an Asynchronous consumer summing every IntMsg value it receives
// on its addressed endpoint, stopping on QuitInt.
type tally struct {
	*process.Base
	sum   int
	count int
}

func (c *tally) Initialize() types.ControlFlow { return types.Continue }
func (c *tally) Terminate()                    {}

func (c *tally) HandleMessage(msg types.Message) types.ControlFlow {
	switch m := msg.(type) {
	case IntMsg:
		c.sum += m.Value
		c.count++
		return types.Continue
	case QuitInt:
		return types.Break
	default:
		return types.Continue
	}
}

func (c *tally) Update() types.ControlFlow { return types.Continue }
func (c *tally) Result() types.Result      { return c.count }

// TestAddressedFanOut implements spec §8 scenario 4: one producer addresses
// a fixed number of messages to each of three consumers over a Source
// channel; every consumer must receive exactly the messages addressed to
// it, none destined for a sibling.
func TestAddressedFanOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	const (
		producerPID types.PID = 0
		consumer1   types.PID = 1
		consumer2   types.PID = 2
		consumer3   types.PID = 3
		fanCID      types.CID = 0
		perTarget             = 4
	)

	consumerKind, err := process.NewAsynchronous(1)
	require.NoError(t, err)

	def := session.Def{
		ChannelDefs: []channel.Def{
			{
				ID:        fanCID,
				Kind:      channel.Source,
				Producers: []types.PID{producerPID},
				Consumers: []types.PID{consumer1, consumer2, consumer3},
				MID:       UnionIntQuit,
			},
		},
		ProcessDefs: []process.Def{
			{ID: producerPID, Kind: process.NewAnisochronous(), Sourcepoints: []types.CID{fanCID}},
			{ID: consumer1, Kind: consumerKind, Endpoints: []types.CID{fanCID}},
			{ID: consumer2, Kind: consumerKind, Endpoints: []types.CID{fanCID}},
			{ID: consumer3, Kind: consumerKind, Endpoints: []types.CID{fanCID}},
		},
	}

	validated, err := session.Define(def)
	require.NoError(t, err)

	factories := map[types.PID]session.Factory{
		producerPID: func(base *process.Base) process.Callbacks {
			return &roundRobinProducer{Base: base, cid: fanCID, targets: []types.PID{consumer1, consumer2, consumer3}, perTarget: perTarget}
		},
		consumer1: func(base *process.Base) process.Callbacks { return &tally{Base: base} },
		consumer2: func(base *process.Base) process.Callbacks { return &tally{Base: base} },
		consumer3: func(base *process.Base) process.Callbacks { return &tally{Base: base} },
	}

	sess := session.New(validated, factories, nil, nil)
	results, err := sess.Run()
	require.NoError(t, err)
	sess.Finish()

	for _, pid := range []types.PID{consumer1, consumer2, consumer3} {
		got, ok := results.Get(pid)
		require.True(t, ok)
		require.Equal(t, perTarget, got)
	}
}
