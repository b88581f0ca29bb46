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

// barProducer sends Bar every tick for sendCount ticks, then breaks its own
// loop without sending any further message — shutdown closes its
// sourcepoint, decrementing the Sink queue's sender count.
type barProducer struct {
	*process.Base
	cid       types.CID
	sendCount int
	ticks     int
}

func (p *barProducer) Initialize() types.ControlFlow { return types.Continue }
func (p *barProducer) Terminate()                    {}
func (p *barProducer) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (p *barProducer) Update() types.ControlFlow {
	p.ticks++
	if p.ticks > p.sendCount {
		return types.Break
	}
	_ = p.Send(p.cid, Bar{})
	return types.Continue
}

func (p *barProducer) Result() types.Result { return nil }

// barCounter is an Asynchronous consumer on a Sink channel: it counts every
// Bar received and naturally terminates when Recv reports every producer
// disconnected (spec §8 scenario 2).
type barCounter struct {
	*process.Base
	count int
}

func (c *barCounter) Initialize() types.ControlFlow { return types.Continue }
func (c *barCounter) Terminate()                    {}

func (c *barCounter) HandleMessage(msg types.Message) types.ControlFlow {
	if _, ok := msg.(Bar); ok {
		c.count++
	}
	return types.Continue
}

func (c *barCounter) Update() types.ControlFlow { return types.Continue }
func (c *barCounter) Result() types.Result      { return c.count }

// TestSinkDisconnect implements spec §8 scenario 2: two Isochronous
// producers feed one Sink channel into a single Asynchronous consumer,
// which must observe both producers' messages and terminate cleanly once
// both disconnect, without ever seeing an explicit Quit.
func TestSinkDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	const (
		producerAPID types.PID = 0
		producerBPID types.PID = 1
		consumerPID  types.PID = 2
		sinkCID      types.CID = 0
	)

	producerKind, err := process.NewIsochronous(2, 1)
	require.NoError(t, err)
	consumerKind, err := process.NewAsynchronous(1)
	require.NoError(t, err)

	def := session.Def{
		ChannelDefs: []channel.Def{
			{
				ID:        sinkCID,
				Kind:      channel.Sink,
				Producers: []types.PID{producerAPID, producerBPID},
				Consumers: []types.PID{consumerPID},
				MID:       UnionBar,
			},
		},
		ProcessDefs: []process.Def{
			{ID: producerAPID, Kind: producerKind, Sourcepoints: []types.CID{sinkCID}},
			{ID: producerBPID, Kind: producerKind, Sourcepoints: []types.CID{sinkCID}},
			{ID: consumerPID, Kind: consumerKind, Endpoints: []types.CID{sinkCID}},
		},
	}

	validated, err := session.Define(def)
	require.NoError(t, err)

	factories := map[types.PID]session.Factory{
		producerAPID: func(base *process.Base) process.Callbacks {
			return &barProducer{Base: base, cid: sinkCID, sendCount: 5}
		},
		producerBPID: func(base *process.Base) process.Callbacks {
			return &barProducer{Base: base, cid: sinkCID, sendCount: 7}
		},
		consumerPID: func(base *process.Base) process.Callbacks {
			return &barCounter{Base: base}
		},
	}

	sess := session.New(validated, factories, nil, nil)
	results, err := sess.Run()
	require.NoError(t, err)
	sess.Finish()

	got, ok := results.Get(consumerPID)
	require.True(t, ok)
	require.Equal(t, 12, got)
}
