package scenarios

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// upperProducer is an Isochronous worker with a single sourcepoint: every
// sendEvery'th tick it sends a Char, and on quitAt it sends a Quit and
// breaks its own loop.
type upperProducer struct {
	*process.Base
	cid       types.CID
	sendEvery int
	quitAt    int
	ticks     int
}

func (p *upperProducer) Initialize() types.ControlFlow { return types.Continue }
func (p *upperProducer) Terminate()                    {}
func (p *upperProducer) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (p *upperProducer) Update() types.ControlFlow {
	p.ticks++
	if p.ticks%p.sendEvery == 0 {
		_ = p.Send(p.cid, Char{Value: 'z'})
	}
	if p.ticks == p.quitAt {
		_ = p.Send(p.cid, Quit{})
		return types.Break
	}
	return types.Continue
}

func (p *upperProducer) Result() types.Result { return nil }

// upperConsumer is an Asynchronous worker that uppercases every Char it
// receives onto a running history, stopping on Quit.
type upperConsumer struct {
	*process.Base
	history []rune
}

func (c *upperConsumer) Initialize() types.ControlFlow { return types.Continue }
func (c *upperConsumer) Terminate()                    {}

func (c *upperConsumer) HandleMessage(msg types.Message) types.ControlFlow {
	switch m := msg.(type) {
	case Char:
		c.history = append(c.history, unicode.ToUpper(m.Value))
		return types.Continue
	case Quit:
		return types.Break
	default:
		return types.Continue
	}
}

func (c *upperConsumer) Update() types.ControlFlow { return types.Continue }
func (c *upperConsumer) Result() types.Result      { return string(c.history) }

// TestSimplexPipeline implements spec §8 scenario 1: one Isochronous
// producer feeding a single Simplex channel into one Asynchronous consumer,
// which must receive every Char uppercased, in order, and terminate on
// Quit. Tick/update counts are scaled down from the spec's illustrative
// 20ms/300-update numbers so the test completes quickly; the ordering and
// termination invariants under test are unaffected by the scale.
func TestSimplexPipeline(t *testing.T) {
	defer goleak.VerifyNone(t)

	const (
		producerPID types.PID = 0
		consumerPID types.PID = 1
		lineCID     types.CID = 0
	)

	producerKind, err := process.NewIsochronous(2, 1)
	require.NoError(t, err)
	consumerKind, err := process.NewAsynchronous(1)
	require.NoError(t, err)

	def := session.Def{
		ChannelDefs: []channel.Def{
			{ID: lineCID, Kind: channel.Simplex, Producers: []types.PID{producerPID}, Consumers: []types.PID{consumerPID}, MID: UnionCharQuit},
		},
		ProcessDefs: []process.Def{
			{ID: producerPID, Kind: producerKind, Sourcepoints: []types.CID{lineCID}},
			{ID: consumerPID, Kind: consumerKind, Endpoints: []types.CID{lineCID}},
		},
	}

	validated, err := session.Define(def)
	require.NoError(t, err)

	factories := map[types.PID]session.Factory{
		producerPID: func(base *process.Base) process.Callbacks {
			return &upperProducer{Base: base, cid: lineCID, sendEvery: 3, quitAt: 30}
		},
		consumerPID: func(base *process.Base) process.Callbacks {
			return &upperConsumer{Base: base}
		},
	}

	sess := session.New(validated, factories, nil, nil)
	results, err := sess.Run()
	require.NoError(t, err)
	sess.Finish()

	got, ok := results.Get(consumerPID)
	require.True(t, ok)
	require.Equal(t, "ZZZZZZZZZZ", got)
}
