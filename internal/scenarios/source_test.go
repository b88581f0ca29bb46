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

// disconnectAttempter is an Isochronous producer on a Source channel that
// repeatedly addresses both consumers, recording once each target's send_to
// reports disconnected. It gives up after maxAttempts ticks regardless.
type disconnectAttempter struct {
	*process.Base
	cid           types.CID
	targetA       types.PID
	targetB       types.PID
	maxAttempts   int
	attempts      int
	aDisconnected bool
	bDisconnected bool
}

func (p *disconnectAttempter) Initialize() types.ControlFlow { return types.Continue }
func (p *disconnectAttempter) Terminate()                    {}
func (p *disconnectAttempter) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (p *disconnectAttempter) Update() types.ControlFlow {
	p.attempts++
	if err := p.SendTo(p.cid, p.targetA, IntMsg{Value: p.attempts}); err != nil {
		p.aDisconnected = true
	}
	if err := p.SendTo(p.cid, p.targetB, IntMsg{Value: p.attempts}); err != nil {
		p.bDisconnected = true
	}
	if (p.aDisconnected && p.bDisconnected) || p.attempts >= p.maxAttempts {
		return types.Break
	}
	return types.Continue
}

func (p *disconnectAttempter) Result() types.Result {
	return p.aDisconnected && p.bDisconnected
}

// earlyQuitter is a consumer that breaks out of Initialize without ever
// taking its endpoint, modelling spec §8 scenario 3's "immediately return
// Break" receivers.
type earlyQuitter struct {
	*process.Base
}

func (c *earlyQuitter) Initialize() types.ControlFlow                 { return types.Break }
func (c *earlyQuitter) Terminate()                                    {}
func (c *earlyQuitter) HandleMessage(types.Message) types.ControlFlow { return types.Continue }
func (c *earlyQuitter) Update() types.ControlFlow                     { return types.Continue }
func (c *earlyQuitter) Result() types.Result                          { return nil }

// TestSourceDisconnect implements spec §8 scenario 3: a single addressed
// producer on a Source channel must observe send_to failures to both of its
// consumers once they disconnect without ever receiving a message.
func TestSourceDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	const (
		producerPID types.PID = 0
		consumerAPID types.PID = 1
		consumerBPID types.PID = 2
		fanCID       types.CID = 0
	)

	producerKind, err := process.NewIsochronous(2, 1)
	require.NoError(t, err)
	consumerKind, err := process.NewAsynchronous(1)
	require.NoError(t, err)

	def := session.Def{
		ChannelDefs: []channel.Def{
			{
				ID:        fanCID,
				Kind:      channel.Source,
				Producers: []types.PID{producerPID},
				Consumers: []types.PID{consumerAPID, consumerBPID},
				MID:       UnionIntQuit,
			},
		},
		ProcessDefs: []process.Def{
			{ID: producerPID, Kind: producerKind, Sourcepoints: []types.CID{fanCID}},
			{ID: consumerAPID, Kind: consumerKind, Endpoints: []types.CID{fanCID}},
			{ID: consumerBPID, Kind: consumerKind, Endpoints: []types.CID{fanCID}},
		},
	}

	validated, err := session.Define(def)
	require.NoError(t, err)

	factories := map[types.PID]session.Factory{
		producerPID: func(base *process.Base) process.Callbacks {
			return &disconnectAttempter{Base: base, cid: fanCID, targetA: consumerAPID, targetB: consumerBPID, maxAttempts: 200}
		},
		consumerAPID: func(base *process.Base) process.Callbacks { return &earlyQuitter{Base: base} },
		consumerBPID: func(base *process.Base) process.Callbacks { return &earlyQuitter{Base: base} },
	}

	sess := session.New(validated, factories, nil, nil)
	results, err := sess.Run()
	require.NoError(t, err)
	sess.Finish()

	got, ok := results.Get(producerPID)
	require.True(t, ok)
	require.Equal(t, true, got)
}
