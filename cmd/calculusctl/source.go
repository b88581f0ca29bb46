package main

import (
	"github.com/spf13/cobra"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/dot"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// broadcaster addresses both consumers every tick via send_to, logging the
// first send_to failure against each, grounded on spec §8 scenario 3.
type broadcaster struct {
	*process.Base
	cid           types.CID
	targetA       types.PID
	targetB       types.PID
	log           func(format string, args ...any)
	maxAttempts   int
	attempts      int
	aDisconnected bool
	bDisconnected bool
}

func (p *broadcaster) Initialize() types.ControlFlow { return types.Continue }
func (p *broadcaster) Terminate()                    {}
func (p *broadcaster) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (p *broadcaster) Update() types.ControlFlow {
	p.attempts++
	if err := p.SendTo(p.cid, p.targetA, integer{Value: p.attempts}); err != nil && !p.aDisconnected {
		p.aDisconnected = true
		p.log("consumer %d disconnected after %d attempt(s)", p.targetA, p.attempts)
	}
	if err := p.SendTo(p.cid, p.targetB, integer{Value: p.attempts}); err != nil && !p.bDisconnected {
		p.bDisconnected = true
		p.log("consumer %d disconnected after %d attempt(s)", p.targetB, p.attempts)
	}
	if (p.aDisconnected && p.bDisconnected) || p.attempts >= p.maxAttempts {
		return types.Break
	}
	return types.Continue
}

func (p *broadcaster) Result() types.Result { return nil }

// vanisher breaks out of Initialize without ever taking its endpoint.
type vanisher struct {
	*process.Base
}

func (v *vanisher) Initialize() types.ControlFlow                 { return types.Break }
func (v *vanisher) Terminate()                                    {}
func (v *vanisher) HandleMessage(types.Message) types.ControlFlow { return types.Continue }
func (v *vanisher) Update() types.ControlFlow                     { return types.Continue }
func (v *vanisher) Result() types.Result                          { return nil }

func sourceSessionDef() session.Def {
	const (
		producerPID  types.PID = 0
		consumerAPID types.PID = 1
		consumerBPID types.PID = 2
		fanCID       types.CID = 0
	)
	return session.Def{
		ChannelDefs: []channel.Def{
			{ID: fanCID, Kind: channel.Source, Producers: []types.PID{producerPID}, Consumers: []types.PID{consumerAPID, consumerBPID}, MID: unionInt},
		},
		ProcessDefs: []process.Def{
			{ID: producerPID, Kind: mustIso(20, 1), Sourcepoints: []types.CID{fanCID}},
			{ID: consumerAPID, Kind: mustAsync(1), Endpoints: []types.CID{fanCID}},
			{ID: consumerBPID, Kind: mustAsync(1), Endpoints: []types.CID{fanCID}},
		},
	}
}

func newSourceDisconnectCmd(rt func() *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "source-disconnect",
		Short: "One addressed producer, two consumers that disconnect immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := rt()
			def := sourceSessionDef()
			if r.dotOnly {
				cmd.Println(dot.Session(def))
				return nil
			}

			const fanCID types.CID = 0
			validated, err := session.Define(def)
			if err != nil {
				return err
			}
			sess := session.New(validated, map[types.PID]session.Factory{
				0: func(base *process.Base) process.Callbacks {
					return &broadcaster{Base: base, cid: fanCID, targetA: 1, targetB: 2, log: r.logger.Infof, maxAttempts: 50}
				},
				1: func(base *process.Base) process.Callbacks { return &vanisher{Base: base} },
				2: func(base *process.Base) process.Callbacks { return &vanisher{Base: base} },
			}, r.logger, r.stats)
			if _, err := sess.Run(); err != nil {
				return err
			}
			sess.Finish()
			return nil
		},
	}
}
