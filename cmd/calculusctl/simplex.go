package main

import (
	"unicode"

	"github.com/spf13/cobra"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/dot"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// pulser is the simplex demo's Isochronous producer: every sendEvery ticks
// it emits a line, quitting after quitAt ticks. Mirrors spec §8 scenario 1.
type pulser struct {
	*process.Base
	cid       types.CID
	sendEvery int
	quitAt    int
	ticks     int
}

func (p *pulser) Initialize() types.ControlFlow { return types.Continue }
func (p *pulser) Terminate()                    {}
func (p *pulser) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (p *pulser) Update() types.ControlFlow {
	p.ticks++
	if p.ticks%p.sendEvery == 0 {
		_ = p.Send(p.cid, line{Value: "z"})
	}
	if p.ticks == p.quitAt {
		_ = p.Send(p.cid, line{Quit: true})
		return types.Break
	}
	return types.Continue
}

func (p *pulser) Result() types.Result { return nil }

// upshifter uppercases every line it receives and logs it.
type upshifter struct {
	*process.Base
	log func(format string, args ...any)
}

func (u *upshifter) Initialize() types.ControlFlow { return types.Continue }
func (u *upshifter) Terminate()                    {}

func (u *upshifter) HandleMessage(msg types.Message) types.ControlFlow {
	l, ok := msg.(line)
	if !ok {
		return types.Continue
	}
	if l.Quit {
		return types.Break
	}
	upper := make([]rune, 0, len(l.Value))
	for _, r := range l.Value {
		upper = append(upper, unicode.ToUpper(r))
	}
	u.log("%s", string(upper))
	return types.Continue
}

func (u *upshifter) Update() types.ControlFlow { return types.Continue }
func (u *upshifter) Result() types.Result      { return nil }

func simplexSessionDef(tickMs int) session.Def {
	const (
		producerPID types.PID = 0
		consumerPID types.PID = 1
		lineCID     types.CID = 0
	)
	return session.Def{
		ChannelDefs: []channel.Def{
			{ID: lineCID, Kind: channel.Simplex, Producers: []types.PID{producerPID}, Consumers: []types.PID{consumerPID}, MID: unionLine},
		},
		ProcessDefs: []process.Def{
			{ID: producerPID, Kind: mustIso(tickMs, 1), Sourcepoints: []types.CID{lineCID}},
			{ID: consumerPID, Kind: mustAsync(1), Endpoints: []types.CID{lineCID}},
		},
	}
}

func newSimplexCmd(rt func() *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "simplex",
		Short: "One Isochronous producer feeding one Asynchronous consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := rt()
			def := simplexSessionDef(r.config.TickMs)
			if r.dotOnly {
				cmd.Println(dot.Session(def))
				return nil
			}

			const lineCID types.CID = 0
			validated, err := session.Define(def)
			if err != nil {
				return err
			}
			sess := session.New(validated, map[types.PID]session.Factory{
				0: func(base *process.Base) process.Callbacks {
					return &pulser{Base: base, cid: lineCID, sendEvery: 17, quitAt: 300}
				},
				1: func(base *process.Base) process.Callbacks { return &upshifter{Base: base, log: r.logger.Infof} },
			}, r.logger, r.stats)
			if _, err := sess.Run(); err != nil {
				return err
			}
			sess.Finish()
			return nil
		},
	}
}
