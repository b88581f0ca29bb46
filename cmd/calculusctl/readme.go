package main

import (
	"github.com/spf13/cobra"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/dot"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// greeter is a one-shot Anisochronous producer: send a single line, then
// quit. Mirrors examples/readme.rs's smallest possible program.
type greeter struct {
	*process.Base
	cid  types.CID
	sent bool
}

func (g *greeter) Initialize() types.ControlFlow { return types.Continue }
func (g *greeter) Terminate()                    {}
func (g *greeter) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (g *greeter) Update() types.ControlFlow {
	if g.sent {
		_ = g.Send(g.cid, line{Quit: true})
		return types.Break
	}
	_ = g.Send(g.cid, line{Value: "hello from calculus"})
	g.sent = true
	return types.Continue
}

func (g *greeter) Result() types.Result { return nil }

// printer is an Asynchronous consumer that prints every line it receives.
type printer struct {
	*process.Base
	log func(format string, args ...any)
}

func (p *printer) Initialize() types.ControlFlow { return types.Continue }
func (p *printer) Terminate()                    {}

func (p *printer) HandleMessage(msg types.Message) types.ControlFlow {
	l, ok := msg.(line)
	if !ok {
		return types.Continue
	}
	if l.Quit {
		return types.Break
	}
	p.log("%s", l.Value)
	return types.Continue
}

func (p *printer) Update() types.ControlFlow { return types.Continue }
func (p *printer) Result() types.Result      { return nil }

func readmeSessionDef() session.Def {
	const (
		greeterPID types.PID = 0
		printerPID types.PID = 1
		lineCID    types.CID = 0
	)
	return session.Def{
		ChannelDefs: []channel.Def{
			{ID: lineCID, Kind: channel.Simplex, Producers: []types.PID{greeterPID}, Consumers: []types.PID{printerPID}, MID: unionLine},
		},
		ProcessDefs: []process.Def{
			{ID: greeterPID, Kind: process.NewAnisochronous(), Sourcepoints: []types.CID{lineCID}},
			{ID: printerPID, Kind: mustAsync(1), Endpoints: []types.CID{lineCID}},
		},
	}
}

func newReadmeCmd(rt func() *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "readme",
		Short: "Smallest possible two-process Simplex program",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := rt()
			def := readmeSessionDef()
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
				0: func(base *process.Base) process.Callbacks { return &greeter{Base: base, cid: lineCID} },
				1: func(base *process.Base) process.Callbacks { return &printer{Base: base, log: r.logger.Infof} },
			}, r.logger, r.stats)
			if _, err := sess.Run(); err != nil {
				return err
			}
			sess.Finish()
			return nil
		},
	}
}

// mustAsync is a tiny helper for demo session wiring where the arguments
// are compile-time constants that can never fail NewAsynchronous's
// validation.
func mustAsync(messagesPerUpdate int) process.KindSpec {
	k, err := process.NewAsynchronous(messagesPerUpdate)
	if err != nil {
		panic(err)
	}
	return k
}

func mustIso(tickMs, ticksPerUpdate int) process.KindSpec {
	k, err := process.NewIsochronous(tickMs, ticksPerUpdate)
	if err != nil {
		panic(err)
	}
	return k
}
