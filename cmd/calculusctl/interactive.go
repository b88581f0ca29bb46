package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/dot"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// stdinReader is the interactive demo's main-thread worker: it blocks on
// real stdin inside Update, sending each line to the echoer and printing
// whatever reply it polls off its own endpoint. Running on the main thread
// (spec §4.2's mandatory single main-thread worker) means the blocking
// stdin read never competes with a spawned goroutine for the terminal.
type stdinReader struct {
	*process.Base
	lineCID  types.CID
	scanner  *bufio.Scanner
	log      func(format string, args ...any)
	quitting bool
}

func (r *stdinReader) Initialize() types.ControlFlow { return types.Continue }
func (r *stdinReader) Terminate()                    {}

func (r *stdinReader) HandleMessage(msg types.Message) types.ControlFlow {
	if l, ok := msg.(line); ok && !l.Quit {
		r.log("< %s", l.Value)
	}
	return types.Continue
}

func (r *stdinReader) Update() types.ControlFlow {
	if !r.scanner.Scan() {
		_ = r.Send(r.lineCID, line{Quit: true})
		return types.Break
	}
	text := strings.TrimSpace(r.scanner.Text())
	if text == "quit" {
		_ = r.Send(r.lineCID, line{Quit: true})
		return types.Break
	}
	_ = r.Send(r.lineCID, line{Value: text})
	return types.Continue
}

func (r *stdinReader) Result() types.Result { return nil }

// echoServer uppercases every line it receives and replies.
type echoServer struct {
	*process.Base
	replyCID types.CID
}

func (e *echoServer) Initialize() types.ControlFlow { return types.Continue }
func (e *echoServer) Terminate()                    {}

func (e *echoServer) HandleMessage(msg types.Message) types.ControlFlow {
	l, ok := msg.(line)
	if !ok {
		return types.Continue
	}
	if l.Quit {
		return types.Break
	}
	_ = e.Send(e.replyCID, line{Value: strings.ToUpper(l.Value)})
	return types.Continue
}

func (e *echoServer) Update() types.ControlFlow { return types.Continue }
func (e *echoServer) Result() types.Result      { return nil }

func interactiveSessionDef() session.Def {
	const (
		readerPID types.PID = 0
		echoerPID types.PID = 1
		lineCID   types.CID = 0
		replyCID  types.CID = 1
	)
	mainThread := readerPID
	return session.Def{
		ChannelDefs: []channel.Def{
			{ID: lineCID, Kind: channel.Simplex, Producers: []types.PID{readerPID}, Consumers: []types.PID{echoerPID}, MID: unionLine},
			{ID: replyCID, Kind: channel.Simplex, Producers: []types.PID{echoerPID}, Consumers: []types.PID{readerPID}, MID: unionLine},
		},
		ProcessDefs: []process.Def{
			{ID: readerPID, Kind: process.NewAnisochronous(), Sourcepoints: []types.CID{lineCID}, Endpoints: []types.CID{replyCID}},
			{ID: echoerPID, Kind: mustAsync(1), Sourcepoints: []types.CID{replyCID}, Endpoints: []types.CID{lineCID}},
		},
		MainThreadPID: &mainThread,
	}
}

func newInteractiveCmd(rt func() *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Echo stdin lines back uppercased until \"quit\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := rt()
			def := interactiveSessionDef()
			if r.dotOnly {
				cmd.Println(dot.Session(def))
				return nil
			}

			const (
				lineCID  types.CID = 0
				replyCID types.CID = 1
			)
			validated, err := session.Define(def)
			if err != nil {
				return err
			}
			sess := session.New(validated, map[types.PID]session.Factory{
				0: func(base *process.Base) process.Callbacks {
					return &stdinReader{Base: base, lineCID: lineCID, scanner: bufio.NewScanner(os.Stdin), log: r.logger.Infof}
				},
				1: func(base *process.Base) process.Callbacks { return &echoServer{Base: base, replyCID: replyCID} },
			}, r.logger, r.stats)
			if _, err := sess.Run(); err != nil {
				return err
			}
			sess.Finish()
			return nil
		},
	}
}
