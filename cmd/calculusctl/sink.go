package main

import (
	"github.com/spf13/cobra"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/dot"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// barSender sends bar every tick for sendCount ticks then stops, grounded
// on spec §8 scenario 2.
type barSender struct {
	*process.Base
	cid       types.CID
	sendCount int
	ticks     int
}

func (b *barSender) Initialize() types.ControlFlow { return types.Continue }
func (b *barSender) Terminate()                    {}
func (b *barSender) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (b *barSender) Update() types.ControlFlow {
	b.ticks++
	if b.ticks > b.sendCount {
		return types.Break
	}
	_ = b.Send(b.cid, bar{})
	return types.Continue
}

func (b *barSender) Result() types.Result { return nil }

// barLogger counts and logs Sink arrivals, ending when both producers
// disconnect.
type barLogger struct {
	*process.Base
	log   func(format string, args ...any)
	count int
}

func (c *barLogger) Initialize() types.ControlFlow { return types.Continue }
func (c *barLogger) Terminate()                    { c.log("received %d bar(s) total", c.count) }

func (c *barLogger) HandleMessage(msg types.Message) types.ControlFlow {
	if _, ok := msg.(bar); ok {
		c.count++
	}
	return types.Continue
}

func (c *barLogger) Update() types.ControlFlow { return types.Continue }
func (c *barLogger) Result() types.Result      { return c.count }

func sinkSessionDef() session.Def {
	const (
		producerAPID types.PID = 0
		producerBPID types.PID = 1
		consumerPID  types.PID = 2
		sinkCID      types.CID = 0
	)
	return session.Def{
		ChannelDefs: []channel.Def{
			{ID: sinkCID, Kind: channel.Sink, Producers: []types.PID{producerAPID, producerBPID}, Consumers: []types.PID{consumerPID}, MID: unionBar},
		},
		ProcessDefs: []process.Def{
			{ID: producerAPID, Kind: mustIso(20, 1), Sourcepoints: []types.CID{sinkCID}},
			{ID: producerBPID, Kind: mustIso(20, 1), Sourcepoints: []types.CID{sinkCID}},
			{ID: consumerPID, Kind: mustAsync(1), Endpoints: []types.CID{sinkCID}},
		},
	}
}

func newSinkDisconnectCmd(rt func() *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sink-disconnect",
		Short: "Two producers feeding one Sink consumer, ending on mutual disconnect",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := rt()
			def := sinkSessionDef()
			sendCount := r.config.SendCount
			if r.dotOnly {
				cmd.Println(dot.Session(def))
				return nil
			}

			const sinkCID types.CID = 0
			validated, err := session.Define(def)
			if err != nil {
				return err
			}
			sess := session.New(validated, map[types.PID]session.Factory{
				0: func(base *process.Base) process.Callbacks { return &barSender{Base: base, cid: sinkCID, sendCount: sendCount} },
				1: func(base *process.Base) process.Callbacks { return &barSender{Base: base, cid: sinkCID, sendCount: sendCount + 25} },
				2: func(base *process.Base) process.Callbacks { return &barLogger{Base: base, log: r.logger.Infof} },
			}, r.logger, r.stats)
			if _, err := sess.Run(); err != nil {
				return err
			}
			sess.Finish()
			return nil
		},
	}
}
