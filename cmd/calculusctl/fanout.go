package main

import (
	"github.com/spf13/cobra"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/dot"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// dealer addresses perTarget integers to each of targets in turn, then
// broadcasts quit and stops, grounded on spec §8 scenario 4.
type dealer struct {
	*process.Base
	cid       types.CID
	targets   []types.PID
	perTarget int
	sent      map[types.PID]int
	next      int
}

func (d *dealer) Initialize() types.ControlFlow {
	d.sent = make(map[types.PID]int, len(d.targets))
	return types.Continue
}

func (d *dealer) Terminate() {}
func (d *dealer) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (d *dealer) Update() types.ControlFlow {
	target := d.targets[d.next%len(d.targets)]
	d.next++
	if d.sent[target] < d.perTarget {
		d.sent[target]++
		_ = d.SendTo(d.cid, target, integer{Value: d.sent[target]})
		return types.Continue
	}

	total := 0
	for _, n := range d.sent {
		total += n
	}
	if total < d.perTarget*len(d.targets) {
		return types.Continue
	}
	for _, t := range d.targets {
		_ = d.SendTo(d.cid, t, integer{Quit: true})
	}
	return types.Break
}

func (d *dealer) Result() types.Result { return nil }

// collector sums every integer addressed to it and logs the final total.
type collector struct {
	*process.Base
	log func(format string, args ...any)
	sum int
}

func (c *collector) Initialize() types.ControlFlow { return types.Continue }
func (c *collector) Terminate()                    { c.log("final sum %d", c.sum) }

func (c *collector) HandleMessage(msg types.Message) types.ControlFlow {
	m, ok := msg.(integer)
	if !ok {
		return types.Continue
	}
	if m.Quit {
		return types.Break
	}
	c.sum += m.Value
	return types.Continue
}

func (c *collector) Update() types.ControlFlow { return types.Continue }
func (c *collector) Result() types.Result      { return c.sum }

func fanOutSessionDef() session.Def {
	const (
		producerPID types.PID = 0
		consumer1   types.PID = 1
		consumer2   types.PID = 2
		consumer3   types.PID = 3
		fanCID      types.CID = 0
	)
	return session.Def{
		ChannelDefs: []channel.Def{
			{ID: fanCID, Kind: channel.Source, Producers: []types.PID{producerPID}, Consumers: []types.PID{consumer1, consumer2, consumer3}, MID: unionInt},
		},
		ProcessDefs: []process.Def{
			{ID: producerPID, Kind: process.NewAnisochronous(), Sourcepoints: []types.CID{fanCID}},
			{ID: consumer1, Kind: mustAsync(1), Endpoints: []types.CID{fanCID}},
			{ID: consumer2, Kind: mustAsync(1), Endpoints: []types.CID{fanCID}},
			{ID: consumer3, Kind: mustAsync(1), Endpoints: []types.CID{fanCID}},
		},
	}
}

func newFanOutCmd(rt func() *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "fan-out",
		Short: "One addressed producer fanning values out to three consumers",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := rt()
			def := fanOutSessionDef()
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
					return &dealer{Base: base, cid: fanCID, targets: []types.PID{1, 2, 3}, perTarget: r.config.TargetPerPID}
				},
				1: func(base *process.Base) process.Callbacks { return &collector{Base: base, log: r.logger.Infof} },
				2: func(base *process.Base) process.Callbacks { return &collector{Base: base, log: r.logger.Infof} },
				3: func(base *process.Base) process.Callbacks { return &collector{Base: base, log: r.logger.Infof} },
			}, r.logger, r.stats)
			if _, err := sess.Run(); err != nil {
				return err
			}
			sess.Finish()
			return nil
		},
	}
}
