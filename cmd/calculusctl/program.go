package main

import (
	"github.com/spf13/cobra"

	"github.com/jabolina/calculus/dot"
	"github.com/jabolina/calculus/internal/vecmap"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/program"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// tallyWorker is the "collect" mode's Isochronous worker: a channel-free counter
// that accumulates ticks up to target, grounded on spec §8 scenario 5.
type tallyWorker struct {
	*process.Base
	target int
	count  int
}

func (t *tallyWorker) Initialize() types.ControlFlow { return types.Continue }
func (t *tallyWorker) Terminate()                    {}
func (t *tallyWorker) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (t *tallyWorker) Update() types.ControlFlow {
	t.count++
	if t.count >= t.target {
		return types.Break
	}
	return types.Continue
}

func (t *tallyWorker) Result() types.Result { return t.count }

// reportWorker is "report" mode's worker: it carries the doubled count
// across the transition and reports it immediately.
type reportWorker struct {
	*process.Base
	total int
	log   func(format string, args ...any)
}

func (r *reportWorker) Initialize() types.ControlFlow {
	r.log("carried total: %d", r.total)
	return types.Break
}
func (r *reportWorker) Terminate() {}
func (r *reportWorker) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}
func (r *reportWorker) Update() types.ControlFlow { return types.Continue }
func (r *reportWorker) Result() types.Result      { return r.total }

func programDef(target int, log func(format string, args ...any)) program.Def {
	const workerPID types.PID = 0
	return program.Def{
		Initial: "collect",
		Modes: map[string]program.Mode{
			"collect": {
				Name:    "collect",
				Session: session.Def{ProcessDefs: []process.Def{{ID: workerPID, Kind: mustIso(5, 1)}}},
				Factories: map[types.PID]session.Factory{
					workerPID: func(base *process.Base) process.Callbacks { return &tallyWorker{Base: base, target: target} },
				},
				Arbiter: func(results vecmap.Map[types.PID, types.Result]) (string, bool) { return "advance", true },
			},
			"report": {
				Name:      "report",
				Session:   session.Def{ProcessDefs: []process.Def{{ID: workerPID, Kind: process.NewAnisochronous()}}},
				Factories: map[types.PID]session.Factory{},
				Arbiter:   func(results vecmap.Map[types.PID, types.Result]) (string, bool) { return "", false },
			},
		},
		Transitions: map[string]program.Transition{
			"advance": {
				Name: "advance", SourceMode: "collect", TargetMode: "report",
				Migrations: []program.Migration{
					{
						SourcePID: workerPID, TargetPID: workerPID,
						Transfer: func(prev process.Callbacks, next *process.Base) process.Callbacks {
							c := prev.(*tallyWorker)
							return &reportWorker{Base: next, total: c.count * 2, log: log}
						},
					},
				},
			},
		},
	}
}

func newProgramCmd(rt func() *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "program",
		Short: "Mode transition carrying a live worker's state across sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := rt()
			def := programDef(r.config.TargetPerPID, r.logger.Infof)
			if r.dotOnly {
				cmd.Println(dot.Program(def))
				return nil
			}
			_, err := program.New(def, r.logger, r.stats).Run()
			return err
		},
	}
}
