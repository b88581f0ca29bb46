package scenarios

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jabolina/calculus/internal/vecmap"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/program"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// counter is a channel-free Isochronous worker that counts its own ticks up
// to target and stops; grounded on spec §8 scenario 5's "mode A accumulates
// state" half.
type counter struct {
	*process.Base
	target int
	count  int
}

func (c *counter) Initialize() types.ControlFlow { return types.Continue }
func (c *counter) Terminate()                    {}
func (c *counter) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}

func (c *counter) Update() types.ControlFlow {
	c.count++
	if c.count >= c.target {
		return types.Break
	}
	return types.Continue
}

func (c *counter) Result() types.Result { return c.count }

// reporter is the migrated worker in mode "report": it carries the doubled
// count across the transition and reports it without ever entering its
// loop, grounded on spec §8 scenario 5's "mode B reports the carried state"
// half.
type reporter struct {
	*process.Base
	total int
}

func (r *reporter) Initialize() types.ControlFlow { return types.Break }
func (r *reporter) Terminate()                    {}
func (r *reporter) HandleMessage(types.Message) types.ControlFlow {
	return types.Continue
}
func (r *reporter) Update() types.ControlFlow { return types.Continue }
func (r *reporter) Result() types.Result      { return r.total }

// TestTransitionWithOwnership implements spec §8 scenario 5: a non-main-
// thread worker's goroutine survives a mode transition, its user state
// carried into a freshly constructed worker in the target mode by a
// Transfer closure.
func TestTransitionWithOwnership(t *testing.T) {
	defer goleak.VerifyNone(t)

	const workerPID types.PID = 0
	const target = 10

	collectKind, err := process.NewIsochronous(2, 1)
	require.NoError(t, err)

	def := program.Def{
		Initial: "collect",
		Modes: map[string]program.Mode{
			"collect": {
				Name: "collect",
				Session: session.Def{
					ProcessDefs: []process.Def{{ID: workerPID, Kind: collectKind}},
				},
				Factories: map[types.PID]session.Factory{
					workerPID: func(base *process.Base) process.Callbacks {
						return &counter{Base: base, target: target}
					},
				},
				Arbiter: func(results vecmap.Map[types.PID, types.Result]) (string, bool) {
					return "advance", true
				},
			},
			"report": {
				Name: "report",
				Session: session.Def{
					ProcessDefs: []process.Def{{ID: workerPID, Kind: process.NewAnisochronous()}},
				},
				Factories: map[types.PID]session.Factory{},
				Arbiter: func(results vecmap.Map[types.PID, types.Result]) (string, bool) {
					return "", false
				},
			},
		},
		Transitions: map[string]program.Transition{
			"advance": {
				Name:       "advance",
				SourceMode: "collect",
				TargetMode: "report",
				Migrations: []program.Migration{
					{
						SourcePID: workerPID,
						TargetPID: workerPID,
						Transfer: func(prev process.Callbacks, next *process.Base) process.Callbacks {
							c := prev.(*counter)
							return &reporter{Base: next, total: c.count * 2}
						},
					},
				},
			},
		},
	}

	results, err := program.New(def, nil, nil).Run()
	require.NoError(t, err)

	got, ok := results.Get(workerPID)
	require.True(t, ok)
	require.Equal(t, target*2, got)
}
