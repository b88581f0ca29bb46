package scenarios

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/session"
	"github.com/jabolina/calculus/types"
)

// lineReader is an Isochronous worker that plays back a fixed script of
// lines (standing in for interactive stdin, per spec §8 scenario 6) to the
// echoer, and collects every reply it polls off its own endpoint.
type lineReader struct {
	*process.Base
	lineCID  types.CID
	script   []string
	next     int
	replies  []string
}

func (r *lineReader) Initialize() types.ControlFlow { return types.Continue }
func (r *lineReader) Terminate()                    {}

func (r *lineReader) HandleMessage(msg types.Message) types.ControlFlow {
	if m, ok := msg.(StringMsg); ok && m.Reply {
		r.replies = append(r.replies, m.Value)
	}
	return types.Continue
}

func (r *lineReader) Update() types.ControlFlow {
	switch {
	case r.next < len(r.script):
		_ = r.Send(r.lineCID, StringMsg{Value: r.script[r.next]})
		r.next++
		return types.Continue
	case r.next == len(r.script):
		// one idle tick so the next pollPass can drain the final reply
		// before Quit is sent, avoiding a race against the echoer.
		r.next++
		return types.Continue
	default:
		_ = r.Send(r.lineCID, QuitString{})
		return types.Break
	}
}

func (r *lineReader) Result() types.Result { return strings.Join(r.replies, ",") }

// echoer is an Asynchronous worker that uppercases every line it receives
// and sends the reply back, stopping on QuitString.
type echoer struct {
	*process.Base
	replyCID types.CID
}

func (e *echoer) Initialize() types.ControlFlow { return types.Continue }
func (e *echoer) Terminate()                    {}

func (e *echoer) HandleMessage(msg types.Message) types.ControlFlow {
	switch m := msg.(type) {
	case StringMsg:
		_ = e.Send(e.replyCID, StringMsg{Value: strings.ToUpper(m.Value), Reply: true})
		return types.Continue
	case QuitString:
		return types.Break
	default:
		return types.Continue
	}
}

func (e *echoer) Update() types.ControlFlow { return types.Continue }
func (e *echoer) Result() types.Result      { return nil }

// TestInteractiveEcho implements spec §8 scenario 6: a reader and an echoer
// exchange lines over two Simplex channels, the reader collecting every
// uppercased reply before the echoer disconnects on Quit.
func TestInteractiveEcho(t *testing.T) {
	defer goleak.VerifyNone(t)

	const (
		readerPID types.PID = 0
		echoerPID types.PID = 1
		lineCID   types.CID = 0
		replyCID  types.CID = 1
	)

	readerKind, err := process.NewIsochronous(2, 1)
	require.NoError(t, err)
	echoerKind, err := process.NewAsynchronous(1)
	require.NoError(t, err)

	def := session.Def{
		ChannelDefs: []channel.Def{
			{ID: lineCID, Kind: channel.Simplex, Producers: []types.PID{readerPID}, Consumers: []types.PID{echoerPID}, MID: UnionStringQuit},
			{ID: replyCID, Kind: channel.Simplex, Producers: []types.PID{echoerPID}, Consumers: []types.PID{readerPID}, MID: UnionString},
		},
		ProcessDefs: []process.Def{
			{ID: readerPID, Kind: readerKind, Sourcepoints: []types.CID{lineCID}, Endpoints: []types.CID{replyCID}},
			{ID: echoerPID, Kind: echoerKind, Sourcepoints: []types.CID{replyCID}, Endpoints: []types.CID{lineCID}},
		},
	}

	validated, err := session.Define(def)
	require.NoError(t, err)

	script := []string{"hello", "world", "go"}
	factories := map[types.PID]session.Factory{
		readerPID: func(base *process.Base) process.Callbacks {
			return &lineReader{Base: base, lineCID: lineCID, script: script}
		},
		echoerPID: func(base *process.Base) process.Callbacks {
			return &echoer{Base: base, replyCID: replyCID}
		},
	}

	sess := session.New(validated, factories, nil, nil)
	results, err := sess.Run()
	require.NoError(t, err)
	sess.Finish()

	got, ok := results.Get(readerPID)
	require.True(t, ok)
	require.Equal(t, "HELLO,WORLD,GO", got)
}
