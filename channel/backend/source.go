package backend

import (
	"fmt"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/internal/queue"
	"github.com/jabolina/calculus/internal/vecmap"
	"github.com/jabolina/calculus/types"
)

// sourceSourcepoint is the lone producer's send capability on a Source
// channel: one unbounded SPSC queue per consumer, indexed by consumer PID.
// Send is undefined (no default recipient); SendTo routes to the named
// consumer's queue, matching spec §4.1's preserved asymmetry.
type sourceSourcepoint struct {
	def    channel.Def
	queues vecmap.Map[types.PID, *queue.Unbounded[types.Message]]
}

func (s *sourceSourcepoint) Send(types.Message) error {
	panic(fmt.Sprintf("channel %d: send is undefined on a Source sourcepoint, use send_to", s.def.ID))
}

func (s *sourceSourcepoint) SendTo(msg types.Message, recipient types.PID) error {
	narrow(s.def, msg)
	q, ok := s.queues.Get(recipient)
	if !ok {
		panic(fmt.Sprintf("channel %d: %d is not a declared consumer", s.def.ID, recipient))
	}
	if err := q.Send(msg); err != nil {
		return &SendError{Channel: s.def.ID, Message: msg, cause: err}
	}
	return nil
}

func (s *sourceSourcepoint) Close() {
	s.queues.Each(func(_ types.PID, q *queue.Unbounded[types.Message]) {
		q.CloseSender()
	})
}

type sourceEndpoint struct {
	def channel.Def
	q   *queue.Unbounded[types.Message]
}

func (e *sourceEndpoint) Recv() (types.Message, error) {
	msg, err := e.q.Recv()
	if err != nil {
		return nil, &RecvError{Channel: e.def.ID, cause: err}
	}
	return msg, nil
}

func (e *sourceEndpoint) TryRecv() (types.Message, error) {
	msg, err := e.q.TryRecv()
	if err == queue.Empty {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, &RecvError{Channel: e.def.ID, cause: err}
	}
	return msg, nil
}

func (e *sourceEndpoint) Close() { e.q.CloseReceiver() }

// NewSource builds a Source channel: a per-consumer unbounded SPSC queue,
// all reachable from the single producer's addressed sourcepoint.
func NewSource(def channel.Def) *channel.Channel {
	sp := &sourceSourcepoint{def: def}
	ch := &channel.Channel{Def: def}
	for _, pid := range def.Consumers {
		q := queue.NewUnbounded[types.Message](1)
		sp.queues.Insert(pid, q)
		ch.Endpoints.Insert(pid, &sourceEndpoint{def: def, q: q})
	}
	ch.Sourcepoints.Insert(def.Producers[0], sp)
	return ch
}
