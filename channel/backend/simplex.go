// Package backend builds the three concrete Channel backends from a
// validated channel.Def. Grounded on original_source/src/channel/backend/mod.rs,
// which builds exactly these three backends (Simplex/Sink/Source) over
// unbounded_spsc and std::sync::mpsc queues.
package backend

import (
	"fmt"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/internal/queue"
	"github.com/jabolina/calculus/types"
)

func narrow(def channel.Def, msg types.Message) {
	if msg.MessageID() != def.MID {
		panic(fmt.Sprintf("channel %d: message variant %d does not narrow to declared type %d (generator invariant violated)", def.ID, msg.MessageID(), def.MID))
	}
}

// simplexSourcepoint is the lone producer's send capability on a Simplex
// channel: SendTo is undefined for this kind, matching spec §4.1.
type simplexSourcepoint struct {
	def channel.Def
	q   *queue.Unbounded[types.Message]
}

func (s *simplexSourcepoint) Send(msg types.Message) error {
	narrow(s.def, msg)
	if err := s.q.Send(msg); err != nil {
		return &SendError{Channel: s.def.ID, Message: msg, cause: err}
	}
	return nil
}

func (s *simplexSourcepoint) SendTo(types.Message, types.PID) error {
	panic(fmt.Sprintf("channel %d: send_to is undefined on a Simplex sourcepoint", s.def.ID))
}

func (s *simplexSourcepoint) Close() { s.q.CloseSender() }

type simplexEndpoint struct {
	def channel.Def
	q   *queue.Unbounded[types.Message]
}

func (e *simplexEndpoint) Recv() (types.Message, error) {
	msg, err := e.q.Recv()
	if err != nil {
		return nil, &RecvError{Channel: e.def.ID, cause: err}
	}
	return msg, nil
}

func (e *simplexEndpoint) TryRecv() (types.Message, error) {
	msg, err := e.q.TryRecv()
	if err == queue.Empty {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, &RecvError{Channel: e.def.ID, cause: err}
	}
	return msg, nil
}

func (e *simplexEndpoint) Close() { e.q.CloseReceiver() }

// NewSimplex builds a Simplex channel: one unbounded SPSC queue shared by
// exactly one producer and one consumer.
func NewSimplex(def channel.Def) *channel.Channel {
	q := queue.NewUnbounded[types.Message](1)
	ch := &channel.Channel{Def: def}
	ch.Sourcepoints.Insert(def.Producers[0], &simplexSourcepoint{def: def, q: q})
	ch.Endpoints.Insert(def.Consumers[0], &simplexEndpoint{def: def, q: q})
	return ch
}
