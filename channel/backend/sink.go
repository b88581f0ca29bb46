package backend

import (
	"fmt"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/internal/queue"
	"github.com/jabolina/calculus/types"
)

// sinkSourcepoint is one producer's clone of the shared Sink queue's sender
// side. Every producer shares the same underlying queue; Close decrements
// the queue's live-sender count rather than closing it outright.
type sinkSourcepoint struct {
	def channel.Def
	q   *queue.Unbounded[types.Message]
}

func (s *sinkSourcepoint) Send(msg types.Message) error {
	narrow(s.def, msg)
	if err := s.q.Send(msg); err != nil {
		return &SendError{Channel: s.def.ID, Message: msg, cause: err}
	}
	return nil
}

func (s *sinkSourcepoint) SendTo(types.Message, types.PID) error {
	panic(fmt.Sprintf("channel %d: send_to is undefined on a Sink sourcepoint", s.def.ID))
}

func (s *sinkSourcepoint) Close() { s.q.CloseSender() }

type sinkEndpoint struct {
	def channel.Def
	q   *queue.Unbounded[types.Message]
}

func (e *sinkEndpoint) Recv() (types.Message, error) {
	msg, err := e.q.Recv()
	if err != nil {
		return nil, &RecvError{Channel: e.def.ID, cause: err}
	}
	return msg, nil
}

func (e *sinkEndpoint) TryRecv() (types.Message, error) {
	msg, err := e.q.TryRecv()
	if err == queue.Empty {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, &RecvError{Channel: e.def.ID, cause: err}
	}
	return msg, nil
}

func (e *sinkEndpoint) Close() { e.q.CloseReceiver() }

// NewSink builds a Sink channel: one unbounded MPSC queue, one sourcepoint
// clone per declared producer, and the unique consumer's endpoint.
func NewSink(def channel.Def) *channel.Channel {
	q := queue.NewUnbounded[types.Message](len(def.Producers))
	ch := &channel.Channel{Def: def}
	for _, pid := range def.Producers {
		ch.Sourcepoints.Insert(pid, &sinkSourcepoint{def: def, q: q})
	}
	ch.Endpoints.Insert(def.Consumers[0], &sinkEndpoint{def: def, q: q})
	return ch
}
