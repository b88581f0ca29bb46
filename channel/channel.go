package channel

import (
	"github.com/jabolina/calculus/internal/vecmap"
	"github.com/jabolina/calculus/types"
)

// Sourcepoint is the send capability a producer holds on a channel.
type Sourcepoint interface {
	// Send delivers msg to the channel's unique recipient. Simplex and Sink
	// implement this; Source does not (no default recipient) and panics if
	// called, per spec §4.1's preserved asymmetry.
	Send(msg types.Message) error
	// SendTo delivers msg to a specific consumer PID. Source implements
	// this; Simplex and Sink do not and panic if called.
	SendTo(msg types.Message, recipient types.PID) error
	// Close releases this sourcepoint, signalling disconnect to whichever
	// receiver(s) were waiting on it once every sourcepoint sharing the
	// same queue has likewise closed.
	Close()
}

// Endpoint is the receive capability a consumer holds on a channel.
type Endpoint interface {
	// Recv blocks until a message is available or every sender has closed.
	Recv() (types.Message, error)
	// TryRecv returns backend.ErrEmpty if nothing is ready yet, or a disconnect
	// error once drained with no senders left.
	TryRecv() (types.Message, error)
	// Close releases this endpoint, signalling disconnect to its sender(s).
	Close()
}

// Channel is a materialized channel instance: its definition plus the
// per-PID sourcepoint and endpoint maps decomposed from it at session
// start, per spec §3 "Channel instance".
type Channel struct {
	Def          Def
	Sourcepoints vecmap.Map[types.PID, Sourcepoint]
	Endpoints    vecmap.Map[types.PID, Endpoint]
}
