package backend

import (
	"fmt"

	"github.com/jabolina/calculus/types"
)

// ErrEmpty is returned by TryRecv when the queue has nothing ready but its
// sender(s) are still open.
var ErrEmpty = fmt.Errorf("backend: channel empty")

// SendError is returned when a send targets a channel whose receiver has
// disconnected. Message carries the undelivered payload so the caller can
// retry, log, or discard it per spec §7.
type SendError struct {
	Channel types.CID
	Message types.Message
	cause   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("channel %d: send failed, peer disconnected: %v", e.Channel, e.cause)
}

func (e *SendError) Unwrap() error { return e.cause }

// RecvError is returned when a receive observes every sender disconnected.
type RecvError struct {
	Channel types.CID
	cause   error
}

func (e *RecvError) Error() string {
	return fmt.Sprintf("channel %d: recv failed, sender disconnected: %v", e.Channel, e.cause)
}

func (e *RecvError) Unwrap() error { return e.cause }
