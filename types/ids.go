// Package types holds the identity and message types shared by every
// calculus package: process ids, channel ids, message-type ids, the
// tagged-union message contract, and the control-flow signal user
// callbacks return from the scheduler loops.
package types

// PID identifies a process within one session definition. PIDs are dense,
// zero-based and totally ordered so they can key directly into an
// internal/vecmap.Map without hashing.
type PID int

// CID identifies a channel within one session definition. Same density and
// ordering guarantee as PID.
type CID int

// MID identifies a local message type within one channel's message union.
type MID int

// Key satisfies vecmap.Key for PID/CID/MID; all three are interchangeable
// for indexing purposes but kept as distinct types to prevent accidental
// mixing of a PID where a CID is expected.
func (p PID) Key() int { return int(p) }
func (c CID) Key() int { return int(c) }
func (m MID) Key() int { return int(m) }

// Message is a local or global tagged-union variant exchanged over a
// channel. MessageID identifies the local message type (the union) this
// value belongs to; every variant of one union returns the same MID. The
// channel backend checks it against the channel's declared MID before
// enqueueing (see §4.1) and panics if the value does not belong to the
// channel's message type — that mismatch can only happen
// through a broken definition generator, never through the public API.
type Message interface {
	MessageID() MID
}

// ControlFlow is returned by every user callback (HandleMessage, Update) to
// signal whether the worker's loop should keep running or end.
type ControlFlow int

const (
	// Continue keeps the worker's loop running.
	Continue ControlFlow = iota
	// Break ends the worker's loop on the next observation. In the
	// Isochronous/Mesochronous/Anisochronous poll pass, a Break from
	// HandleMessage closes only the channel that message came from; the
	// loop ends once every endpoint is closed.
	Break
)

func (c ControlFlow) String() string {
	if c == Break {
		return "Break"
	}
	return "Continue"
}

// Result is a worker's user-typed result slot, reported once through its
// session handle when its loop ends.
type Result interface{}
