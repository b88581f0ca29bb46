// Package scenarios exercises the runtime end to end, implementing the six
// scenarios of spec §8 as integration tests spanning channel, process,
// session and program. Grounded on the teacher's own test/testing.go
// cluster-helper style: small structs wrapping goroutine/channel
// plumbing, built once per test.
//
// A channel's Def carries a single MID identifying the local message union
// it was declared to carry (spec §3's "local message type"); every variant
// struct sent on that channel returns the SAME MID from MessageID(), since
// Go lacks the algebraic sub-typing original_source's TryFrom narrowing
// relies on — the union is expressed instead as an ordinary Go type switch
// inside HandleMessage. narrow() in channel/backend checks only "does this
// value belong to the channel's declared union", not which variant.
package scenarios

import "github.com/jabolina/calculus/types"

const (
	// UnionCharQuit carries Char and Quit (scenario 1: simplex pipeline).
	UnionCharQuit types.MID = iota
	// UnionBar carries only Bar (scenario 2: sink disconnect).
	UnionBar
	// UnionIntQuit carries IntMsg and QuitInt (scenarios 3 and 4: source
	// disconnect and addressed fan-out).
	UnionIntQuit
	// UnionStringQuit carries StringMsg and QuitString (scenario 6's inbound
	// line channel).
	UnionStringQuit
	// UnionString carries only StringMsg (scenario 6's reply channel).
	UnionString
)

// Char carries a single rune to be uppercased downstream (scenario 1).
type Char struct{ Value rune }

func (Char) MessageID() types.MID { return UnionCharQuit }

// Quit signals a worker to stop. It belongs to UnionCharQuit only; the other
// unions that need an end-of-stream marker use QuitInt and QuitString.
type Quit struct{}

func (Quit) MessageID() types.MID { return UnionCharQuit }

// QuitInt is Quit's variant on the UnionIntQuit union — Go's nominal typing
// means the same struct can't return two different MIDs, so each union
// that needs a quit marker gets its own zero-sized variant.
type QuitInt struct{}

func (QuitInt) MessageID() types.MID { return UnionIntQuit }

// QuitString is Quit's variant on the UnionStringQuit union.
type QuitString struct{}

func (QuitString) MessageID() types.MID { return UnionStringQuit }

// Bar is the sole payload of scenario 2's sink disconnect test.
type Bar struct{}

func (Bar) MessageID() types.MID { return UnionBar }

// IntMsg carries a signed value (scenarios 3 and 4).
type IntMsg struct{ Value int }

func (IntMsg) MessageID() types.MID { return UnionIntQuit }

// StringMsg carries a line of text (scenario 6's interactive echo). The
// Reply bool distinguishes which union a given instance was built for,
// since the same Go type rides both UnionStringQuit and UnionString.
type StringMsg struct {
	Value string
	Reply bool
}

func (m StringMsg) MessageID() types.MID {
	if m.Reply {
		return UnionString
	}
	return UnionStringQuit
}
