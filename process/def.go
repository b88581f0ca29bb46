// Package process implements the per-worker lifecycle: its definition and
// validation, its Ready→Running→Ended state machine, and the four
// scheduler loop kinds. Grounded on original_source/src/process/mod.rs.
package process

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jabolina/calculus/types"
)

// Kind tags which of the four loop shapes a process definition requests.
type Kind int

const (
	Asynchronous Kind = iota
	Isochronous
	Mesochronous
	Anisochronous
)

func (k Kind) String() string {
	switch k {
	case Asynchronous:
		return "Asynchronous"
	case Isochronous:
		return "Isochronous"
	case Mesochronous:
		return "Mesochronous"
	case Anisochronous:
		return "Anisochronous"
	default:
		return "Unknown"
	}
}

// KindSpec carries a Kind plus whichever timing parameters that kind needs.
// Asynchronous uses MessagesPerUpdate; Isochronous/Mesochronous use TickMs
// and TicksPerUpdate; Anisochronous uses none.
type KindSpec struct {
	Kind              Kind
	MessagesPerUpdate int
	TickMs            int
	TicksPerUpdate    int
}

// NewAsynchronous builds an Asynchronous KindSpec, requiring
// messagesPerUpdate >= 1.
func NewAsynchronous(messagesPerUpdate int) (KindSpec, error) {
	if messagesPerUpdate < 1 {
		return KindSpec{}, errors.New("Asynchronous: messages_per_update must be >= 1")
	}
	return KindSpec{Kind: Asynchronous, MessagesPerUpdate: messagesPerUpdate}, nil
}

// NewIsochronous builds an Isochronous KindSpec.
func NewIsochronous(tickMs, ticksPerUpdate int) (KindSpec, error) {
	return newTimed(Isochronous, tickMs, ticksPerUpdate)
}

// NewMesochronous builds a Mesochronous KindSpec.
func NewMesochronous(tickMs, ticksPerUpdate int) (KindSpec, error) {
	return newTimed(Mesochronous, tickMs, ticksPerUpdate)
}

func newTimed(kind Kind, tickMs, ticksPerUpdate int) (KindSpec, error) {
	var result *multierror.Error
	if tickMs < 1 {
		result = multierror.Append(result, errors.Errorf("%s: tick_ms must be >= 1", kind))
	}
	if ticksPerUpdate < 1 {
		result = multierror.Append(result, errors.Errorf("%s: ticks_per_update must be >= 1", kind))
	}
	if result != nil {
		return KindSpec{}, result.ErrorOrNil()
	}
	return KindSpec{Kind: kind, TickMs: tickMs, TicksPerUpdate: ticksPerUpdate}, nil
}

// NewAnisochronous builds an Anisochronous KindSpec.
func NewAnisochronous() KindSpec { return KindSpec{Kind: Anisochronous} }

// Def is a process definition: its id, loop kind, and declared sourcepoint
// / endpoint channel ids.
type Def struct {
	ID           types.PID
	Kind         KindSpec
	Sourcepoints []types.CID
	Endpoints    []types.CID
}

// Define validates a process definition against spec §3/§4.2's invariants.
func Define(def Def) (Def, error) {
	var result *multierror.Error

	if dup, ok := firstCIDDuplicate(def.Sourcepoints); ok {
		result = multierror.Append(result, errors.Errorf("process %d: duplicate sourcepoint channel %d", def.ID, dup))
	}
	if dup, ok := firstCIDDuplicate(def.Endpoints); ok {
		result = multierror.Append(result, errors.Errorf("process %d: duplicate endpoint channel %d", def.ID, dup))
	}
	if overlap, ok := firstCIDOverlap(def.Sourcepoints, def.Endpoints); ok {
		result = multierror.Append(result, errors.Errorf("process %d: channel %d is both sourcepoint and endpoint", def.ID, overlap))
	}
	if def.Kind.Kind == Asynchronous {
		switch len(def.Endpoints) {
		case 0:
			result = multierror.Append(result, errors.Errorf("process %d: Asynchronous requires exactly one endpoint, has zero", def.ID))
		case 1:
			// ok
		default:
			result = multierror.Append(result, errors.Errorf("process %d: Asynchronous requires exactly one endpoint, has %d", def.ID, len(def.Endpoints)))
		}
	}

	if result != nil {
		return def, result.ErrorOrNil()
	}
	return def, nil
}

func firstCIDDuplicate(cids []types.CID) (types.CID, bool) {
	seen := make(map[types.CID]bool, len(cids))
	for _, c := range cids {
		if seen[c] {
			return c, true
		}
		seen[c] = true
	}
	return 0, false
}

func firstCIDOverlap(a, b []types.CID) (types.CID, bool) {
	set := make(map[types.CID]bool, len(a))
	for _, c := range a {
		set[c] = true
	}
	for _, c := range b {
		if set[c] {
			return c, true
		}
	}
	return 0, false
}
