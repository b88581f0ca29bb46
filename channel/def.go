// Package channel defines the three channel topologies (Simplex, Sink,
// Source), their definition-time validation, and the Sourcepoint/Endpoint
// send/receive contract shared by every backend. Grounded on
// original_source/src/channel/mod.rs and channel/backend/mod.rs.
package channel

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jabolina/calculus/types"
)

// Kind is the channel topology.
type Kind int

const (
	// Simplex is exactly one producer, exactly one consumer.
	Simplex Kind = iota
	// Sink is one or more producers, exactly one consumer.
	Sink
	// Source is exactly one producer, one or more consumers.
	Source
)

func (k Kind) String() string {
	switch k {
	case Simplex:
		return "Simplex"
	case Sink:
		return "Sink"
	case Source:
		return "Source"
	default:
		return "Unknown"
	}
}

// Def is a channel definition: its id, topology kind, producer/consumer PID
// lists and the local message-type id it carries.
type Def struct {
	ID        types.CID
	Kind      Kind
	Producers []types.PID
	Consumers []types.PID
	MID       types.MID
}

// Define validates a channel definition against the invariants of spec
// §3/§4.1 and returns an aggregated error (via go-multierror) naming every
// violation found, not just the first.
func Define(def Def) (Def, error) {
	var result *multierror.Error

	if len(def.Producers) == 0 {
		result = multierror.Append(result, errors.WithMessagef(ErrZeroProducers, "channel %d", def.ID))
	}
	if len(def.Consumers) == 0 {
		result = multierror.Append(result, errors.WithMessagef(ErrZeroConsumers, "channel %d", def.ID))
	}
	if dup, ok := firstDuplicate(def.Producers); ok {
		result = multierror.Append(result, errors.WithMessagef(ErrDuplicateProducer, "channel %d, pid %d", def.ID, dup))
	}
	if dup, ok := firstDuplicate(def.Consumers); ok {
		result = multierror.Append(result, errors.WithMessagef(ErrDuplicateConsumer, "channel %d, pid %d", def.ID, dup))
	}
	if overlap, ok := firstOverlap(def.Producers, def.Consumers); ok {
		result = multierror.Append(result, errors.WithMessagef(ErrProducerEqConsumer, "channel %d, pid %d", def.ID, overlap))
	}

	switch def.Kind {
	case Simplex:
		if len(def.Producers) > 1 {
			result = multierror.Append(result, errors.WithMessagef(ErrMultipleProducers, "channel %d (Simplex)", def.ID))
		}
		if len(def.Consumers) > 1 {
			result = multierror.Append(result, errors.WithMessagef(ErrMultipleConsumers, "channel %d (Simplex)", def.ID))
		}
	case Sink:
		if len(def.Consumers) > 1 {
			result = multierror.Append(result, errors.WithMessagef(ErrMultipleConsumers, "channel %d (Sink)", def.ID))
		}
	case Source:
		if len(def.Producers) > 1 {
			result = multierror.Append(result, errors.WithMessagef(ErrMultipleProducers, "channel %d (Source)", def.ID))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("channel %d: unknown kind %v", def.ID, def.Kind))
	}

	if result != nil {
		return def, result.ErrorOrNil()
	}
	return def, nil
}

func firstDuplicate(pids []types.PID) (types.PID, bool) {
	seen := make(map[types.PID]bool, len(pids))
	for _, p := range pids {
		if seen[p] {
			return p, true
		}
		seen[p] = true
	}
	return 0, false
}

func firstOverlap(a, b []types.PID) (types.PID, bool) {
	set := make(map[types.PID]bool, len(a))
	for _, p := range a {
		set[p] = true
	}
	for _, p := range b {
		if set[p] {
			return p, true
		}
	}
	return 0, false
}

// Definition errors, aggregated by Define via go-multierror.
var (
	ErrZeroProducers      = errors.New("channel definition has zero producers")
	ErrZeroConsumers      = errors.New("channel definition has zero consumers")
	ErrDuplicateProducer  = errors.New("duplicate producer in channel definition")
	ErrDuplicateConsumer  = errors.New("duplicate consumer in channel definition")
	ErrProducerEqConsumer = errors.New("a process is both producer and consumer of the same channel")
	ErrMultipleProducers  = errors.New("kind does not allow multiple producers")
	ErrMultipleConsumers  = errors.New("kind does not allow multiple consumers")
)
