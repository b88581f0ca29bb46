package backend

import (
	"fmt"

	"github.com/jabolina/calculus/channel"
)

// Create validates def and materializes the backend matching its kind.
func Create(def channel.Def) (*channel.Channel, error) {
	validated, err := channel.Define(def)
	if err != nil {
		return nil, err
	}
	switch validated.Kind {
	case channel.Simplex:
		return NewSimplex(validated), nil
	case channel.Sink:
		return NewSink(validated), nil
	case channel.Source:
		return NewSource(validated), nil
	default:
		return nil, fmt.Errorf("channel %d: unknown kind %v", validated.ID, validated.Kind)
	}
}
