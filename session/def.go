// Package session implements the session lifecycle: materializing channels
// from a validated definition, spawning or retaining each worker, collecting
// results, and draining on Finish. Grounded on
// original_source/src/session/mod.rs.
package session

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jabolina/calculus/channel"
	"github.com/jabolina/calculus/channel/backend"
	"github.com/jabolina/calculus/internal/vecmap"
	"github.com/jabolina/calculus/process"
	"github.com/jabolina/calculus/types"
)

// Def is a session definition: its channel and process definitions, plus
// which PID (if any) is this session's main-thread worker.
type Def struct {
	ChannelDefs   []channel.Def
	ProcessDefs   []process.Def
	MainThreadPID *types.PID
}

// Define validates every channel and process definition, then the single
// non-local cross-invariant of spec §3: each process's declared
// sourcepoint/endpoint CIDs must equal the CIDs whose channel lists it as
// producer/consumer, respectively.
func Define(def Def) (Def, error) {
	var result *multierror.Error

	validatedChannels := make([]channel.Def, 0, len(def.ChannelDefs))
	for _, cd := range def.ChannelDefs {
		vcd, err := channel.Define(cd)
		if err != nil {
			result = multierror.Append(result, errors.WithMessagef(err, "channel %d", cd.ID))
			continue
		}
		validatedChannels = append(validatedChannels, vcd)
	}

	validatedProcesses := make([]process.Def, 0, len(def.ProcessDefs))
	for _, pd := range def.ProcessDefs {
		vpd, err := process.Define(pd)
		if err != nil {
			result = multierror.Append(result, errors.WithMessagef(err, "process %d", pd.ID))
			continue
		}
		validatedProcesses = append(validatedProcesses, vpd)
	}

	if result == nil {
		producersOf := map[types.PID][]types.CID{}
		consumersOf := map[types.PID][]types.CID{}
		for _, cd := range validatedChannels {
			for _, p := range cd.Producers {
				producersOf[p] = append(producersOf[p], cd.ID)
			}
			for _, c := range cd.Consumers {
				consumersOf[c] = append(consumersOf[c], cd.ID)
			}
		}
		for _, pd := range validatedProcesses {
			if !sameSet(pd.Sourcepoints, producersOf[pd.ID]) {
				result = multierror.Append(result, errors.Errorf(
					"process %d: declared sourcepoints do not match channels listing it as producer", pd.ID))
			}
			if !sameSet(pd.Endpoints, consumersOf[pd.ID]) {
				result = multierror.Append(result, errors.Errorf(
					"process %d: declared endpoints do not match channels listing it as consumer", pd.ID))
			}
		}
	}

	if def.MainThreadPID != nil {
		found := false
		for _, pd := range validatedProcesses {
			if pd.ID == *def.MainThreadPID {
				found = true
				break
			}
		}
		if !found {
			result = multierror.Append(result, errors.Errorf(
				"main-thread pid %d is not a declared process", *def.MainThreadPID))
		}
	}

	if result != nil {
		return def, result.ErrorOrNil()
	}
	return Def{ChannelDefs: validatedChannels, ProcessDefs: validatedProcesses, MainThreadPID: def.MainThreadPID}, nil
}

func sameSet(a, b []types.CID) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]types.CID(nil), a...)
	sb := append([]types.CID(nil), b...)
	sort.Slice(sa, func(i, j int) bool { return sa[i] < sa[j] })
	sort.Slice(sb, func(i, j int) bool { return sb[i] < sb[j] })
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// CreateChannels materializes every channel backend declared by def.
func (d Def) CreateChannels() (vecmap.Map[types.CID, *channel.Channel], error) {
	var channels vecmap.Map[types.CID, *channel.Channel]
	for _, cd := range d.ChannelDefs {
		ch, err := backend.Create(cd)
		if err != nil {
			return channels, errors.WithMessagef(err, "channel %d", cd.ID)
		}
		channels.Insert(cd.ID, ch)
	}
	return channels, nil
}

// ProcessDef returns the declared definition for pid.
func (d Def) ProcessDef(pid types.PID) (process.Def, bool) {
	for _, pd := range d.ProcessDefs {
		if pd.ID == pid {
			return pd, true
		}
	}
	return process.Def{}, false
}

// sourcepointsFor/endpointsFor extract the per-PID sub-maps a process needs
// from the session's materialized channels, per spec §3 "decompose each
// into per-PID sourcepoint and endpoint sub-maps".
func sourcepointsFor(pd process.Def, channels vecmap.Map[types.CID, *channel.Channel]) vecmap.Map[types.CID, channel.Sourcepoint] {
	var out vecmap.Map[types.CID, channel.Sourcepoint]
	for _, cid := range pd.Sourcepoints {
		ch, _ := channels.Get(cid)
		sp, _ := ch.Sourcepoints.Get(pd.ID)
		out.Insert(cid, sp)
	}
	return out
}

func endpointsFor(pd process.Def, channels vecmap.Map[types.CID, *channel.Channel]) vecmap.Map[types.CID, channel.Endpoint] {
	var out vecmap.Map[types.CID, channel.Endpoint]
	for _, cid := range pd.Endpoints {
		ch, _ := channels.Get(cid)
		ep, _ := ch.Endpoints.Get(pd.ID)
		out.Insert(cid, ep)
	}
	return out
}
