// Package vecmap is a dense, ordinal-indexed map over the small integer
// identities (PID, CID, MID) the calculus data model fixes at definition
// time. It is the Go translation of the original Rust implementation's use
// of vec_map::VecMap: a slot per possible key, no hashing, ascending
// iteration order for free.
package vecmap

import "sort"

// Key is any identity usable as a vecmap index.
type Key interface {
	Key() int
}

// Map is a dense map from a Key to a value. The zero value is an empty,
// usable map.
type Map[K Key, V any] struct {
	slots []slot[K, V]
	has   []bool
	n     int
}

type slot[K Key, V any] struct {
	key K
	val V
}

// Insert stores val at key, growing the backing slice if necessary.
func (m *Map[K, V]) Insert(key K, val V) {
	idx := key.Key()
	m.grow(idx)
	if !m.has[idx] {
		m.n++
	}
	m.has[idx] = true
	m.slots[idx] = slot[K, V]{key: key, val: val}
}

// Get returns the value stored at key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	idx := key.Key()
	if idx < 0 || idx >= len(m.has) || !m.has[idx] {
		var zero V
		return zero, false
	}
	return m.slots[idx].val, true
}

// MustGet returns the value stored at key, panicking if absent. Used in
// paths where presence is already a definition-time invariant.
func (m *Map[K, V]) MustGet(key K) V {
	v, ok := m.Get(key)
	if !ok {
		panic("vecmap: key not present")
	}
	return v
}

// Remove deletes the entry at key, if present.
func (m *Map[K, V]) Remove(key K) {
	idx := key.Key()
	if idx < 0 || idx >= len(m.has) || !m.has[idx] {
		return
	}
	m.has[idx] = false
	var zero slot[K, V]
	m.slots[idx] = zero
	m.n--
}

// Len returns the number of present entries.
func (m *Map[K, V]) Len() int { return m.n }

// Keys returns every present key in ascending numeric order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.n)
	for idx, present := range m.has {
		if present {
			keys = append(keys, m.slots[idx].key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key() < keys[j].Key() })
	return keys
}

// Each calls fn for every present entry in ascending key order — this is
// the poll-pass tie-break order spec §4.2 requires.
func (m *Map[K, V]) Each(fn func(key K, val V)) {
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		fn(k, v)
	}
}

func (m *Map[K, V]) grow(idx int) {
	if idx < len(m.slots) {
		return
	}
	newSlots := make([]slot[K, V], idx+1)
	newHas := make([]bool, idx+1)
	copy(newSlots, m.slots)
	copy(newHas, m.has)
	m.slots = newSlots
	m.has = newHas
}
