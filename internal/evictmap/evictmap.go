// Package evictmap implements the evicting sampled map: a fixed-capacity
// hash → value table used by the Evicting-Map and Evicting-QuickMRC
// engines to maintain a bounded working set without a separate sampling
// pass. As the table fills, its accept threshold self-tightens to the
// largest hash currently resident, turning capacity pressure directly
// into the sampling ratio.
package evictmap

import (
	"errors"
	"fmt"

	"github.com/codeGROOVE-dev/mrcurve/internal/sampler"
)

// ErrInvalidCapacity is returned by New for a non-positive capacity.
var ErrInvalidCapacity = errors.New("evictmap: capacity must be positive")

// Outcome classifies the result of a TryPut call.
type Outcome int

const (
	// Ignored means the key's hash exceeded the current threshold, or
	// lost a collision to a hash-superior resident; the map is unchanged.
	Ignored Outcome = iota
	// Inserted means the key occupied a previously empty slot.
	Inserted
	// Replaced means the key evicted a hash-inferior resident of its slot.
	Replaced
	// Updated means the key was already resident in its slot; its value
	// was overwritten.
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	case Updated:
		return "updated"
	default:
		return fmt.Sprintf("evictmap.Outcome(%d)", int(o))
	}
}

type slot struct {
	valid bool
	key   uint64
	value uint64
	hash  uint64
}

// Result reports the outcome of TryPut and, when it evicted or
// overwrote a resident, that resident's prior value.
type Result struct {
	Outcome  Outcome
	OldKey   uint64
	OldValue uint64
	HadOld   bool
}

// Map is a fixed-capacity, hash-indexed key/value table with a
// self-tightening accept threshold. Not safe for concurrent use.
type Map struct {
	slots     []slot
	capacity  int
	occupancy int
	threshold uint64
	filled    bool
}

// New constructs a Map with room for capacity resident keys.
func New(capacity int) (*Map, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Map{
		slots:     make([]slot, capacity),
		capacity:  capacity,
		threshold: maxThreshold,
	}, nil
}

const maxThreshold = ^uint64(0)

// TryPut inserts or updates key with value, following the evicting
// sampled map's hash-threshold discipline: the slot is slots[hash%N];
// a present resident with a numerically smaller hash always wins the
// slot over a later arrival.
func (m *Map) TryPut(key, value uint64) Result {
	h := sampler.Hash64(key)
	if h > m.threshold {
		return Result{Outcome: Ignored}
	}

	idx := h % uint64(m.capacity)
	s := &m.slots[idx]

	switch {
	case !s.valid:
		*s = slot{valid: true, key: key, value: value, hash: h}
		m.occupancy++
		if m.occupancy == m.capacity && !m.filled {
			m.refreshThreshold()
		}
		return Result{Outcome: Inserted}

	case s.key == key:
		old := s.value
		s.value = value
		return Result{Outcome: Updated, OldKey: key, OldValue: old, HadOld: true}

	case s.hash > h:
		evicted := *s
		*s = slot{valid: true, key: key, value: value, hash: h}
		return Result{Outcome: Replaced, OldKey: evicted.key, OldValue: evicted.value, HadOld: true}

	default:
		return Result{Outcome: Ignored}
	}
}

// SetValue overwrites the stored value for a key TryPut has just
// reported resident (Inserted, Replaced, or Updated), letting callers
// stash data that was only computed after the TryPut dispatch — the
// Evicting-QuickMRC engine uses this to record the age-bucket-ladder
// epoch a key belongs to, which isn't known until after the ladder
// itself is consulted.
func (m *Map) SetValue(key, value uint64) {
	h := sampler.Hash64(key)
	idx := h % uint64(m.capacity)
	s := &m.slots[idx]
	if s.valid && s.key == key {
		s.value = value
	}
}

// refreshThreshold lowers the accept threshold to the maximum hash
// currently resident, the instant the table first reaches capacity.
// Every key admitted afterward necessarily hashes at or below this
// value (REPLACED requires h < the evicted resident's hash, which was
// itself <= the prior threshold), so this refresh never needs repeating.
func (m *Map) refreshThreshold() {
	var max uint64
	for _, s := range m.slots {
		if s.valid && s.hash > max {
			max = s.hash
		}
	}
	m.threshold = max
	m.filled = true
}

// Threshold returns the current accept threshold on the hash space.
func (m *Map) Threshold() uint64 { return m.threshold }

// Filled reports whether the table has ever reached capacity.
func (m *Map) Filled() bool { return m.filled }

// Occupancy returns the number of resident keys.
func (m *Map) Occupancy() int { return m.occupancy }

// Capacity returns the table's fixed slot count.
func (m *Map) Capacity() int { return m.capacity }

// ScaleFactor estimates the population scale factor implied by the
// current threshold: 1/T_effective, where T_effective = threshold/2^64.
// Before the table fills this is 1 (every key is accepted).
func (m *Map) ScaleFactor() uint64 {
	return sampler.ScaleFromThreshold(m.threshold)
}
