// Package tsmap implements the exact key to last-access-timestamp
// mapping Olken's engine uses to find a key's previous timestamp before
// querying the order-statistic tree for its reuse distance.
//
// Olken's engine is single-threaded per §5's concurrency model, so this
// is a plain map rather than a concurrent one; xsync earns its keep
// elsewhere, in the multi-engine runner that fans work across engines.
package tsmap

// Map is an exact key -> timestamp mapping.
type Map struct {
	m map[uint64]uint64
}

// New constructs an empty Map.
func New() *Map {
	return &Map{m: make(map[uint64]uint64)}
}

// Lookup returns the last recorded timestamp for key, if any.
func (m *Map) Lookup(key uint64) (timestamp uint64, ok bool) {
	timestamp, ok = m.m[key]
	return timestamp, ok
}

// Put records timestamp as key's most recent access time, overwriting
// any prior value.
func (m *Map) Put(key, timestamp uint64) {
	m.m[key] = timestamp
}

// Len returns the number of distinct keys tracked.
func (m *Map) Len() int { return len(m.m) }
