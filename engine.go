// Package mrcurve computes miss ratio curves for cache access traces.
//
// A trace is a sequence of 64-bit keys; an Engine consumes keys one at a
// time and maintains enough state to estimate, for every cache size, the
// fraction of accesses that would miss an LRU cache of that size. Four
// engines are provided, trading exactness for speed and bounded memory:
// Olken (exact), Fixed-Rate SHARDS (sampled Olken), Evicting-Map (bounded
// working set via a self-tightening hash threshold), and Evicting-
// QuickMRC (bounded working set plus an approximate age-bucket ladder in
// place of the order-statistic tree).
package mrcurve

import "github.com/codeGROOVE-dev/mrcurve/pkg/histogram"

// Engine is the uniform contract every reuse-distance estimator
// implements: feed it keys, optionally post-process, then read its
// histogram. Engines are single-threaded; callers serialize Access
// calls (see the concurrent Runner for driving several engines at
// once, one per goroutine, over independent copies of a trace).
type Engine interface {
	// Access records a single trace reference.
	Access(key uint64) error
	// PostProcess runs any end-of-trace correction the engine requires
	// (SHARDS-style engines rebalance their histogram here). Engines
	// with nothing to do implement it as a no-op.
	PostProcess() error
	// Histogram returns the engine's internal histogram. The returned
	// value is owned by the engine and must not be mutated by callers.
	Histogram() *histogram.Histogram
	// Close releases engine-owned resources. An engine must not be used
	// after Close.
	Close() error
}

// Record is a single parsed trace entry: a key access at a point in
// time, with optional size and TTL metadata carried through from the
// trace format for consumers that want it (mrcurve's engines only look
// at Key).
type Record struct {
	Timestamp uint64
	Key       uint64
	Size      uint32
	TTL       uint32 // seconds; 0 means no TTL
}
