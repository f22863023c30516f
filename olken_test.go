package mrcurve

import (
	"math"
	"testing"

	"github.com/codeGROOVE-dev/mrcurve/pkg/curve"
	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

func newTestConfig() *EngineConfig {
	c := defaultConfig()
	c.NumBins = 64
	c.BinSize = 1
	c.OverflowMode = histogram.Realloc
	return c
}

// TestOlken_S1Hammer repeatedly accesses a single key: one cold miss,
// then every subsequent access hits at stack distance 0.
func TestOlken_S1Hammer(t *testing.T) {
	o, err := NewOlken(newTestConfig())
	if err != nil {
		t.Fatalf("NewOlken: %v", err)
	}
	trace := []uint64{0, 0, 0, 0, 0}
	for _, k := range trace {
		if err := o.Access(k); err != nil {
			t.Fatalf("Access(%d): %v", k, err)
		}
	}
	h := o.Histogram()
	if h.Infinity() != 1 {
		t.Fatalf("Infinity() = %d; want 1", h.Infinity())
	}
	if h.Bin(0) != 4 {
		t.Fatalf("Bin(0) = %d; want 4", h.Bin(0))
	}

	c, err := curve.FromHistogram(h)
	if err != nil {
		t.Fatalf("FromHistogram: %v", err)
	}
	// MissRate[0] is the miss rate of a cache of size 0, which hits
	// nothing, so it is 1.0 over all 5 accesses (MissRate[1], size 1,
	// would be 0.2: only the cold first access misses).
	if got := c.MissRate[0]; math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("MissRate at size 0 = %v; want 1.0", got)
	}
}

// TestOlken_S2Step cycles through 10 keys 10 times: the first pass
// through each key is a cold miss, every subsequent access sees reuse
// distance 9 (every other live key was touched in between).
func TestOlken_S2Step(t *testing.T) {
	o, err := NewOlken(newTestConfig())
	if err != nil {
		t.Fatalf("NewOlken: %v", err)
	}
	for i := 0; i < 100; i++ {
		if err := o.Access(uint64(i % 10)); err != nil {
			t.Fatalf("Access: %v", err)
		}
	}
	h := o.Histogram()
	if h.Infinity() != 10 {
		t.Fatalf("Infinity() = %d; want 10", h.Infinity())
	}
	if h.Bin(9) != 90 {
		t.Fatalf("Bin(9) = %d; want 90", h.Bin(9))
	}
}

// TestOlken_ExactVsBruteForce checks Olken's histogram against a
// brute-force Mattson stack-distance computation over a pseudo-random
// trace (Testable Property 1).
func TestOlken_ExactVsBruteForce(t *testing.T) {
	trace := make([]uint64, 0, 500)
	for i := 0; i < 500; i++ {
		trace = append(trace, uint64((i*37+i*i)%23))
	}

	o, err := NewOlken(newTestConfig())
	if err != nil {
		t.Fatalf("NewOlken: %v", err)
	}
	for _, k := range trace {
		if err := o.Access(k); err != nil {
			t.Fatalf("Access: %v", err)
		}
	}
	h := o.Histogram()

	want, wantInf := bruteForceStackDistances(trace)
	if h.Infinity() != wantInf {
		t.Fatalf("Infinity() = %d; want %d", h.Infinity(), wantInf)
	}
	for d, n := range want {
		if got := h.Bin(d); got != n {
			t.Fatalf("Bin(%d) = %d; want %d", d, got, n)
		}
	}
}

// bruteForceStackDistances computes, for each access, the number of
// distinct keys seen since the key's previous occurrence (the Mattson
// stack distance), as an O(n^2) reference oracle.
func bruteForceStackDistances(trace []uint64) (bins map[int]uint64, infinite uint64) {
	bins = map[int]uint64{}
	for i, k := range trace {
		prev := -1
		for j := i - 1; j >= 0; j-- {
			if trace[j] == k {
				prev = j
				break
			}
		}
		if prev == -1 {
			infinite++
			continue
		}
		distinct := map[uint64]bool{}
		for j := prev + 1; j < i; j++ {
			distinct[trace[j]] = true
		}
		bins[len(distinct)]++
	}
	return bins, infinite
}

func TestOlken_RoundTripDeterminism(t *testing.T) {
	trace := []uint64{1, 2, 3, 1, 2, 4, 1, 5}
	run := func() *histogram.Histogram {
		o, _ := NewOlken(newTestConfig())
		for _, k := range trace {
			_ = o.Access(k)
		}
		return o.Histogram()
	}
	a, b := run(), run()
	if a.Infinity() != b.Infinity() || a.RunningSum() != b.RunningSum() {
		t.Fatal("two runs over the same trace produced different histograms")
	}
	for i := 0; i < a.NumBins(); i++ {
		if a.Bin(i) != b.Bin(i) {
			t.Fatalf("Bin(%d) differs between runs: %d vs %d", i, a.Bin(i), b.Bin(i))
		}
	}
}

func TestOlken_HistogramInvariantHolds(t *testing.T) {
	o, _ := NewOlken(newTestConfig())
	for i := 0; i < 200; i++ {
		key := uint64((i * 13) % 17)
		if err := o.Access(key); err != nil {
			t.Fatalf("Access: %v", err)
		}
		if err := o.Histogram().Validate(); err != nil {
			t.Fatalf("Validate after access %d: %v", i, err)
		}
	}
}

func TestMRC_EndpointsAndMonotone(t *testing.T) {
	o, _ := NewOlken(newTestConfig())
	for i := 0; i < 200; i++ {
		key := uint64((i * 13) % 17)
		_ = o.Access(key)
		// Repeat every third key immediately, so the trace also produces
		// genuine reuse-distance-0 hits (bin 0), not just the 17-key
		// cycle's distance-16 hits.
		if i%3 == 0 {
			_ = o.Access(key)
		}
	}
	h := o.Histogram()
	if h.Bin(0) == 0 {
		t.Fatal("Bin(0) = 0; want >0, trace was constructed to include back-to-back repeats")
	}

	c, err := curve.FromHistogram(h)
	if err != nil {
		t.Fatalf("FromHistogram: %v", err)
	}
	if c.MissRate[0] != 1.0 {
		t.Fatalf("MissRate[0] = %v; want 1.0", c.MissRate[0])
	}
	// Bin 0's mass must be excluded from MissRate[0] but included by
	// MissRate[1]: with Bin(0) > 0, the size-1 curve point must show a
	// strictly lower miss rate than the size-0 endpoint.
	if c.MissRate[1] >= c.MissRate[0] {
		t.Fatalf("MissRate[1] = %v; want < MissRate[0] = %v (bin 0's hits must count by size 1)", c.MissRate[1], c.MissRate[0])
	}
	for i := 1; i < len(c.MissRate); i++ {
		if c.MissRate[i] > c.MissRate[i-1] {
			t.Fatalf("MissRate not monotone non-increasing at %d", i)
		}
	}
}
