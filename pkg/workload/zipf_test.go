package workload

import "testing"

func TestZipf_StaysWithinKeySpace(t *testing.T) {
	const keySpace = 100
	trace := Zipf(5000, keySpace, 0.9, 7)
	if len(trace) != 5000 {
		t.Fatalf("len(trace) = %d; want 5000", len(trace))
	}
	for _, k := range trace {
		if k >= keySpace {
			t.Fatalf("key %d out of range [0, %d)", k, keySpace)
		}
	}
}

func TestZipf_SkewConcentratesOnLowKeys(t *testing.T) {
	const keySpace = 100
	trace := Zipf(20000, keySpace, 1.2, 1)
	counts := make([]int, keySpace)
	for _, k := range trace {
		counts[k]++
	}
	if counts[0] <= counts[keySpace-1] {
		t.Fatalf("counts[0]=%d not greater than counts[%d]=%d under high skew", counts[0], keySpace-1, counts[keySpace-1])
	}
}

func TestZipf_DeterministicForSameSeed(t *testing.T) {
	a := Zipf(500, 50, 0.7, 42)
	b := Zipf(500, 50, 0.7, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("trace differs at %d: %d vs %d", i, a[i], b[i])
		}
	}
}
