package mrcurve

import (
	"testing"

	"github.com/codeGROOVE-dev/mrcurve/pkg/curve"
	"github.com/codeGROOVE-dev/mrcurve/pkg/workload"
)

func zipfTrace(seed uint64, theta float64, keySpace, length int) []uint64 {
	return workload.Zipf(length, keySpace, theta, seed)
}

// TestShards_S4ZipfianApproximatesOlken exercises Testable Property 4's
// companion scenario: Fixed-Rate SHARDS at a small sampling ratio
// should track exact Olken closely on a Zipfian trace.
func TestShards_S4ZipfianApproximatesOlken(t *testing.T) {
	trace := zipfTrace(0, 0.5, 1<<12, 1<<14)

	cfg := newTestConfig()
	cfg.NumBins = 1 << 12

	o, err := NewOlken(cfg)
	if err != nil {
		t.Fatalf("NewOlken: %v", err)
	}
	for _, k := range trace {
		_ = o.Access(k)
	}
	olkenCurve, err := curve.FromHistogram(o.Histogram())
	if err != nil {
		t.Fatalf("FromHistogram(olken): %v", err)
	}

	scfg := newTestConfig()
	scfg.NumBins = 1 << 12
	scfg.Sampling = 0.1
	s, err := NewShards(scfg)
	if err != nil {
		t.Fatalf("NewShards: %v", err)
	}
	for _, k := range trace {
		if err := s.Access(k); err != nil {
			t.Fatalf("Access: %v", err)
		}
	}
	if err := s.PostProcess(); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	shardsCurve, err := curve.FromHistogram(s.Histogram())
	if err != nil {
		t.Fatalf("FromHistogram(shards): %v", err)
	}

	mae, err := curve.MeanAbsoluteError(olkenCurve, shardsCurve)
	if err != nil {
		t.Fatalf("MeanAbsoluteError: %v", err)
	}
	if mae > 0.05 {
		t.Fatalf("MAE(olken, shards) = %v; want <= 0.05", mae)
	}
}

// TestShards_PostProcessPreservesRunningSum verifies Testable Property
// 4: adjustment only redistributes mass in the first bins.
func TestShards_PostProcessPreservesRunningSum(t *testing.T) {
	trace := zipfTrace(1, 0.8, 1<<10, 1<<12)

	cfg := newTestConfig()
	cfg.NumBins = 1 << 10
	cfg.Sampling = 0.2
	s, err := NewShards(cfg)
	if err != nil {
		t.Fatalf("NewShards: %v", err)
	}
	for _, k := range trace {
		_ = s.Access(k)
	}
	before := s.Histogram().RunningSum()
	if err := s.PostProcess(); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	after := s.Histogram().RunningSum()
	if before != after {
		t.Fatalf("RunningSum changed across PostProcess: %d -> %d", before, after)
	}
}

func TestShards_RejectedKeysCostNothing(t *testing.T) {
	cfg := newTestConfig()
	cfg.Sampling = 1e-9 // effectively rejects everything
	s, err := NewShards(cfg)
	if err != nil {
		t.Fatalf("NewShards: %v", err)
	}
	for i := uint64(0); i < 1000; i++ {
		if err := s.Access(i); err != nil {
			t.Fatalf("Access: %v", err)
		}
	}
	if s.Histogram().RunningSum() != 0 {
		t.Fatalf("RunningSum() = %d; want 0 with near-zero sampling", s.Histogram().RunningSum())
	}
}
