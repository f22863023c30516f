package mrcurve

import "testing"

func TestRunner_RunsAllEnginesConcurrently(t *testing.T) {
	trace := zipfTrace(2, 0.7, 1<<9, 1<<12)
	cfg := newTestConfig()
	cfg.NumBins = 1 << 9
	cfg.MaxSize = 256
	cfg.QMRCSize = 32

	o, err := NewOlken(cfg)
	if err != nil {
		t.Fatalf("NewOlken: %v", err)
	}
	s, err := NewShards(cfg)
	if err != nil {
		t.Fatalf("NewShards: %v", err)
	}
	e, err := NewEvictingMap(cfg)
	if err != nil {
		t.Fatalf("NewEvictingMap: %v", err)
	}
	q, err := NewQuickMRC(cfg)
	if err != nil {
		t.Fatalf("NewQuickMRC: %v", err)
	}

	r := NewRunner()
	r.Add("olken", o)
	r.Add("shards", s)
	r.Add("evictingmap", e)
	r.Add("quickmrc", q)

	results := r.Run(trace)
	if len(results) != 4 {
		t.Fatalf("len(results) = %d; want 4", len(results))
	}

	seen := map[string]bool{}
	for _, res := range results {
		seen[res.Name] = true
		if res.Err != nil {
			t.Fatalf("engine %q: %v", res.Name, res.Err)
		}
		if res.Histogram == nil {
			t.Fatalf("engine %q: nil histogram", res.Name)
		}
		if res.Curve == nil {
			t.Fatalf("engine %q: nil curve", res.Name)
		}
		if len(res.Curve.MissRate) != res.Histogram.NumBins() {
			t.Fatalf("engine %q: curve length %d != histogram bins %d",
				res.Name, len(res.Curve.MissRate), res.Histogram.NumBins())
		}
	}
	for _, name := range []string{"olken", "shards", "evictingmap", "quickmrc"} {
		if !seen[name] {
			t.Fatalf("missing result for engine %q", name)
		}
	}
}

func TestRunner_EmptyRunnerProducesNoResults(t *testing.T) {
	r := NewRunner()
	results := r.Run([]uint64{1, 2, 3})
	if len(results) != 0 {
		t.Fatalf("len(results) = %d; want 0", len(results))
	}
}

func TestRunner_EngineErrorDoesNotAffectOthers(t *testing.T) {
	cfg := newTestConfig()
	o, err := NewOlken(cfg)
	if err != nil {
		t.Fatalf("NewOlken: %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	healthy, err := NewOlken(cfg)
	if err != nil {
		t.Fatalf("NewOlken: %v", err)
	}

	r := NewRunner()
	r.Add("broken", o)
	r.Add("healthy", healthy)

	results := r.Run([]uint64{1, 2, 3})
	byName := map[string]RunResult{}
	for _, res := range results {
		byName[res.Name] = res
	}
	if byName["broken"].Err == nil {
		t.Fatal("expected an error from the closed engine")
	}
	if byName["healthy"].Err != nil {
		t.Fatalf("healthy engine returned error: %v", byName["healthy"].Err)
	}
	if byName["healthy"].Histogram == nil {
		t.Fatal("healthy engine has nil histogram")
	}
}
