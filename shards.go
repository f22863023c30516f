package mrcurve

import (
	"fmt"

	"github.com/codeGROOVE-dev/mrcurve/internal/sampler"
	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

// Shards is the Fixed-Rate SHARDS engine: it samples keys at a fixed
// ratio and runs Olken over the sample, scaling every histogram insert
// back up by 1/ratio so counts approximate the full population.
type Shards struct {
	sample *sampler.Sampler
	olken  *Olken
	adjust bool
}

// NewShards constructs a Fixed-Rate SHARDS engine.
func NewShards(cfg *EngineConfig, opts ...Option) (*Shards, error) {
	c := mergeConfig(cfg, opts)
	s, err := sampler.New(c.Sampling)
	if err != nil {
		return nil, Wrap(KindConfig, "NewShards", err)
	}
	olken, err := NewOlken(c)
	if err != nil {
		return nil, fmt.Errorf("mrcurve: NewShards: %w", err)
	}
	return &Shards{sample: s, olken: olken, adjust: c.Adjust}, nil
}

// Access implements Engine: rejected keys cost nothing; accepted keys
// are scaled by the sampler's population-count scale factor.
func (s *Shards) Access(key uint64) error {
	if !s.sample.Sample(key) {
		return nil
	}
	return s.olken.access(key, s.sample.Scale())
}

// PostProcess implements Engine: it rebalances the histogram's lowest
// bucket to correct for oversampling noise, then delegates to Olken
// (a no-op).
func (s *Shards) PostProcess() error {
	if s.adjust {
		s.olken.hist.AdjustFirstBuckets(s.sample.AdjustmentDelta())
	}
	return s.olken.PostProcess()
}

// Histogram implements Engine.
func (s *Shards) Histogram() *histogram.Histogram { return s.olken.Histogram() }

// Close implements Engine.
func (s *Shards) Close() error { return s.olken.Close() }
