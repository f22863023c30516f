package mrcurve

import (
	"fmt"

	"github.com/codeGROOVE-dev/mrcurve/internal/splay"
	"github.com/codeGROOVE-dev/mrcurve/internal/tsmap"
	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

// Olken computes exact reuse distances via an order-statistic tree of
// live timestamps and a map from key to its most recent timestamp.
type Olken struct {
	tree  splay.Tree
	seen  *tsmap.Map
	hist  *histogram.Histogram
	clock uint64
	done  bool
}

// NewOlken constructs an exact Olken engine.
func NewOlken(cfg *EngineConfig, opts ...Option) (*Olken, error) {
	c := mergeConfig(cfg, opts)
	hist, err := histogram.New(c.NumBins, c.BinSize, c.OverflowMode)
	if err != nil {
		return nil, Wrap(KindConfig, "NewOlken", err)
	}
	return &Olken{seen: tsmap.New(), hist: hist}, nil
}

// Access implements Engine.
func (o *Olken) Access(key uint64) error {
	return o.access(key, 1)
}

// access is the scale-parameterized core Fixed-Rate SHARDS reuses to
// weight sampled accesses back up to population counts.
func (o *Olken) access(key uint64, scale uint64) error {
	if o.done {
		return Wrap(KindInvariant, "Olken.Access", ErrEngineDestroyed)
	}
	if t0, ok := o.seen.Lookup(key); ok {
		d := o.tree.ReverseRank(t0)
		if err := o.tree.Remove(t0); err != nil {
			return Wrap(KindInvariant, "Olken.Access", fmt.Errorf("remove stale timestamp: %w", err))
		}
		if err := o.tree.Insert(o.clock); err != nil {
			return Wrap(KindInvariant, "Olken.Access", fmt.Errorf("insert current timestamp: %w", err))
		}
		o.seen.Put(key, o.clock)
		o.hist.InsertScaledFinite(uint64(d), scale)
	} else {
		o.seen.Put(key, o.clock)
		if err := o.tree.Insert(o.clock); err != nil {
			return Wrap(KindInvariant, "Olken.Access", fmt.Errorf("insert cold timestamp: %w", err))
		}
		o.hist.InsertScaledInfinite(scale)
	}
	o.clock++
	return nil
}

// PostProcess implements Engine; Olken requires no correction.
func (o *Olken) PostProcess() error { return nil }

// Histogram implements Engine.
func (o *Olken) Histogram() *histogram.Histogram { return o.hist }

// Close implements Engine.
func (o *Olken) Close() error {
	o.done = true
	return nil
}

func mergeConfig(cfg *EngineConfig, opts []Option) *EngineConfig {
	c := defaultConfig()
	if cfg != nil {
		*c = *cfg
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
