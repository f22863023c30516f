package mrcurve

import (
	"fmt"

	"github.com/codeGROOVE-dev/mrcurve/internal/evictmap"
	"github.com/codeGROOVE-dev/mrcurve/internal/splay"
	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

// EvictingMap bounds its working set to a fixed number of slots via the
// evicting sampled map, rather than sampling a fraction of keys up
// front: capacity pressure alone determines which keys are tracked.
type EvictingMap struct {
	emap  *evictmap.Map
	tree  splay.Tree
	hist  *histogram.Histogram
	clock uint64
	done  bool
}

// NewEvictingMap constructs an Evicting-Map engine with room for
// cfg.MaxSize resident keys.
func NewEvictingMap(cfg *EngineConfig, opts ...Option) (*EvictingMap, error) {
	c := mergeConfig(cfg, opts)
	em, err := evictmap.New(c.MaxSize)
	if err != nil {
		return nil, Wrap(KindConfig, "NewEvictingMap", err)
	}
	hist, err := histogram.New(c.NumBins, c.BinSize, c.OverflowMode)
	if err != nil {
		return nil, Wrap(KindConfig, "NewEvictingMap", err)
	}
	return &EvictingMap{emap: em, hist: hist}, nil
}

// Access implements Engine.
func (e *EvictingMap) Access(key uint64) error {
	if e.done {
		return Wrap(KindInvariant, "EvictingMap.Access", ErrEngineDestroyed)
	}
	res := e.emap.TryPut(key, e.clock)
	scale := e.emap.ScaleFactor()

	switch res.Outcome {
	case evictmap.Ignored:
		return nil

	case evictmap.Inserted:
		if err := e.tree.Insert(e.clock); err != nil {
			return Wrap(KindInvariant, "EvictingMap.Access", fmt.Errorf("insert: %w", err))
		}
		e.hist.InsertScaledInfinite(scale)

	case evictmap.Replaced:
		if err := e.tree.Remove(res.OldValue); err != nil {
			return Wrap(KindInvariant, "EvictingMap.Access", fmt.Errorf("remove evicted timestamp: %w", err))
		}
		if err := e.tree.Insert(e.clock); err != nil {
			return Wrap(KindInvariant, "EvictingMap.Access", fmt.Errorf("insert: %w", err))
		}
		// The evicted key becomes a phantom cold miss: its history is
		// discarded along with its slot.
		e.hist.InsertScaledInfinite(scale)

	case evictmap.Updated:
		d := e.tree.ReverseRank(res.OldValue)
		if err := e.tree.Remove(res.OldValue); err != nil {
			return Wrap(KindInvariant, "EvictingMap.Access", fmt.Errorf("remove stale timestamp: %w", err))
		}
		if err := e.tree.Insert(e.clock); err != nil {
			return Wrap(KindInvariant, "EvictingMap.Access", fmt.Errorf("insert: %w", err))
		}
		e.hist.InsertScaledFinite(uint64(d), scale)
	}

	e.clock++
	return nil
}

// PostProcess implements Engine; the evicting map needs no correction
// (its threshold self-adjusts at capacity rather than requiring a
// post-hoc bucket rebalance).
func (e *EvictingMap) PostProcess() error { return nil }

// Histogram implements Engine.
func (e *EvictingMap) Histogram() *histogram.Histogram { return e.hist }

// Close implements Engine.
func (e *EvictingMap) Close() error {
	e.done = true
	return nil
}
