package mrcurve

import (
	"fmt"

	"github.com/codeGROOVE-dev/mrcurve/internal/evictmap"
	"github.com/codeGROOVE-dev/mrcurve/internal/ladder"
	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

// QuickMRC is the Evicting-QuickMRC engine: it bounds its working set
// the same way EvictingMap does, but answers reuse-distance queries
// from the age-bucket ladder instead of an order-statistic tree,
// trading exactness for O(1)-ish amortized lookups.
type QuickMRC struct {
	emap   *evictmap.Map
	ladder *ladder.Ladder
	hist   *histogram.Histogram
	clock  uint64
	done   bool
}

// NewQuickMRC constructs an Evicting-QuickMRC engine.
func NewQuickMRC(cfg *EngineConfig, opts ...Option) (*QuickMRC, error) {
	c := mergeConfig(cfg, opts)
	em, err := evictmap.New(c.MaxSize)
	if err != nil {
		return nil, Wrap(KindConfig, "NewQuickMRC", err)
	}
	ld, err := ladder.New(c.QMRCSize, uint64(c.MaxSize), c.resolvedEpochLimit(), c.adjustEpochLimit)
	if err != nil {
		return nil, Wrap(KindConfig, "NewQuickMRC", err)
	}
	hist, err := histogram.New(c.NumBins, c.BinSize, c.OverflowMode)
	if err != nil {
		return nil, Wrap(KindConfig, "NewQuickMRC", err)
	}
	return &QuickMRC{emap: em, ladder: ld, hist: hist}, nil
}

// Access implements Engine. The evicting map's stored "value" for each
// resident key is the age-bucket-ladder epoch it was last placed in,
// not a raw timestamp; it is only known after the ladder is consulted,
// so TryPut is called with a placeholder and corrected via SetValue.
func (q *QuickMRC) Access(key uint64) error {
	if q.done {
		return Wrap(KindInvariant, "QuickMRC.Access", ErrEngineDestroyed)
	}
	res := q.emap.TryPut(key, 0)
	scale := q.emap.ScaleFactor()

	switch res.Outcome {
	case evictmap.Ignored:
		return nil

	case evictmap.Inserted:
		epoch := q.ladder.Insert()
		q.emap.SetValue(key, uint64(epoch))
		q.hist.InsertScaledInfinite(scale)

	case evictmap.Replaced:
		oldEpoch, err := toEpoch(res.OldValue)
		if err != nil {
			return Wrap(KindInvariant, "QuickMRC.Access", err)
		}
		// The evicted key's ladder residency is discarded wholesale
		// (phantom cold miss), same as EvictingMap's tree removal.
		q.ladder.Delete(oldEpoch)
		epoch := q.ladder.Insert()
		q.emap.SetValue(key, uint64(epoch))
		q.hist.InsertScaledInfinite(scale)

	case evictmap.Updated:
		oldEpoch, err := toEpoch(res.OldValue)
		if err != nil {
			return Wrap(KindInvariant, "QuickMRC.Access", err)
		}
		// Lookup both answers the distance query and reinserts the key
		// at the current epoch; no separate Insert call is needed.
		d := q.ladder.Lookup(oldEpoch)
		q.emap.SetValue(key, uint64(q.ladder.CurrentEpoch()))
		q.hist.InsertScaledFinite(d, scale)
	}

	q.clock++
	return nil
}

func toEpoch(v uint64) (int, error) {
	const maxInt = uint64(int(^uint(0) >> 1))
	if v > maxInt {
		return 0, fmt.Errorf("epoch value %d overflows int", v)
	}
	return int(v), nil
}

// PostProcess implements Engine; Evicting-QuickMRC needs no correction.
func (q *QuickMRC) PostProcess() error { return nil }

// Histogram implements Engine.
func (q *QuickMRC) Histogram() *histogram.Histogram { return q.hist }

// Close implements Engine.
func (q *QuickMRC) Close() error {
	q.done = true
	return nil
}
