package sampler

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRatio is returned by New when the sampling ratio is outside
// (0, 1].
var ErrInvalidRatio = errors.New("sampler: ratio must be in (0, 1]")

// twoTo64 is 2^64, exactly representable as a float64.
const twoTo64 = 18446744073709551616.0

// Sampler implements hash-threshold sampling: a key is sampled iff
// Hash64(key) <= threshold, where threshold is derived from the target
// ratio r so that, over uniformly distributed hashes, a fraction r of
// keys are accepted.
//
// Not safe for concurrent use.
type Sampler struct {
	ratio     float64
	threshold uint64
	scale     uint64

	seen      uint64
	processed uint64
}

// New constructs a Sampler targeting the given ratio, which must be in
// (0, 1]. A ratio of 1.0 accepts every key.
func New(ratio float64) (*Sampler, error) {
	if ratio <= 0 || ratio > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRatio, ratio)
	}
	s := &Sampler{
		ratio:     ratio,
		threshold: thresholdFor(ratio),
		scale:     scaleFor(ratio),
	}
	return s, nil
}

// thresholdFor computes T = floor(r*2^64) - 1, the largest hash value
// accepted at ratio r, clamped so r=1.0 accepts every hash and
// vanishingly small r accepts only hash 0.
func thresholdFor(r float64) uint64 {
	f := r * twoTo64
	if f >= twoTo64 {
		return math.MaxUint64
	}
	if f < 1 {
		return 0
	}
	return uint64(f) - 1
}

// scaleFor returns round(1/r), the factor by which sampled counts must
// be multiplied to estimate population counts.
func scaleFor(r float64) uint64 {
	return uint64(math.Round(1 / r))
}

// ThresholdFromScale derives a hash threshold from an already-known
// scale factor, for components (the evicting sampled map) whose
// effective ratio is 1/scale rather than a directly configured ratio.
func ThresholdFromScale(scale uint64) uint64 {
	if scale <= 1 {
		return math.MaxUint64
	}
	return thresholdFor(1 / float64(scale))
}

// ScaleFromThreshold is the inverse of ThresholdFromScale: given a
// threshold observed on a filled evicting sampled map, it estimates the
// population scale factor 1/T_effective, where T_effective = threshold /
// 2^64.
func ScaleFromThreshold(threshold uint64) uint64 {
	if threshold == math.MaxUint64 {
		return 1
	}
	effective := float64(threshold) / twoTo64
	if effective <= 0 {
		return 0
	}
	return uint64(math.Round(1 / effective))
}

// Sample records the presence of key and reports whether it is selected
// by the threshold test.
func (s *Sampler) Sample(key uint64) bool {
	s.seen++
	if Hash64(key) > s.threshold {
		return false
	}
	s.processed++
	return true
}

// Ratio returns the configured target sampling ratio.
func (s *Sampler) Ratio() float64 { return s.ratio }

// Threshold returns the current accept threshold on the hash space.
func (s *Sampler) Threshold() uint64 { return s.threshold }

// Scale returns round(1/ratio), the population-count scale factor.
func (s *Sampler) Scale() uint64 { return s.scale }

// Seen returns the number of keys presented to Sample.
func (s *Sampler) Seen() uint64 { return s.seen }

// Processed returns the number of keys accepted by Sample.
func (s *Sampler) Processed() uint64 { return s.processed }

// SetThreshold replaces the accept threshold, recomputing the derived
// ratio and scale. Used by the evicting-map engine when the sample's
// effective ratio shrinks as the map fills and its threshold is
// refreshed downward.
func (s *Sampler) SetThreshold(threshold uint64) {
	s.threshold = threshold
	s.ratio = float64(threshold) / twoTo64
	if s.ratio > 0 {
		s.scale = uint64(math.Round(1 / s.ratio))
	} else {
		s.scale = 0
	}
}

// AdjustmentDelta returns the bucket-count correction recommended by
// spec §4.1's Open Question: the signed difference between the
// population count implied by the observed sample rate (seen*ratio) and
// the count actually processed, scaled back up to population units.
// Engines add this to the histogram's lowest finite bucket before
// deriving the MRC.
func (s *Sampler) AdjustmentDelta() int64 {
	if s.seen == 0 {
		return 0
	}
	expected := float64(s.seen) * s.ratio
	delta := expected - float64(s.processed)
	return int64(math.Round(delta * float64(s.scale)))
}
