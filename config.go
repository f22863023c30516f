package mrcurve

import "github.com/codeGROOVE-dev/mrcurve/pkg/histogram"

// EngineConfig configures any of the four engines. Not every field
// applies to every engine; unused fields are ignored (e.g. Sampling is
// irrelevant to Olken).
type EngineConfig struct {
	Sampling     float64
	NumBins      int
	BinSize      uint64
	OverflowMode histogram.OverflowMode
	MaxSize      int
	QMRCSize     int
	Adjust       bool

	epochLimit       uint64
	adjustEpochLimit bool
}

// Option configures an EngineConfig.
type Option func(*EngineConfig)

func defaultConfig() *EngineConfig {
	return &EngineConfig{
		Sampling:         1.0,
		NumBins:          1 << 20,
		BinSize:          1,
		OverflowMode:     histogram.Realloc,
		MaxSize:          1 << 16,
		QMRCSize:         128,
		Adjust:           true,
		adjustEpochLimit: true,
	}
}

// WithSampling sets the hash-threshold sampling ratio used by
// Fixed-Rate SHARDS. Must be in (0, 1]; default 1.0 (no sampling). The
// Evicting-Map and Evicting-QuickMRC engines do not read it; their
// threshold comes from the evicting map alone.
func WithSampling(ratio float64) Option {
	return func(c *EngineConfig) { c.Sampling = ratio }
}

// WithNumBins sets the initial number of finite histogram bins.
func WithNumBins(n int) Option {
	return func(c *EngineConfig) { c.NumBins = n }
}

// WithBinSize sets the initial histogram bin width.
func WithBinSize(b uint64) Option {
	return func(c *EngineConfig) { c.BinSize = b }
}

// WithOverflowMode selects how an out-of-range finite distance is
// resolved; default Realloc, which preserves precision at the cost of
// memory.
func WithOverflowMode(m histogram.OverflowMode) Option {
	return func(c *EngineConfig) { c.OverflowMode = m }
}

// WithMaxSize sets the evicting sampled map's slot count, for the
// Evicting-Map and Evicting-QuickMRC engines.
func WithMaxSize(n int) Option {
	return func(c *EngineConfig) { c.MaxSize = n }
}

// WithQMRCSize sets the age-bucket ladder's bucket count, for the
// Evicting-QuickMRC engine.
func WithQMRCSize(n int) Option {
	return func(c *EngineConfig) { c.QMRCSize = n }
}

// WithAdjustment toggles the sampler's post_process bucket adjustment
// (SHARDS-Adj); default true.
func WithAdjustment(adjust bool) Option {
	return func(c *EngineConfig) { c.Adjust = adjust }
}

// WithFixedEpochLimit pins the age-bucket ladder's epoch_limit to a
// constant instead of letting it double alongside the ladder's capacity
// estimate. By default (no call to this option) the limit adapts.
func WithFixedEpochLimit(limit uint64) Option {
	return func(c *EngineConfig) {
		c.epochLimit = limit
		c.adjustEpochLimit = false
	}
}

func (c *EngineConfig) resolvedEpochLimit() uint64 {
	if c.epochLimit != 0 {
		return c.epochLimit
	}
	// Default: max_keys - qmrc_buckets, or 1 when max_keys does not
	// exceed the bucket count.
	maxKeys := uint64(c.MaxSize)
	buckets := uint64(c.QMRCSize)
	if buckets == 0 || maxKeys <= buckets {
		return 1
	}
	return maxKeys - buckets
}
