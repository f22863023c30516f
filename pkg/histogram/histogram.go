// Package histogram implements a fixed-bin-width frequency histogram
// over reuse distances, the shared output type of every reuse-distance
// engine. A Histogram tracks finite distances in equal-width bins, plus
// two distinguished counters for cold misses ("infinity") and for
// finite distances too large to fit the current bins ("false infinity").
package histogram

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// OverflowMode selects how Insert* handles a finite distance that
// exceeds the histogram's current range.
type OverflowMode int

const (
	// AllowOverflow records the value in FalseInfinity, losing its exact
	// position but preserving total counts.
	AllowOverflow OverflowMode = iota
	// MergeBins doubles the bin width (pairwise-summing adjacent bins)
	// until the value fits, trading resolution across the whole
	// histogram for range.
	MergeBins
	// Realloc doubles the bin count, zero-filling the new bins, so range
	// grows without losing resolution.
	Realloc
)

func (m OverflowMode) String() string {
	switch m {
	case AllowOverflow:
		return "allow_overflow"
	case MergeBins:
		return "merge_bins"
	case Realloc:
		return "realloc"
	default:
		return fmt.Sprintf("histogram.OverflowMode(%d)", int(m))
	}
}

// ErrInvalidConfig is returned by New for a non-positive bin count or
// bin width.
var ErrInvalidConfig = errors.New("histogram: num_bins and bin_size must be positive")

// Histogram is a fixed-bin-width frequency table over finite reuse
// distances, plus infinity (cold miss) and false-infinity (finite but
// out of range) counters. Not safe for concurrent use.
type Histogram struct {
	bins         []uint64
	binSize      uint64
	falseInf     uint64
	infinity     uint64
	runningSum   uint64
	overflowMode OverflowMode
}

// New constructs an empty Histogram with numBins bins of width binSize,
// using mode to resolve out-of-range finite inserts.
func New(numBins int, binSize uint64, mode OverflowMode) (*Histogram, error) {
	if numBins <= 0 || binSize == 0 {
		return nil, fmt.Errorf("%w: got num_bins=%d bin_size=%d", ErrInvalidConfig, numBins, binSize)
	}
	return &Histogram{
		bins:         make([]uint64, numBins),
		binSize:      binSize,
		overflowMode: mode,
	}, nil
}

// NumBins returns the current number of finite bins.
func (h *Histogram) NumBins() int { return len(h.bins) }

// BinSize returns the current bin width.
func (h *Histogram) BinSize() uint64 { return h.binSize }

// FalseInfinity returns the count of finite-but-out-of-range inserts
// recorded under AllowOverflow.
func (h *Histogram) FalseInfinity() uint64 { return h.falseInf }

// Infinity returns the count of cold-miss (unbounded distance) inserts.
func (h *Histogram) Infinity() uint64 { return h.infinity }

// RunningSum returns the total number of inserts of any kind (finite,
// false-infinite, or infinite), weighted by scale where applicable.
func (h *Histogram) RunningSum() uint64 { return h.runningSum }

// Bin returns the count in finite bin i.
func (h *Histogram) Bin(i int) uint64 { return h.bins[i] }

// InsertFinite records a single occurrence of reuse distance index.
func (h *Histogram) InsertFinite(index uint64) {
	h.insertScaledFinite(index, 1)
}

// InsertScaledFinite records scale occurrences of reuse distance index
// at once, the form SHARDS-style engines use to recover population
// counts from a sample.
func (h *Histogram) InsertScaledFinite(index, scale uint64) {
	h.insertScaledFinite(index, scale)
}

func (h *Histogram) insertScaledFinite(index, scale uint64) {
	for index >= uint64(len(h.bins))*h.binSize {
		switch h.overflowMode {
		case MergeBins:
			h.mergeBins()
			continue
		case Realloc:
			h.realloc()
			continue
		default: // AllowOverflow
			h.falseInf += scale
			h.runningSum += scale
			return
		}
	}
	h.bins[index/h.binSize] += scale
	h.runningSum += scale
}

// InsertInfinite records a single cold miss.
func (h *Histogram) InsertInfinite() {
	h.infinity++
	h.runningSum++
}

// InsertScaledInfinite records scale cold misses at once.
func (h *Histogram) InsertScaledInfinite(scale uint64) {
	h.infinity += scale
	h.runningSum += scale
}

// mergeBins halves resolution and doubles range: adjacent bin pairs are
// summed into the lower half, the upper half is zeroed, and the bin
// width doubles; the bin count stays the same.
func (h *Histogram) mergeBins() {
	merged := make([]uint64, len(h.bins))
	for i := 0; i < len(h.bins)/2; i++ {
		merged[i] = h.bins[2*i] + h.bins[2*i+1]
	}
	if len(h.bins)%2 == 1 {
		merged[len(h.bins)/2] = h.bins[len(h.bins)-1]
	}
	h.bins = merged
	h.binSize *= 2
}

// realloc doubles the bin count, zero-filling the new upper half, which
// doubles range without losing resolution.
func (h *Histogram) realloc() {
	grown := make([]uint64, len(h.bins)*2)
	copy(grown, h.bins)
	h.bins = grown
}

// AdjustFirstBuckets adds a signed correction to the lowest finite bin,
// the SHARDS-adjustment step that reconciles the sampled count with the
// estimated population count. A negative adjustment that would drive a
// bucket below zero borrows from the next bucket instead, cascading as
// far as necessary. RunningSum is left unchanged: callers are
// responsible for ensuring the correction nets to zero against whatever
// else they've already added to RunningSum.
func (h *Histogram) AdjustFirstBuckets(adjustment int64) {
	if adjustment >= 0 {
		h.bins[0] += uint64(adjustment)
		return
	}
	deficit := uint64(-adjustment)
	for i := 0; i < len(h.bins); i++ {
		if h.bins[i] >= deficit {
			h.bins[i] -= deficit
			return
		}
		deficit -= h.bins[i]
		h.bins[i] = 0
	}
	// Deficit exceeds every bucket; nothing further to borrow from.
}

// IAdd accumulates other's counts into h. Both histograms must share
// the same bin layout.
func (h *Histogram) IAdd(other *Histogram) error {
	if len(h.bins) != len(other.bins) || h.binSize != other.binSize {
		return fmt.Errorf("histogram: IAdd requires matching layout (num_bins=%d/%d bin_size=%d/%d)",
			len(h.bins), len(other.bins), h.binSize, other.binSize)
	}
	for i := range h.bins {
		h.bins[i] += other.bins[i]
	}
	h.falseInf += other.falseInf
	h.infinity += other.infinity
	h.runningSum += other.runningSum
	return nil
}

// Validate reports whether RunningSum is consistent with the sum of
// every bucket plus FalseInfinity and Infinity.
func (h *Histogram) Validate() error {
	var sum uint64
	for _, b := range h.bins {
		sum += b
	}
	sum += h.falseInf + h.infinity
	if sum != h.runningSum {
		return fmt.Errorf("histogram: running_sum=%d but buckets+infinity+false_infinity=%d", h.runningSum, sum)
	}
	return nil
}

// EuclideanError returns the Euclidean distance between two
// same-shaped histograms' finite bins, a coarse measure of how far two
// reuse-distance distributions diverge.
func EuclideanError(a, b *Histogram) (float64, error) {
	if len(a.bins) != len(b.bins) {
		return 0, fmt.Errorf("histogram: EuclideanError requires matching num_bins (%d vs %d)", len(a.bins), len(b.bins))
	}
	var sumSq float64
	for i := range a.bins {
		d := float64(a.bins[i]) - float64(b.bins[i])
		sumSq += d * d
	}
	return math.Sqrt(sumSq), nil
}

// headerFields counts the on-disk layout's fixed preamble: num_bins,
// bin_size, false_infinity, infinity, running_sum, each a little-endian
// uint64. The overflow mode is not part of the wire format: it only
// governs how future inserts resolve out-of-range distances, not the
// recorded counts, so a decoded Histogram carries no opinion on it
// (see DecodeWithMode to set one explicitly).
const headerFields = 5

// Encode writes h in the little-endian binary layout: a fixed header
// followed by num_bins uint64 bin counts.
func (h *Histogram) Encode(w io.Writer) error {
	header := [headerFields]uint64{
		uint64(len(h.bins)),
		h.binSize,
		h.falseInf,
		h.infinity,
		h.runningSum,
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("histogram: encode header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, h.bins); err != nil {
		return fmt.Errorf("histogram: encode bins: %w", err)
	}
	return nil
}

// Decode reads a Histogram from the layout Encode writes. The
// returned Histogram's overflow mode is AllowOverflow (the zero
// value); use DecodeWithMode to set a different one for any future
// inserts into the decoded histogram.
func Decode(r io.Reader) (*Histogram, error) {
	return DecodeWithMode(r, AllowOverflow)
}

// DecodeWithMode reads a Histogram from the layout Encode writes,
// assigning it mode for any future inserts (the wire format itself
// carries no overflow mode).
func DecodeWithMode(r io.Reader, mode OverflowMode) (*Histogram, error) {
	var header [headerFields]uint64
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("histogram: decode header: %w", err)
	}
	numBins := header[0]
	if numBins == 0 || numBins > (1<<32) {
		return nil, fmt.Errorf("histogram: decode: implausible num_bins=%d", numBins)
	}
	bins := make([]uint64, numBins)
	if err := binary.Read(r, binary.LittleEndian, bins); err != nil {
		return nil, fmt.Errorf("histogram: decode bins: %w", err)
	}
	return &Histogram{
		bins:         bins,
		binSize:      header[1],
		falseInf:     header[2],
		infinity:     header[3],
		runningSum:   header[4],
		overflowMode: mode,
	}, nil
}
