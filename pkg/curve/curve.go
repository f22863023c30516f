// Package curve derives miss ratio curves from reuse-distance
// histograms: the miss rate at cache size k*bin_size is the fraction of
// accesses whose reuse distance is k*bin_size or more, which falls out of
// a running prefix sum over the histogram's finite bins.
package curve

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

// ErrEmptyHistogram is returned by FromHistogram when the histogram has
// recorded no accesses at all.
var ErrEmptyHistogram = errors.New("curve: histogram has zero running sum")

// ErrLengthMismatch is returned by the error-metric functions when the
// two curves being compared have different lengths.
var ErrLengthMismatch = errors.New("curve: miss rate curves have different lengths")

// Curve is a miss ratio curve: MissRate[k] is the estimated miss
// probability at a cache holding k*BinSize distinct items.
type Curve struct {
	MissRate []float64
	BinSize  uint64
}

// FromHistogram computes the miss ratio curve implied by h. An LRU of
// size k*bin_size hits only on reuse distances strictly less than
// k*bin_size, so at cache size k*bin_size the hit count is the running
// sum of bins[0..k-1]; the miss rate is the remaining fraction of all
// accesses (including infinite and false-infinite ones, which never
// hit regardless of cache size).
func FromHistogram(h *histogram.Histogram) (*Curve, error) {
	total := h.RunningSum()
	if total == 0 {
		return nil, ErrEmptyHistogram
	}
	rate := make([]float64, h.NumBins())
	var cum uint64
	for k := 0; k < h.NumBins(); k++ {
		rate[k] = float64(total-cum) / float64(total)
		cum += h.Bin(k)
	}
	return &Curve{MissRate: rate, BinSize: h.BinSize()}, nil
}

// MeanAbsoluteError returns the average absolute difference between two
// curves' miss rates, bin by bin.
func MeanAbsoluteError(a, b *Curve) (float64, error) {
	if len(a.MissRate) != len(b.MissRate) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a.MissRate), len(b.MissRate))
	}
	if len(a.MissRate) == 0 {
		return 0, nil
	}
	var sum float64
	for i := range a.MissRate {
		sum += math.Abs(a.MissRate[i] - b.MissRate[i])
	}
	return sum / float64(len(a.MissRate)), nil
}

// MeanSquaredError returns the average squared difference between two
// curves' miss rates, bin by bin.
func MeanSquaredError(a, b *Curve) (float64, error) {
	if len(a.MissRate) != len(b.MissRate) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a.MissRate), len(b.MissRate))
	}
	if len(a.MissRate) == 0 {
		return 0, nil
	}
	var sum float64
	for i := range a.MissRate {
		d := a.MissRate[i] - b.MissRate[i]
		sum += d * d
	}
	return sum / float64(len(a.MissRate)), nil
}

// Encode writes c in the little-endian binary layout: num_bins: u64 |
// bin_size: u64 | miss_rate: f64[num_bins].
func (c *Curve) Encode(w io.Writer) error {
	header := [2]uint64{uint64(len(c.MissRate)), c.BinSize}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("curve: encode header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, c.MissRate); err != nil {
		return fmt.Errorf("curve: encode miss_rate: %w", err)
	}
	return nil
}

// Decode reads a Curve from the layout Encode writes.
func Decode(r io.Reader) (*Curve, error) {
	var header [2]uint64
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("curve: decode header: %w", err)
	}
	numBins := header[0]
	if numBins == 0 || numBins > (1<<32) {
		return nil, fmt.Errorf("curve: decode: implausible num_bins=%d", numBins)
	}
	rate := make([]float64, numBins)
	if err := binary.Read(r, binary.LittleEndian, rate); err != nil {
		return nil, fmt.Errorf("curve: decode miss_rate: %w", err)
	}
	return &Curve{MissRate: rate, BinSize: header[1]}, nil
}
