// Package ladder implements the age-bucket ladder used by the
// Evicting-QuickMRC engine to approximate stack distance without the
// O(log n) tree lookups Olken requires.
//
// Keys are not tracked individually; only counts per "epoch" bucket are
// kept. epochs[0] names the most recent epoch and increases by one each
// time the oldest history is coarsened to make room (merge); epochs is
// always strictly decreasing, and sum(counts) equals the number of live
// keys the ladder is tracking.
package ladder

import (
	"errors"
	"fmt"
)

// ErrTooFewBuckets is returned by New when fewer than two buckets are
// requested; merging requires at least a pair to combine.
var ErrTooFewBuckets = errors.New("ladder: need at least 2 buckets")

// Ladder is the age-bucket structure described above. Not safe for
// concurrent use.
type Ladder struct {
	epochs []int
	counts []uint64

	epochLimit       uint64
	maxKeys          uint64
	adjustEpochLimit bool
	total            uint64
	merges           int
}

// New constructs a Ladder with the given number of buckets, an initial
// capacity estimate maxKeys, and an epoch_limit controlling how many
// keys accumulate in the newest bucket before it is merged to make room
// for a fresh epoch. If adjustEpochLimit is true, epochLimit doubles in
// lockstep with maxKeys as the ladder grows past its initial estimate.
func New(buckets int, maxKeys, epochLimit uint64, adjustEpochLimit bool) (*Ladder, error) {
	if buckets < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewBuckets, buckets)
	}
	epochs := make([]int, buckets)
	for i := range epochs {
		epochs[i] = -i
	}
	return &Ladder{
		epochs:           epochs,
		counts:           make([]uint64, buckets),
		epochLimit:       epochLimit,
		maxKeys:          maxKeys,
		adjustEpochLimit: adjustEpochLimit,
	}, nil
}

// Insert records a brand-new key and returns the epoch it was placed
// in (always the current epoch, epochs[0]).
func (l *Ladder) Insert() int {
	l.total++
	if l.total > l.maxKeys {
		l.maxKeys *= 2
		if l.adjustEpochLimit {
			l.epochLimit *= 2
		}
	}
	if l.counts[0] >= l.epochLimit {
		l.merge()
	}
	l.counts[0]++
	return l.epochs[0]
}

// Lookup re-accesses a key last placed in the given epoch. It returns
// the approximate stack distance: the number of keys counted in the
// key's own bucket or any more recent one, minus one for the key
// itself. The key's bucket membership moves to the current epoch as a
// side effect, so Lookup doubles as the key's reinsertion; callers must
// not also call Insert for the same access.
func (l *Ladder) Lookup(epoch int) uint64 {
	idx := 0
	sd := l.counts[0]
	for l.epochs[idx] > epoch {
		idx++
		sd += l.counts[idx]
	}
	l.counts[idx]--
	sd--

	if l.counts[0] >= l.epochLimit {
		l.merge()
	}
	l.counts[0]++
	return sd
}

// Delete removes a key last placed in the given epoch without
// reinserting it, for callers that are evicting the key outright (the
// counterpart of Insert rather than of Lookup).
func (l *Ladder) Delete(epoch int) {
	idx := 0
	for l.epochs[idx] > epoch {
		idx++
	}
	l.counts[idx]--
	l.total--
}

// merge coarsens the oldest history to free capacity at bucket 0: it
// finds the adjacent pair of buckets with the smallest combined count,
// folds them together, shifts the newer buckets up by one slot to
// vacate index 0, and opens a fresh epoch there.
func (l *Ladder) merge() {
	bestIdx := 1
	bestSum := l.counts[0] + l.counts[1]
	for i := 2; i < len(l.counts); i++ {
		sum := l.counts[i-1] + l.counts[i]
		if sum < bestSum {
			bestSum = sum
			bestIdx = i
		}
	}
	l.counts[bestIdx] = bestSum
	l.merges++

	removeAt := bestIdx - 1
	if removeAt > 0 {
		copy(l.epochs[1:removeAt+1], l.epochs[0:removeAt])
		copy(l.counts[1:removeAt+1], l.counts[0:removeAt])
	}
	l.counts[0] = 0
	l.epochs[0]++
}

// Total returns the number of keys currently tracked by the ladder.
func (l *Ladder) Total() uint64 { return l.total }

// Buckets returns the ladder's fixed bucket count.
func (l *Ladder) Buckets() int { return len(l.counts) }

// EpochLimit returns the current per-bucket threshold at which the
// newest bucket is merged to make room for a new epoch.
func (l *Ladder) EpochLimit() uint64 { return l.epochLimit }

// MaxKeys returns the current capacity estimate driving epoch-limit
// growth.
func (l *Ladder) MaxKeys() uint64 { return l.maxKeys }

// Merges returns the number of merge events the ladder has performed.
func (l *Ladder) Merges() int { return l.merges }

// CurrentEpoch returns epochs[0], the epoch Insert would currently
// assign.
func (l *Ladder) CurrentEpoch() int { return l.epochs[0] }
