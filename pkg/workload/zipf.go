// Package workload generates synthetic access traces for exercising
// and benchmarking the reuse-distance engines against a known skew.
package workload

import (
	"math"
	"math/rand/v2"
)

// Zipf generates n key references drawn from a Zipfian distribution
// over [0, keySpace) with skew parameter theta (0 is uniform; values
// approaching 1 concentrate mass on the lowest-numbered keys). seed
// makes the trace reproducible across runs.
//
// This is the engine-facing counterpart of a cache benchmark's
// key-popularity generator: instead of string cache keys, it yields
// the raw uint64 key stream the four reuse-distance engines consume
// directly.
func Zipf(n, keySpace int, theta float64, seed uint64) []uint64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	trace := make([]uint64, n)

	spread := keySpace + 1
	zeta2 := zeta(2, theta)
	zetaN := zeta(uint64(spread), theta)
	alpha := 1.0 / (1.0 - theta)
	eta := (1 - math.Pow(2.0/float64(spread), 1.0-theta)) / (1.0 - zeta2/zetaN)
	halfPowTheta := 1.0 + math.Pow(0.5, theta)

	for i := range n {
		u := rng.Float64()
		uz := u * zetaN
		var key int
		switch {
		case uz < 1.0:
			key = 0
		case uz < halfPowTheta:
			key = 1
		default:
			key = int(float64(spread) * math.Pow(eta*u-eta+1.0, alpha))
		}
		if key >= keySpace {
			key = keySpace - 1
		}
		trace[i] = uint64(key)
	}
	return trace
}

// zeta computes the generalized harmonic number sum(1/i^theta) for
// i in [1, n], the normalizing constant the Zipf inverse-CDF sampler
// needs.
func zeta(n uint64, theta float64) float64 {
	sum := 0.0
	for i := uint64(1); i <= n; i++ {
		sum += 1.0 / math.Pow(float64(i), theta)
	}
	return sum
}
