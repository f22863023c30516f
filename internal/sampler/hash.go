package sampler

// Hash64 and InverseHash64 implement the splitmix64 step (add the
// golden-ratio increment, then the finalizer) as a reversible 64-bit
// hash. Reversibility is required by §3 of the spec so that tests can
// construct adversarial traces with monotone hash preimages (scenario
// S6): InverseHash64(Hash64(k)) == k for all k.
//
// The finalizer is three xorshift rounds, the first two each followed by
// a multiply. Each xorshift-right is
// invertible (the top n bits of the output equal the top n bits of the
// input, which lets the remaining bits be recovered by fixed-point
// iteration); each multiply is invertible because the constants are odd,
// hence units mod 2^64.
const (
	sm64Inc = 0x9E3779B97F4A7C15
	sm64Mul1 = 0xBF58476D1CE4E5B9
	sm64Mul2 = 0x94D049BB133111EB
)

// Hash64 computes a reversible 64-bit hash of key.
func Hash64(key uint64) uint64 {
	z := key + sm64Inc
	z = (z ^ (z >> 30)) * sm64Mul1
	z = (z ^ (z >> 27)) * sm64Mul2
	z = z ^ (z >> 31)
	return z
}

// InverseHash64 recovers key from Hash64(key).
func InverseHash64(hash uint64) uint64 {
	z := invXorShiftRight(hash, 31)
	z = invXorShiftRight(z*invMul2, 27)
	z = invXorShiftRight(z*invMul1, 30)
	return z - sm64Inc
}

var (
	invMul1 = modInverse64(sm64Mul1)
	invMul2 = modInverse64(sm64Mul2)
)

// invXorShiftRight inverts y = x ^ (x >> n) for 0 < n < 64.
//
// The top n bits of x equal the top n bits of y, since (x >> n) is zero
// there. Feeding that fact back as x = y ^ (x >> n) recovers n more
// correct low-order bits on each iteration, so ceil(64/n) rounds fully
// reconstruct x.
func invXorShiftRight(y uint64, n uint) uint64 {
	x := y
	for shift := n; shift < 64; shift += n {
		x = y ^ (x >> n)
	}
	return x
}

// modInverse64 returns the multiplicative inverse of odd a modulo 2^64,
// via Newton-Hensel iteration (each round doubles the number of correct
// low-order bits, starting from the 3 bits guaranteed correct for any
// odd a by x0 = a).
func modInverse64(a uint64) uint64 {
	x := a
	for range 5 {
		x *= 2 - a*x
	}
	return x
}
