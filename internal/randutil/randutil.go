package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Use it wherever a reproducible sequence is needed (tests, --seed).
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Fresh returns a ChaCha8-backed *rand.Rand seeded with 256 bits from the
// operating system. Each call yields an independent stream, so a new one is
// taken for every deck.
func Fresh() *rand.Rand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms
		panic(err)
	}
	return rand.New(rand.NewChaCha8(seed))
}

// Source hands out random sources for successive hands. A seeded source
// derives one deterministic stream per hand, an unseeded one uses Fresh.
type Source struct {
	seed   int64
	seeded bool
	n      uint64
}

// NewSource returns a Source; seed 0 means unseeded
func NewSource(seed int64) *Source {
	return &Source{seed: seed, seeded: seed != 0}
}

// Next returns the random source for the next hand
func (s *Source) Next() *rand.Rand {
	if !s.seeded {
		return Fresh()
	}
	s.n++
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[0:], mix(uint64(s.seed)))
	binary.LittleEndian.PutUint64(seed[8:], mix(s.n))
	binary.LittleEndian.PutUint64(seed[16:], mix(uint64(s.seed)+s.n*goldenRatio64))
	binary.LittleEndian.PutUint64(seed[24:], mix(s.n+goldenRatio64))
	return rand.New(rand.NewChaCha8(seed))
}

// Weighted picks an index from weights with probability proportional to its
// weight. Negative weights count as zero; it returns -1 if every weight is zero.
func Weighted(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}

	pick := rng.IntN(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if pick < w {
			return i
		}
		pick -= w
	}
	return len(weights) - 1
}

// Between returns a uniform integer in [lo, hi]. It returns lo when hi < lo.
func Between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
