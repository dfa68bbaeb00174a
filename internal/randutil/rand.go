// Package randutil centralises how boards, simulations and tests derive
// reproducible random sources from a single int64 seed.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Resolve picks the configured seed when present, otherwise one derived from
// the current time, and returns it alongside the source so callers can log it.
func Resolve(seed *int64) (int64, *rand.Rand) {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return s, New(s)
}

// Derive returns the seed for the nth independent stream under base.
// Simulation workers use it so each game is reproducible on its own.
func Derive(base int64, n int) int64 {
	return int64(splitmix(uint64(base) + uint64(n)*goldenRatio64))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
