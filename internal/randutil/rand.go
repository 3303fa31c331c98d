// Package randutil centralises how deterministic RNGs are seeded. Every
// table's deck order flows from one int64 seed, so replaying a game is a
// matter of reusing the seed.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. The two
// 64-bit PCG seeds are derived with a SplitMix64 finalizer so nearby seeds
// still produce unrelated streams.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed draws a fresh random seed for a new table. Recorded alongside the
// game so the deal order can be reproduced later.
func Seed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("randutil: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
