// Package randutil centralises how generators are seeded so that every call
// site gets reproducible sequences.
package randutil

import (
	"crypto/sha256"
	"encoding/binary"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// SeedSize is the length in bytes of a table seed.
const SeedSize = 32

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// FromSeed returns a ChaCha8-backed *rand.Rand keyed by a 32-byte seed. The
// stream depends on nothing but the seed.
func FromSeed(seed [SeedSize]byte) *rand.Rand {
	return rand.New(rand.NewChaCha8(seed))
}

// HandKey derives the shuffle key for one hand from the table seed, so every
// hand played on an unchanged seed gets an unrelated stream.
func HandKey(seed [SeedSize]byte, hand uint64) [SeedSize]byte {
	var buf [SeedSize + 8]byte
	copy(buf[:], seed[:])
	binary.BigEndian.PutUint64(buf[SeedSize:], hand)
	return sha256.Sum256(buf[:])
}

// XOR folds contribution into seed position-wise.
func XOR(seed [SeedSize]byte, contribution [SeedSize]byte) [SeedSize]byte {
	for i := range seed {
		seed[i] ^= contribution[i]
	}
	return seed
}

// SeedFromInt64 expands an int64 into a 32-byte seed, for simulations.
func SeedFromInt64(v int64) [SeedSize]byte {
	var out [SeedSize]byte
	r := New(v)
	for i := 0; i < SeedSize; i += 8 {
		x := r.Uint64()
		for j := 0; j < 8; j++ {
			out[i+j] = byte(x >> (8 * j))
		}
	}
	return out
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
