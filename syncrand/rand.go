// Package syncrand provides the synchronized random source shared by every
// peer of a lockstep simulation. Two sources built from the same seed yield
// the same sequence on every platform.
package syncrand

import "math/rand/v2"

// Rand is a seeded PCG generator. It is not safe for concurrent use; the
// scheduler draws from it on the simulation goroutine only.
type Rand struct {
	seed  uint64
	pcg   *rand.PCG
	draws uint64
}

// New returns a source seeded with seed.
func New(seed uint64) *Rand {
	return &Rand{seed: seed, pcg: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// Next returns the next 32-bit value in the sequence.
func (r *Rand) Next() uint32 {
	r.draws++
	return uint32(r.pcg.Uint64() >> 32)
}

// Draws reports how many values have been taken. Peers compare it to detect
// desyncs.
func (r *Rand) Draws() uint64 { return r.draws }

func (r *Rand) Seed() uint64 { return r.seed }

// Clone returns an independent source positioned at the same point in the
// sequence.
func (r *Rand) Clone() *Rand {
	c := New(r.seed)
	for range r.draws {
		c.Next()
	}
	return c
}
