// Package rng implements the simulation's seeded deterministic stream.
//
// The contract (spec §4.2) requires byte-identical output across
// platforms for identical (seed, call-count) pairs, fixed-width integer
// arithmetic, and no reliance on wall-clock reseeding. We derive two
// 64-bit PCG seeds from a single caller-supplied seed the same way the
// reference randutil helper does, generalized here to also expose
// getState/setState round-tripping instead of being a one-shot
// constructor.
package rng

import (
	"fmt"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// State is the opaque (seed, call-count) pair described in the data
// model. It is safe to copy and to embed in a persistence envelope.
type State struct {
	Seed      int64
	CallCount uint64
}

// RNG is a world-scoped seeded generator. It is not safe for concurrent
// use; the world that owns it serializes all access through apply/advance.
type RNG struct {
	seed      int64
	callCount uint64
	src       *rand.Rand
}

// New constructs an RNG seeded deterministically from seed.
func New(seed int64) *RNG {
	r := &RNG{}
	r.Reset(seed)
	return r
}

// Reset restores the generator to its initial state for seed, discarding
// any prior call count.
func (r *RNG) Reset(seed int64) {
	r.seed = seed
	r.callCount = 0
	r.src = newSource(seed)
}

func newSource(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Next returns a uniform value in [0,1).
func (r *RNG) Next() float64 {
	r.callCount++
	return r.src.Float64()
}

// NextInt returns a uniform integer in [0,n). Panics if n<=0, matching
// math/rand/v2's own contract.
func (r *RNG) NextInt(n int) int {
	r.callCount++
	return rand.N(r.src, n)
}

// NextUint64 returns a raw 64-bit draw, for callers that need a
// full-width value.
func (r *RNG) NextUint64() uint64 {
	r.callCount++
	return r.src.Uint64()
}

// GetState returns the current (seed, call-count) pair.
func (r *RNG) GetState() State {
	return State{Seed: r.seed, CallCount: r.callCount}
}

// SetState restores the generator to the given (seed, call-count) pair by
// reseeding and replaying exactly call-count draws. This is the only way
// to reach an arbitrary call count deterministically without relying on a
// generator-specific jump-ahead primitive, and it is pure: identical
// (seed, call-count) always yields an identical internal state afterward.
func (r *RNG) SetState(s State) {
	r.seed = s.Seed
	r.callCount = 0
	r.src = newSource(s.Seed)
	r.Advance(s.CallCount)
}

// Advance discards n draws, advancing the call counter without returning
// values. Used by SetState and by replay tooling that fast-forwards to a
// known call count.
func (r *RNG) Advance(n uint64) {
	for i := uint64(0); i < n; i++ {
		r.src.Uint64()
	}
	r.callCount += n
}

func (s State) String() string {
	return fmt.Sprintf("rng.State{Seed:%d, CallCount:%d}", s.Seed, s.CallCount)
}
