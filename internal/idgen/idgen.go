// Package idgen implements the monotonic integer allocator used for both
// entity IDs and command IDs (spec §4.3). IdGen is strictly-increasing
// and part of authoritative state: two worlds replaying the same command stream must allocate the
// same IDs in the same order.
package idgen

// DefaultBase is the counter value returned by the first call to Next
// after construction or Reset with no explicit base.
const DefaultBase = 1

// IdGen is a world-scoped monotonic counter. It is not safe for
// concurrent use; callers serialize access through WorldModel.apply.
type IdGen struct {
	base    uint64
	counter uint64
}

// New constructs an IdGen whose first allocation is DefaultBase.
func New() *IdGen {
	g := &IdGen{}
	g.Reset()
	return g
}

// NewWithBase constructs an IdGen whose first allocation is base.
func NewWithBase(base uint64) *IdGen {
	g := &IdGen{}
	g.ResetTo(base)
	return g
}

// Next returns the current counter value and increments it. The counter
// never reuses a value within a run (I1).
func (g *IdGen) Next() uint64 {
	v := g.counter
	g.counter++
	return v
}

// Reset restores the counter to DefaultBase.
func (g *IdGen) Reset() {
	g.ResetTo(DefaultBase)
}

// ResetTo restores the counter to a configured base.
func (g *IdGen) ResetTo(base uint64) {
	g.base = base
	g.counter = base
}

// GetState returns the current counter value for serialization. The
// counter is part of authoritative state (spec §3) and travels inside
// persistence payloads.
func (g *IdGen) GetState() uint64 {
	return g.counter
}

// SetState restores the counter to a previously observed value.
func (g *IdGen) SetState(counter uint64) {
	g.counter = counter
}
