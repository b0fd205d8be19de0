package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIsStrictlyIncreasingFromDefaultBase(t *testing.T) {
	g := New()
	assert.Equal(t, uint64(DefaultBase), g.Next())
	assert.Equal(t, uint64(DefaultBase+1), g.Next())
	assert.Equal(t, uint64(DefaultBase+2), g.Next())
}

func TestNewWithBaseStartsAtBase(t *testing.T) {
	g := NewWithBase(1000)
	assert.Equal(t, uint64(1000), g.Next())
	assert.Equal(t, uint64(1001), g.Next())
}

func TestGetStateSetStateRoundTrip(t *testing.T) {
	g := New()
	g.Next()
	g.Next()
	g.Next()
	state := g.GetState()

	h := New()
	h.SetState(state)
	assert.Equal(t, g.Next(), h.Next())
}

func TestResetRestoresDefaultBase(t *testing.T) {
	g := New()
	g.Next()
	g.Next()
	g.Reset()
	assert.Equal(t, uint64(DefaultBase), g.Next())
}
