package clock

import (
	"io"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimLoopDrivenByMockClock(t *testing.T) {
	mockClock := quartz.NewMock(t)
	acc := New(50, DefaultMaxTicksPerStep)

	var ticks int
	loop := NewSimLoop(acc, func() error { ticks++; return nil }, mockClock, zerolog.New(io.Discard))

	n, err := loop.Step()
	require.NoError(t, err)
	assert.Equal(t, 0, n, "no time has elapsed yet")

	mockClock.Advance(220 * time.Millisecond)
	n, err = loop.Step()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, int64(4), loop.TicksRun())
	assert.Equal(t, 4, ticks)
}

func TestSimLoopPropagatesTickError(t *testing.T) {
	mockClock := quartz.NewMock(t)
	acc := New(50, DefaultMaxTicksPerStep)

	call := 0
	boom := assertErr{}
	loop := NewSimLoop(acc, func() error {
		call++
		if call == 2 {
			return boom
		}
		return nil
	}, mockClock, zerolog.New(io.Discard))

	_, err := loop.Step()
	require.NoError(t, err)

	mockClock.Advance(150 * time.Millisecond)
	n, err := loop.Step()
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, n)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
