package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorFirstStepInitializesAndRunsNoTicks(t *testing.T) {
	a := New(50, DefaultMaxTicksPerStep)
	ticks, drop, err := a.Step(1000)
	require.NoError(t, err)
	assert.Equal(t, 0, ticks)
	assert.Nil(t, drop)
}

func TestAccumulatorCarriesSubTickRemainder(t *testing.T) {
	a := New(50, DefaultMaxTicksPerStep)
	_, _, _ = a.Step(0)

	ticks, _, err := a.Step(120)
	require.NoError(t, err)
	assert.Equal(t, 2, ticks)
	assert.InDelta(t, 0.4, a.Alpha(), 1e-9)
}

func TestAccumulatorCapsCatchUpAndReportsDrop(t *testing.T) {
	a := New(50, 3)
	_, _, _ = a.Step(0)

	ticks, drop, err := a.Step(1000)
	require.NoError(t, err)
	assert.Equal(t, 3, ticks)
	require.NotNil(t, drop)
	assert.Equal(t, int64(850), drop.DiscardedMs)
}

func TestAccumulatorClampsBackwardTime(t *testing.T) {
	a := New(50, DefaultMaxTicksPerStep)
	_, _, _ = a.Step(1000)

	ticks, _, err := a.Step(900)
	require.NoError(t, err)
	assert.Equal(t, 0, ticks)
}
