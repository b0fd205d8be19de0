package statusview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/sphereforge/internal/transport"
)

func TestUpdateTracksTickAndSaveState(t *testing.T) {
	m := New()

	updated, _ := m.Update(TransportMsg{State: transport.StateConnected})
	m = updated.(Model)
	assert.Contains(t, m.View(), "connected")

	updated, _ = m.Update(TickMsg{Tick: 7, Hash: "0123456789abcdef"})
	m = updated.(Model)
	assert.Equal(t, uint64(7), m.lastTick)
	assert.Equal(t, "0123456789ab", shortHash(m.lastHash))

	updated, _ = m.Update(SaveMsg{Key: "slot-1", Err: errors.New("disk full")})
	m = updated.(Model)
	assert.Contains(t, m.View(), "disk full")
}

func TestLogMsgAppendsToScrollback(t *testing.T) {
	m := New()

	updated, _ := m.Update(LogMsg{Line: "tick 1 hash=abc"})
	m = updated.(Model)
	assert.Contains(t, m.logView.View(), "tick 1 hash=abc")

	for i := 0; i < logScrollback+10; i++ {
		updated, _ = m.Update(LogMsg{Line: "filler"})
		m = updated.(Model)
	}
	assert.LessOrEqual(t, len(m.logLines), logScrollback)
}
