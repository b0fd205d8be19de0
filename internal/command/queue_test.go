package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cmdAt(id string, targetTick uint64, clientID string, seq uint64) Command {
	c := New(id, TagStop, 0, targetTick, nil)
	c.ClientID = clientID
	c.Seq = seq
	return c
}

func TestFlushOrdersByClientThenSeqThenIssueIndex(t *testing.T) {
	q := NewQueue(ModeLockstep)

	q.Enqueue(cmdAt("b1", 5, "bob", 1), 0)
	q.Enqueue(cmdAt("a1", 5, "alice", 2), 0)
	q.Enqueue(cmdAt("a0", 5, "alice", 1), 0)

	flushed := q.Flush(5)
	require.Len(t, flushed, 3)
	assert.Equal(t, "a0", flushed[0].Id)
	assert.Equal(t, "a1", flushed[1].Id)
	assert.Equal(t, "b1", flushed[2].Id)
}

func TestFlushRemovesScheduledCommands(t *testing.T) {
	q := NewQueue(ModeLockstep)
	q.Enqueue(cmdAt("c1", 3, "alice", 1), 0)

	assert.Equal(t, 1, q.PendingCount(3))
	q.Flush(3)
	assert.Equal(t, 0, q.PendingCount(3))
	assert.Empty(t, q.Flush(3))
}

func TestLockstepModeDropsLateCommands(t *testing.T) {
	q := NewQueue(ModeLockstep)
	q.Enqueue(cmdAt("late", 2, "alice", 1), 5)
	assert.Equal(t, 0, q.PendingCount(2))
	assert.Equal(t, 0, q.PendingCount(5))
	assert.Equal(t, 0, q.PendingCount(6))
}

func TestRelaxedModeReschedulesLateCommandsForward(t *testing.T) {
	q := NewQueue(ModeRelaxed)
	q.Enqueue(cmdAt("late", 2, "alice", 1), 5)
	assert.Equal(t, 1, q.PendingCount(6))
}

func TestRelaxedModeSkipsOccupiedRescheduleTicks(t *testing.T) {
	q := NewQueue(ModeRelaxed)
	q.Enqueue(cmdAt("on-time", 6, "alice", 1), 5)
	q.Enqueue(cmdAt("late", 1, "bob", 1), 5)

	assert.Equal(t, 1, q.PendingCount(6))
	assert.Equal(t, 1, q.PendingCount(7))
}

func TestResetClearsAllPendingCommands(t *testing.T) {
	q := NewQueue(ModeLockstep)
	q.Enqueue(cmdAt("c1", 3, "alice", 1), 0)
	q.Reset()
	assert.Equal(t, 0, q.PendingCount(3))
}
