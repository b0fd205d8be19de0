package command

import "sort"

// Mode selects what happens to a command whose TargetTick has already
// passed by the time it is enqueued (spec §4.4). It is a build-time
// configuration, not a per-call option.
type Mode int

const (
	// ModeLockstep drops late commands. This is the default.
	ModeLockstep Mode = iota
	// ModeRelaxed reschedules late commands to the next free tick.
	ModeRelaxed
)

// Queue is the tick-scheduled FIFO of typed commands described in spec
// §4.4. It is the only legal path into WorldModel.apply; Queue itself
// never constructs a command, only schedules ones handed to it by a
// Transport's onReceive callback.
type Queue struct {
	mode Mode

	byTick map[uint64][]Command
	// nextIssueIndex tracks per-client issuance order so that, within a
	// tick, commands from the same client preserve the order they were
	// enqueued in, even if the transport delivers them out of wall-clock
	// order.
	nextIssueIndex map[string]uint64
}

// NewQueue constructs an empty Queue in the given mode.
func NewQueue(mode Mode) *Queue {
	return &Queue{
		mode:           mode,
		byTick:         make(map[uint64][]Command),
		nextIssueIndex: make(map[string]uint64),
	}
}

// Enqueue appends cmd, scheduling it for cmd.TargetTick. currentTick is
// the tick the caller believes is "now", used only to detect and handle
// late arrivals per Mode.
func (q *Queue) Enqueue(cmd Command, currentTick uint64) {
	cmd.IssueIndex = q.nextIssueIndex[cmd.ClientID]
	q.nextIssueIndex[cmd.ClientID]++

	target := cmd.TargetTick
	if target <= currentTick {
		switch q.mode {
		case ModeRelaxed:
			target = q.nextFreeTick(currentTick)
		default: // ModeLockstep
			return
		}
	}
	q.byTick[target] = append(q.byTick[target], cmd)
}

// nextFreeTick finds the first tick >= currentTick+1 that has no
// command scheduled for it at all, probing forward from currentTick+1
// on every call.
func (q *Queue) nextFreeTick(currentTick uint64) uint64 {
	t := currentTick + 1
	for {
		if len(q.byTick[t]) == 0 {
			return t
		}
		t++
	}
}

// Flush returns — and removes — exactly the commands scheduled for tick,
// ordered deterministically: primary key ClientID (lexicographic),
// secondary key the transport-assigned Seq, and IssueIndex (arrival
// order) as the last tie-break.
func (q *Queue) Flush(tick uint64) []Command {
	cmds := q.byTick[tick]
	delete(q.byTick, tick)

	sort.SliceStable(cmds, func(i, j int) bool {
		a, b := cmds[i], cmds[j]
		if a.ClientID != b.ClientID {
			return a.ClientID < b.ClientID
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.IssueIndex < b.IssueIndex
	})
	return cmds
}

// PendingCount returns the number of commands currently scheduled for
// tick, observable for tests (spec §4.4).
func (q *Queue) PendingCount(tick uint64) int {
	return len(q.byTick[tick])
}

// Reset clears the queue entirely.
func (q *Queue) Reset() {
	q.byTick = make(map[uint64][]Command)
	q.nextIssueIndex = make(map[string]uint64)
}
