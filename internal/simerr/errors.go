// Package simerr defines the closed set of error kinds surfaced by the
// simulation core, per the error handling design.
package simerr

import "errors"

// Sentinel errors for conditions that a caller may want to test with
// errors.Is. Soft failures (EntityNotFound, CommandUnknown) are logged and
// recovered locally; they are exported so tests can assert on them, not so
// callers propagate them out of a tick.
var (
	// ErrConfigInvalid marks a bad tick rate, missing seed, or other
	// rejected configuration value.
	ErrConfigInvalid = errors.New("simerr: invalid configuration")

	// ErrTransportDisconnected is returned by Transport.send when no
	// connection is established and the variant does not buffer sends.
	ErrTransportDisconnected = errors.New("simerr: transport disconnected")

	// ErrTransportBackpressure is returned when a transport's outbound
	// queue is full.
	ErrTransportBackpressure = errors.New("simerr: transport send queue full")

	// ErrCommandUnknown marks a command tag outside the closed variant
	// set. WorldModel.apply logs and drops it; it never aborts a tick.
	ErrCommandUnknown = errors.New("simerr: unknown command tag")

	// ErrEntityNotFound marks a command that targeted an absent entity.
	// Recovered locally by the caller; never propagated as a tick
	// failure.
	ErrEntityNotFound = errors.New("simerr: entity not found")

	// ErrCorruptedSave marks a checksum mismatch on load.
	ErrCorruptedSave = errors.New("simerr: corrupted save")

	// ErrIncompatibleVersion marks a save envelope newer than this
	// implementation understands.
	ErrIncompatibleVersion = errors.New("simerr: incompatible save version")

	// ErrStorageUnavailable marks a persistence backend that could not
	// be reached.
	ErrStorageUnavailable = errors.New("simerr: storage unavailable")

	// ErrNotAuthenticated marks an authentication failure against the
	// remote persistence backend.
	ErrNotAuthenticated = errors.New("simerr: not authenticated")

	// ErrDeterminismViolation is reported by the verify harness only;
	// the runtime itself never compares hashes between peers.
	ErrDeterminismViolation = errors.New("simerr: determinism violation")
)

// InvariantBreach marks a fatal internal invariant failure (negative tick,
// duplicate id, out-of-range waypoint index). Unlike the sentinels above
// this aborts the tick that produced it; World builds it with
// NewInvariantBreach, attaching its debug snapshot bytes.
type InvariantBreach struct {
	Reason   string
	Snapshot []byte // diagnostic state surface bytes at time of breach
}

func (e *InvariantBreach) Error() string {
	return "simerr: invariant breach: " + e.Reason
}

// NewInvariantBreach constructs an InvariantBreach carrying a diagnostic
// snapshot for post-mortem inspection.
func NewInvariantBreach(reason string, snapshot []byte) *InvariantBreach {
	return &InvariantBreach{Reason: reason, Snapshot: snapshot}
}
