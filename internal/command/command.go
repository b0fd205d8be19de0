// Package command defines the closed set of command tags the simulation
// core accepts (spec §3) and the CommandQueue that schedules them.
//
// Command construction is concentrated here but is meant to be called
// only from internal/input.Factory — that is the single invariant that
// keeps every participant in a multiplayer game on the same command
// stream (spec §4.6). Nothing below prevents another package from
// calling the New* constructors directly; the boundary is social, the
// way the teacher's own protocol package trusts InputFactory-equivalent
// call sites rather than enforcing it with the type system.
package command

// Tag identifies a command's payload shape. The variant set is closed:
// WorldModel.apply logs and drops any tag it does not recognize rather
// than failing the tick (forward-compatibility story for mixed-version
// peers, spec §9).
type Tag string

const (
	TagSelect    Tag = "select"
	TagDeselect  Tag = "deselect"
	TagMove      Tag = "move"
	TagSetPath   Tag = "set_path"
	TagClosePath Tag = "close_path"
	TagSpawn     Tag = "spawn"
	TagStop      Tag = "stop"
	TagMoveDir   Tag = "move_dir"
	// TagDestroy supplements the distilled spec's closed set (SPEC_FULL
	// §3): it gives persistence round-tripping a full unit lifecycle to
	// exercise, per the "hypothetical Destroy command" spec.md already
	// anticipates.
	TagDestroy Tag = "destroy"
)

// knownTags is consulted (through KnownTag) by WorldModel to decide
// whether a tag is forward-compatible noise (log-and-drop) or a real
// defect; Queue does not check tags.
var knownTags = map[Tag]bool{
	TagSelect: true, TagDeselect: true, TagMove: true, TagSetPath: true,
	TagClosePath: true, TagSpawn: true, TagStop: true, TagMoveDir: true,
	TagDestroy: true,
}

// KnownTag reports whether tag is in the closed variant set.
func KnownTag(tag Tag) bool { return knownTags[tag] }

// Vec3 is a 3-vector on (or projected to) the sphere.
type Vec3 struct{ X, Y, Z float64 }

// Command is the tagged, schedulable record described in spec §3. The
// invariant fields (Id, Tag, IssuedTick, TargetTick) are common to every
// variant; Payload carries the tag-specific data.
type Command struct {
	Id         string
	Type       Tag
	IssuedTick uint64
	TargetTick uint64
	Payload    any

	// Seq and ClientID are stamped by the transport, not the factory;
	// they are the secondary/primary sort keys used by CommandQueue's
	// deterministic flush order (spec §4.4, §4.5).
	ClientID string
	Seq      uint64
	// IssueIndex is the order of arrival, stamped by Queue.Enqueue, used
	// as CommandQueue's last tie-break after ClientID and Seq.
	IssueIndex uint64
}

// Payload variants. Each is a plain struct; the closed set of possible
// types is enumerated by the Tag constants above, not by a Go interface
// marker, mirroring how the teacher's protocol package keeps one
// concrete struct per wire message type.

type SelectPayload struct{ UnitID uint64 }
type DeselectPayload struct{}
type MovePayload struct {
	UnitID   uint64
	Position Vec3
}
type SetPathPayload struct {
	UnitID uint64
	Points []Vec3
}
type ClosePathPayload struct{ UnitID uint64 }
type SpawnPayload struct{ Position Vec3 }
type StopPayload struct{ UnitID uint64 }
type MoveDirPayload struct {
	UnitID    uint64
	Direction Vec3
}
type DestroyPayload struct{ UnitID uint64 }

// New constructs a Command with the given tag, id, issued tick and target
// tick. targetTick must be >= issuedTick+1 (I2); the factory is
// responsible for enforcing this before handing the command to a
// transport.
func New(id string, tag Tag, issuedTick, targetTick uint64, payload any) Command {
	return Command{
		Id:         id,
		Type:       tag,
		IssuedTick: issuedTick,
		TargetTick: targetTick,
		Payload:    payload,
	}
}
