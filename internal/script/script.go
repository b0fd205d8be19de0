// Package script loads command scripts for the verify harness's
// "--script FILE" operator surface (spec §6, §4.11). A script is a
// plain text file, one command per line, in the same shorthand the
// spec's own testable-properties table already uses for scripts
// ("Spawn{(0,10,0)}@t1", "8 MoveDir/Stop commands over 100 ticks"):
//
//	tag@tick key=value,key=value,...
//
// Blank lines and lines starting with # are ignored. This is a bespoke
// micro-format, not a general-purpose serialization: no library in the
// retrieval pack parses anything shaped like this, and a hand-authored
// determinism test script has no business going through msgp or HCL.
package script

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lox/sphereforge/internal/command"
)

// Load reads path and returns the tick-keyed command map verify.Config
// expects, with each command's TargetTick (and the map key it is
// injected under) taken directly from the line's "@tick" suffix. An
// empty path is not an error — it yields a nil map, meaning "no
// injected commands", matching spec §8's "empty command script... any
// tick count terminates cleanly" property.
func Load(path string) (map[uint64][]command.Command, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("script: open %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[uint64][]command.Command)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, tick, err := parseLine(line, lineNo)
		if err != nil {
			return nil, fmt.Errorf("script: %s:%d: %w", path, lineNo, err)
		}
		out[tick] = append(out[tick], cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("script: reading %s: %w", path, err)
	}
	return out, nil
}

func parseLine(line string, lineNo int) (command.Command, uint64, error) {
	head, rest, _ := strings.Cut(line, " ")
	tagPart, tickPart, ok := strings.Cut(head, "@")
	if !ok {
		return command.Command{}, 0, fmt.Errorf("missing @tick in %q", head)
	}
	tick, err := strconv.ParseUint(tickPart, 10, 64)
	if err != nil {
		return command.Command{}, 0, fmt.Errorf("bad tick %q: %w", tickPart, err)
	}

	tag := command.Tag(tagPart)
	fields := parseFields(rest)

	var payload any
	switch tag {
	case command.TagSpawn:
		payload = command.SpawnPayload{Position: fields.vec3("")}
	case command.TagSelect:
		payload = command.SelectPayload{UnitID: fields.uint("unit")}
	case command.TagDeselect:
		payload = command.DeselectPayload{}
	case command.TagMove:
		payload = command.MovePayload{UnitID: fields.uint("unit"), Position: fields.vec3("")}
	case command.TagSetPath:
		payload = command.SetPathPayload{UnitID: fields.uint("unit"), Points: fields.points()}
	case command.TagClosePath:
		payload = command.ClosePathPayload{UnitID: fields.uint("unit")}
	case command.TagStop:
		payload = command.StopPayload{UnitID: fields.uint("unit")}
	case command.TagMoveDir:
		payload = command.MoveDirPayload{UnitID: fields.uint("unit"), Direction: fields.vec3("")}
	case command.TagDestroy:
		payload = command.DestroyPayload{UnitID: fields.uint("unit")}
	default:
		return command.Command{}, 0, fmt.Errorf("unknown command tag %q", tagPart)
	}

	id := fmt.Sprintf("script-%d", lineNo)
	cmd := command.New(id, tag, tick, tick, payload)
	cmd.ClientID = "script"
	return cmd, tick, nil
}

// fieldSet is the parsed key=value,key=value list trailing a script
// line's "tag@tick".
type fieldSet map[string]string

func parseFields(s string) fieldSet {
	out := make(fieldSet)
	// Commas inside parentheses belong to a point tuple, not the list.
	depth, start := 0, 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) {
			switch s[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if s[i] != ',' || depth > 0 {
				continue
			}
		}
		if k, v, ok := strings.Cut(s[start:i], "="); ok {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		start = i + 1
	}
	return out
}

func (f fieldSet) uint(key string) uint64 {
	v, _ := strconv.ParseUint(f[key], 10, 64)
	return v
}

func (f fieldSet) float(key string) float64 {
	v, _ := strconv.ParseFloat(f[key], 64)
	return v
}

// vec3 reads the "x"/"y"/"z" keys (prefix is reserved for a future
// multi-vector payload shape; every current payload has at most one
// bare vector, so prefix is always "").
func (f fieldSet) vec3(prefix string) command.Vec3 {
	return command.Vec3{X: f.float(prefix + "x"), Y: f.float(prefix + "y"), Z: f.float(prefix + "z")}
}

// points parses "points=(x,y,z);(x,y,z);..." for SetPath.
func (f fieldSet) points() []command.Vec3 {
	raw := f["points"]
	if raw == "" {
		return nil
	}
	var pts []command.Vec3
	for _, p := range strings.Split(raw, ";") {
		p = strings.TrimSuffix(strings.TrimPrefix(p, "("), ")")
		parts := strings.Split(p, ",")
		if len(parts) != 3 {
			continue
		}
		x, _ := strconv.ParseFloat(parts[0], 64)
		y, _ := strconv.ParseFloat(parts[1], 64)
		z, _ := strconv.ParseFloat(parts[2], 64)
		pts = append(pts, command.Vec3{X: x, Y: y, Z: z})
	}
	return pts
}
