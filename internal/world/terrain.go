package world

import (
	"math"

	"github.com/lox/sphereforge/internal/sphere"
)

// Terrain is the pure function from a unit direction to a surface
// radius described in spec §3. It is immutable input to the core: if
// mutation is ever added, the mutation must flow through a command, not
// through this type's methods (spec §3's "Terrain field" paragraph).
//
// Concretely it is a fixed-sample height field: twelve icosahedron
// vertex directions each carrying a radius, interpolated by inverse
// angular-distance weighting for any other direction. This gives a
// deterministic, allocation-free, platform-stable lookup without a
// perfect-hash table — this domain has no static key set for go-chd to
// index (DESIGN.md).
type Terrain struct {
	samples [12]terrainSample
}

type terrainSample struct {
	dir    sphere.Vec3
	radius float64
}

// BaseRadius is the radius used when no terrain samples are supplied.
const BaseRadius = 100.0

// NewUniformTerrain returns a Terrain whose surface is a perfect sphere
// of the given radius, useful for tests and for scenarios with no
// elevation variation.
func NewUniformTerrain(radius float64) *Terrain {
	t := &Terrain{}
	dirs := icosahedronVertices()
	for i, d := range dirs {
		t.samples[i] = terrainSample{dir: d, radius: radius}
	}
	return t
}

// NewTerrain returns a Terrain built from twelve per-vertex radii, in
// the same order as icosahedronVertices.
func NewTerrain(radii [12]float64) *Terrain {
	t := &Terrain{}
	dirs := icosahedronVertices()
	for i, d := range dirs {
		t.samples[i] = terrainSample{dir: d, radius: radii[i]}
	}
	return t
}

// RadiusAt returns the terrain surface radius in the given direction.
// dir need not be normalized. The result is a pure function of dir and
// the terrain's fixed samples (I5-adjacent purity requirement carried
// over from StateSurface to this collaborator).
func (t *Terrain) RadiusAt(dir sphere.Vec3) float64 {
	dir = dir.Normalize()
	if dir.Length() == 0 {
		return t.samples[0].radius
	}

	const epsilon = 1e-9
	var weightSum, radiusSum float64
	for _, s := range t.samples {
		cosAngle := clamp(dir.Dot(s.dir), -1, 1)
		angle := math.Acos(cosAngle)
		if angle < epsilon {
			return s.radius
		}
		w := 1 / (angle * angle)
		weightSum += w
		radiusSum += w * s.radius
	}
	return radiusSum / weightSum
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// icosahedronVertices returns the twelve vertex directions of a regular
// icosahedron centered at the origin, a standard fixed basis for
// coarse spherical sampling.
func icosahedronVertices() [12]sphere.Vec3 {
	phi := (1 + math.Sqrt(5)) / 2
	raw := [12][3]float64{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	var out [12]sphere.Vec3
	for i, r := range raw {
		out[i] = sphere.Vec3{X: r[0], Y: r[1], Z: r[2]}.Normalize()
	}
	return out
}
