// Package pathplan is the path-planner collaborator referenced by spec
// §4.7's Move semantics: a pure function of the sphere, an obstacle set,
// and a start/end pair, that produces the waypoint list WorldModel
// stores against a unit. Any randomness it needs comes from the core
// RNG (spec §3, I4) — it never seeds its own.
package pathplan

import (
	"math"

	"github.com/lox/sphereforge/internal/rng"
	"github.com/lox/sphereforge/internal/sphere"
)

// Obstacle is a spherical exclusion zone: a direction and an angular
// radius (radians) a path should not pass within.
type Obstacle struct {
	Dir    sphere.Vec3
	Radius float64
}

// Radius is the terrain radius function the plan's output is projected
// onto; it matches world.Terrain.RadiusAt without importing the world
// package (path planning must stay a leaf dependency).
type Radius func(dir sphere.Vec3) float64

const defaultSegments = 8

// Plan computes an ordered waypoint list along the great-circle arc from
// start to end, projected onto the given radius function, deflected
// around any obstacle the arc would otherwise pass through. r supplies
// randomness only to break ties when a waypoint sits equidistant from
// two deflection directions; most calls never consume a draw.
func Plan(start, end sphere.Vec3, radiusFn Radius, obstacles []Obstacle, r *rng.RNG) []sphere.Vec3 {
	startDir, endDir := start.Normalize(), end.Normalize()
	if startDir.Length() == 0 || endDir.Length() == 0 {
		return []sphere.Vec3{end}
	}

	points := make([]sphere.Vec3, 0, defaultSegments+1)
	for i := 1; i <= defaultSegments; i++ {
		t := float64(i) / float64(defaultSegments)
		dir := slerp(startDir, endDir, t)
		dir = deflect(dir, obstacles, r)
		points = append(points, sphere.ProjectToRadius(dir, radiusFn(dir)))
	}
	return points
}

// slerp performs spherical linear interpolation between two unit
// vectors.
func slerp(a, b sphere.Vec3, t float64) sphere.Vec3 {
	cosOmega := clamp(a.Dot(b), -1, 1)
	omega := math.Acos(cosOmega)
	if omega < 1e-9 {
		return a
	}
	sinOmega := math.Sin(omega)
	wa := math.Sin((1-t)*omega) / sinOmega
	wb := math.Sin(t*omega) / sinOmega
	return a.Scale(wa).Add(b.Scale(wb)).Normalize()
}

// deflect nudges dir away from any obstacle it falls within, choosing
// the nearer of the two tangent escape directions; if both are equally
// near, the tie is broken with a draw from r (consuming the core RNG,
// never an independent source).
func deflect(dir sphere.Vec3, obstacles []Obstacle, r *rng.RNG) sphere.Vec3 {
	for _, o := range obstacles {
		angle := math.Acos(clamp(dir.Dot(o.Dir.Normalize()), -1, 1))
		if angle >= o.Radius {
			continue
		}
		tangent := tangentAxis(o.Dir)
		optionA := rotateAround(o.Dir, tangent, o.Radius)
		optionB := rotateAround(o.Dir, tangent, -o.Radius)
		distA := angle - dir.Dot(optionA)
		distB := angle - dir.Dot(optionB)
		switch {
		case distA < distB:
			dir = optionA
		case distB < distA:
			dir = optionB
		default:
			if r != nil && r.NextInt(2) == 0 {
				dir = optionA
			} else {
				dir = optionB
			}
		}
	}
	return dir
}

func tangentAxis(dir sphere.Vec3) sphere.Vec3 {
	up := sphere.Vec3{X: 0, Y: 1, Z: 0}
	axis := dir.Cross(up)
	if axis.Length() < 1e-6 {
		axis = dir.Cross(sphere.Vec3{X: 1, Y: 0, Z: 0})
	}
	return axis.Normalize()
}

// rotateAround rotates dir about axis by angle radians (Rodrigues'
// rotation formula).
func rotateAround(dir, axis sphere.Vec3, angle float64) sphere.Vec3 {
	cosT, sinT := math.Cos(angle), math.Sin(angle)
	term1 := dir.Scale(cosT)
	term2 := axis.Cross(dir).Scale(sinT)
	term3 := axis.Scale(axis.Dot(dir) * (1 - cosT))
	return term1.Add(term2).Add(term3).Normalize()
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
