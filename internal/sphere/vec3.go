// Package sphere holds the small amount of vector/quaternion math the
// simulation core needs directly: projecting a position onto the
// terrain surface and deriving an orientation from a velocity. The
// full spherical-path smoothing (Bézier generation, tangent blending)
// that the renderer performs is out of scope (spec §1) and lives
// entirely outside this module.
package sphere

import "math"

// Vec3 is a 3-vector. It mirrors internal/command.Vec3 field-for-field
// so the two convert with a plain struct literal at call sites, keeping
// the command package free of any dependency on sphere math.
type Vec3 struct{ X, Y, Z float64 }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length. The zero vector normalizes
// to itself rather than dividing by zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// ProjectToRadius returns the direction of v scaled to the given radius,
// i.e. v projected onto a sphere of that radius. Used to keep unit
// positions on the terrain surface after each tick's movement step.
func ProjectToRadius(v Vec3, radius float64) Vec3 {
	return v.Normalize().Scale(radius)
}

// Quaternion is a unit quaternion (x,y,z,w).
type Quaternion struct{ X, Y, Z, W float64 }

// IdentityQuaternion is the no-rotation orientation.
var IdentityQuaternion = Quaternion{W: 1}

// FromToRotation derives the unit quaternion that rotates `from` onto
// `to` (both assumed non-zero). Used to orient a unit to face its
// current direction of travel.
func FromToRotation(from, to Vec3) Quaternion {
	from, to = from.Normalize(), to.Normalize()
	d := from.Dot(to)
	if d >= 1-1e-12 {
		return IdentityQuaternion
	}
	if d <= -1+1e-12 {
		// 180-degree rotation: pick any axis orthogonal to `from`.
		axis := Vec3{1, 0, 0}.Cross(from)
		if axis.Length() < 1e-9 {
			axis = Vec3{0, 1, 0}.Cross(from)
		}
		axis = axis.Normalize()
		return Quaternion{X: axis.X, Y: axis.Y, Z: axis.Z, W: 0}
	}
	axis := from.Cross(to)
	s := math.Sqrt((1 + d) * 2)
	invS := 1 / s
	return Quaternion{X: axis.X * invS, Y: axis.Y * invS, Z: axis.Z * invS, W: s * 0.5}
}
