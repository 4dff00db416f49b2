// Package geom provides the value types shared by the intersection
// predicates and the CSG engine: vectors, rays, segments, planes,
// triangles and axis-aligned boxes. Everything here is stateless.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec is a 3D point or direction.
type Vec = v3.Vec

// Axis indexes a vector component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Component returns the a-th component of v.
func Component(v Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// DominantAxis returns the axis of the largest-magnitude component of v.
// Ties resolve to the lower axis.
func DominantAxis(v Vec) Axis {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax >= ay && ax >= az:
		return AxisX
	case ay >= az:
		return AxisY
	default:
		return AxisZ
	}
}

// Normalize returns v scaled to unit length, or the zero vector if v has
// no length. Unlike v3.Vec.Normalize it never produces NaN.
func Normalize(v Vec) Vec {
	l := v.Length()
	if l == 0 {
		return Vec{}
	}
	return v.MulScalar(1 / l)
}

// Near reports whether a and b are within eps of each other.
func Near(a, b Vec, eps float64) bool {
	return a.Sub(b).Length2() <= eps*eps
}

// IsZero reports whether v has length at most eps.
func IsZero(v Vec, eps float64) bool {
	return v.Length2() <= eps*eps
}

// Lerp interpolates linearly from a to b.
func Lerp(a, b Vec, t float64) Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Min returns the component-wise minimum of a and b.
func Min(a, b Vec) Vec {
	return Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// Max returns the component-wise maximum of a and b.
func Max(a, b Vec) Vec {
	return Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
