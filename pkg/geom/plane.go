package geom

import "math"

// Plane is the set of points p with Normal·(p - Point) == 0.
// Normal is expected to be unit length.
type Plane struct {
	Point  Vec
	Normal Vec
}

// Distance returns the signed distance from p to the plane, positive on
// the side the normal points to.
func (pl Plane) Distance(p Vec) float64 {
	return pl.Normal.Dot(p.Sub(pl.Point))
}

// Side classifies p as -1 (behind), 0 (on the plane within eps) or +1
// (in front).
func (pl Plane) Side(p Vec, eps float64) int {
	return sign(pl.Distance(p), eps)
}

func sign(d, eps float64) int {
	switch {
	case d > eps:
		return 1
	case d < -eps:
		return -1
	default:
		return 0
	}
}

// Sides classifies the three corners of t against the plane.
func (pl Plane) Sides(t Triangle, eps float64) [3]int {
	return [3]int{pl.Side(t.P1, eps), pl.Side(t.P2, eps), pl.Side(t.P3, eps)}
}

// Project returns the point of the plane closest to p.
func (pl Plane) Project(p Vec) Vec {
	return p.Sub(pl.Normal.MulScalar(pl.Distance(p)))
}

// Coincident reports whether two planes are the same within eps, with the
// same or opposite orientation.
func (pl Plane) Coincident(o Plane, eps float64) bool {
	if math.Abs(pl.Distance(o.Point)) > eps {
		return false
	}
	return IsZero(pl.Normal.Cross(o.Normal), eps)
}
