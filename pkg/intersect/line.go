package intersect

import (
	"github.com/chazu/carve/pkg/geom"
)

// RayRay intersects the lines through r1 and r2.
//
// Lines whose unit directions have a cross product of length at most eps
// are parallel: LineCollinear if r2's origin lies within eps of r1's line,
// else LineNone. Otherwise both parameters are solved on the pair of
// coordinate axes with the largest 2×2 determinant (the dominant component
// of the cross product), and the two candidate points must lie within eps
// of each other for a LinePoint; skew lines give LineNone. The returned
// point is the midpoint of the two candidates, or r2's origin when
// collinear. Parameters may be negative.
func RayRay(r1, r2 geom.Ray, eps float64) (LineResult, geom.Vec) {
	l1, l2 := r1.Unit(), r2.Unit()
	d1, d2 := l1.Direction, l2.Direction
	cross := d1.Cross(d2)

	if cross.Length() <= eps {
		if l1.DistanceTo(l2.Origin) <= eps {
			return LineCollinear, l2.Origin
		}
		return LineNone, geom.Vec{}
	}

	k := geom.DominantAxis(cross)
	i, j := (k+1)%3, (k+2)%3
	w := l2.Origin.Sub(l1.Origin)

	d1i, d1j := geom.Component(d1, i), geom.Component(d1, j)
	d2i, d2j := geom.Component(d2, i), geom.Component(d2, j)
	wi, wj := geom.Component(w, i), geom.Component(w, j)

	det := d1i*d2j - d1j*d2i
	t := (wi*d2j - wj*d2i) / det
	s := (d1j*wi - d1i*wj) / det

	p1 := l1.At(t)
	p2 := l2.At(s)
	if !geom.Near(p1, p2, eps) {
		return LineNone, geom.Vec{}
	}
	return LinePoint, geom.Lerp(p1, p2, 0.5)
}

// SegmentSegment intersects two segments. It is RayRay on the supporting
// lines restricted to both parameter ranges, widened by eps. Collinear
// segments report LineCollinear only if their ranges overlap; the point
// returned is then the start of the overlap.
func SegmentSegment(s1, s2 geom.Segment, eps float64) (LineResult, geom.Vec) {
	len1, len2 := s1.Length(), s2.Length()
	switch {
	case len1 <= eps && len2 <= eps:
		if geom.Near(s1.A, s2.A, eps) {
			return LinePoint, s1.A
		}
		return LineNone, geom.Vec{}
	case len1 <= eps:
		return pointOnSegment(s1.A, s2, len2, eps)
	case len2 <= eps:
		return pointOnSegment(s2.A, s1, len1, eps)
	}

	r1, r2 := s1.Ray(), s2.Ray()
	res, p := RayRay(r1, r2, eps)
	switch res {
	case LineCollinear:
		ta, tb := r1.Parameter(s2.A), r1.Parameter(s2.B)
		lo := max(0, min(ta, tb))
		hi := min(len1, max(ta, tb))
		if hi < lo-eps {
			return LineNone, geom.Vec{}
		}
		return LineCollinear, r1.At(lo)
	case LinePoint:
		if !inRange(r1.Parameter(p), len1, eps) || !inRange(r2.Parameter(p), len2, eps) {
			return LineNone, geom.Vec{}
		}
		return LinePoint, p
	default:
		return LineNone, geom.Vec{}
	}
}

func pointOnSegment(p geom.Vec, s geom.Segment, length, eps float64) (LineResult, geom.Vec) {
	r := s.Ray()
	if r.DistanceTo(p) <= eps && inRange(r.Parameter(p), length, eps) {
		return LinePoint, p
	}
	return LineNone, geom.Vec{}
}

func inRange(t, length, eps float64) bool {
	return t >= -eps && t <= length+eps
}
