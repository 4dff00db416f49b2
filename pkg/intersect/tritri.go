package intersect

import (
	"math"

	"github.com/chazu/carve/pkg/geom"
)

// TriangleTriangle intersects two triangles.
//
// The corners of a are classified against b's plane. If they all lie on
// one side the result is None, and if they all lie on the plane the
// triangles are coplanar and the result is CoplanarFaceFace or None from
// CoplanarTriangles. Otherwise the line where the two planes meet is
// intersected with each triangle and the two chords are overlapped along
// it: no overlap is None, an overlap no longer than eps is Point, and a
// longer overlap is returned as the segment. The segment is tagged
// EdgeEdge when both chords run along an edge of their triangle, EdgeFace
// when one does, and NoncoplanarFaceFace otherwise.
func TriangleTriangle(a, b geom.Triangle, eps float64) (TriangleResult, geom.Segment) {
	na, nb := a.Normal(), b.Normal()
	if geom.IsZero(na, 0) || geom.IsZero(nb, 0) {
		return None, geom.Segment{}
	}

	sa := b.Plane().Sides(a, eps)
	if sa[0] == sa[1] && sa[1] == sa[2] {
		if sa[0] == 0 && CoplanarTriangles(a, b, eps) {
			return CoplanarFaceFace, geom.Segment{}
		}
		return None, geom.Segment{}
	}
	sb := a.Plane().Sides(b, eps)
	if sb[0] == sb[1] && sb[1] == sb[2] {
		if sb[0] == 0 && CoplanarTriangles(a, b, eps) {
			return CoplanarFaceFace, geom.Segment{}
		}
		return None, geom.Segment{}
	}

	line, ok := planeIntersection(a.Plane(), b.Plane(), eps)
	if !ok {
		return None, geom.Segment{}
	}

	ca, okA := TriangleRay(a, line, eps)
	cb, okB := TriangleRay(b, line, eps)
	if !okA || !okB {
		return None, geom.Segment{}
	}

	loA, hiA := chordRange(line, ca)
	loB, hiB := chordRange(line, cb)
	lo := math.Max(loA, loB)
	hi := math.Min(hiA, hiB)
	switch {
	case hi < lo-eps:
		return None, geom.Segment{}
	case hi-lo <= eps:
		p := line.At((lo + hi) / 2)
		return Point, geom.Segment{A: p, B: p}
	}

	seg := geom.Segment{A: line.At(lo), B: line.At(hi)}
	edgeA := zeros(sa) == 2
	edgeB := zeros(sb) == 2
	switch {
	case edgeA && edgeB:
		return EdgeEdge, seg
	case edgeA || edgeB:
		return EdgeFace, seg
	default:
		return NoncoplanarFaceFace, seg
	}
}

// planeIntersection returns the line shared by two planes, with a unit
// direction. The origin is solved with the coordinate along the dominant
// direction component fixed at zero, which is the best-conditioned 2×2
// system.
func planeIntersection(p1, p2 geom.Plane, eps float64) (geom.Ray, bool) {
	n1, n2 := p1.Normal, p2.Normal
	dir := n1.Cross(n2)
	if dir.Length() <= eps {
		return geom.Ray{}, false
	}
	h1 := n1.Dot(p1.Point)
	h2 := n2.Dot(p2.Point)

	k := geom.DominantAxis(dir)
	i, j := (k+1)%3, (k+2)%3
	n1i, n1j := geom.Component(n1, i), geom.Component(n1, j)
	n2i, n2j := geom.Component(n2, i), geom.Component(n2, j)
	det := n1i*n2j - n1j*n2i

	var coords [3]float64
	coords[i] = (h1*n2j - h2*n1j) / det
	coords[j] = (n1i*h2 - n2i*h1) / det
	origin := geom.Vec{X: coords[0], Y: coords[1], Z: coords[2]}

	return geom.Ray{Origin: origin, Direction: geom.Normalize(dir)}, true
}

func chordRange(line geom.Ray, s geom.Segment) (lo, hi float64) {
	ta, tb := line.Parameter(s.A), line.Parameter(s.B)
	return math.Min(ta, tb), math.Max(ta, tb)
}

func zeros(s [3]int) int {
	n := 0
	for _, v := range s {
		if v == 0 {
			n++
		}
	}
	return n
}
