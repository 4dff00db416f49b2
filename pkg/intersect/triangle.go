package intersect

import (
	"math"

	"github.com/chazu/carve/pkg/geom"
)

// TriangleRay intersects a ray with a triangle.
//
// When the ray crosses the triangle's plane, the hit must lie at a
// parameter no less than -eps and inside the triangle (within eps of its
// boundary); the returned segment is degenerate at the hit point.
//
// A ray parallel to the plane but farther than eps from it misses. A ray
// lying in the plane is treated as a full line: it is intersected with the
// three edges and the chord between the extreme crossings, ordered by ray
// parameter, is returned. A corner lying on the line counts as a crossing
// of both edges meeting there, so a line that merely touches a corner
// yields a zero-length chord. A single crossing is impossible for a
// consistent input and panics with an *InvariantError.
func TriangleRay(tri geom.Triangle, ray geom.Ray, eps float64) (geom.Segment, bool) {
	n := tri.Normal()
	if geom.IsZero(n, 0) {
		return geom.Segment{}, false
	}
	r := ray.Unit()
	d := r.Direction.Dot(n)
	dist := n.Dot(r.Origin.Sub(tri.P1))

	if math.Abs(d) > eps {
		t := -dist / d
		if t < -eps {
			return geom.Segment{}, false
		}
		p := r.At(t)
		if !tri.Contains(p, eps) {
			return geom.Segment{}, false
		}
		return geom.Segment{A: p, B: p}, true
	}

	if math.Abs(dist) > eps {
		return geom.Segment{}, false
	}
	return coplanarChord(tri, r, eps)
}

// coplanarChord intersects a line lying in the triangle's plane with the
// triangle's edges.
func coplanarChord(tri geom.Triangle, r geom.Ray, eps float64) (geom.Segment, bool) {
	var hits []float64
	for _, e := range tri.Edges() {
		hits = appendEdgeHits(hits, r, e, eps)
	}

	switch len(hits) {
	case 0:
		return geom.Segment{}, false
	case 1:
		violation("TriangleRay", "coplanar line crosses triangle %v exactly once", tri)
	}

	lo, hi := hits[0], hits[0]
	for _, t := range hits[1:] {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	return geom.Segment{A: r.At(lo), B: r.At(hi)}, true
}

// appendEdgeHits appends the ray parameters at which the line r crosses
// edge e. An edge with an endpoint on the line contributes its on-line
// endpoints instead of a computed crossing.
func appendEdgeHits(hits []float64, r geom.Ray, e geom.Segment, eps float64) []float64 {
	onA := r.DistanceTo(e.A) <= eps
	onB := r.DistanceTo(e.B) <= eps
	if onA || onB {
		if onA {
			hits = append(hits, r.Parameter(e.A))
		}
		if onB {
			hits = append(hits, r.Parameter(e.B))
		}
		return hits
	}

	length := e.Length()
	if length <= eps {
		return hits
	}
	edge := e.Ray()
	res, p := RayRay(r, edge, eps)
	if res != LinePoint {
		// A collinear edge has both endpoints on the line and was handled
		// above; anything else is a miss.
		return hits
	}
	if !inRange(edge.Parameter(p), length, eps) {
		return hits
	}
	return append(hits, r.Parameter(p))
}
