package intersect

import (
	"math"

	"github.com/chazu/carve/pkg/geom"
)

// vec2 is a point in the projection plane of a coplanar test.
type vec2 struct{ x, y float64 }

func (a vec2) sub(b vec2) vec2       { return vec2{a.x - b.x, a.y - b.y} }
func (a vec2) cross(b vec2) float64 { return a.x*b.y - a.y*b.x }
func (a vec2) dot(b vec2) float64   { return a.x*b.x + a.y*b.y }

// CoplanarTriangles reports whether two triangles assumed to share a plane
// overlap. Both are projected onto the coordinate plane that drops the
// dominant axis of a's normal. They overlap if any pair of edges comes
// within eps of each other or a corner of one lies inside the other, so
// triangles that only touch along an edge or at a corner count.
func CoplanarTriangles(a, b geom.Triangle, eps float64) bool {
	drop := geom.DominantAxis(a.Normal())
	pa := project(a, drop)
	pb := project(b, drop)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if segmentDistance2D(pa[i], pa[(i+1)%3], pb[j], pb[(j+1)%3]) <= eps {
				return true
			}
		}
	}
	return inside2D(pa[0], pb) || inside2D(pb[0], pa)
}

func project(t geom.Triangle, drop geom.Axis) [3]vec2 {
	i, j := (drop+1)%3, (drop+2)%3
	var out [3]vec2
	for k, p := range t.Points() {
		out[k] = vec2{geom.Component(p, i), geom.Component(p, j)}
	}
	return out
}

// segmentDistance2D returns the distance between segments pq and rs.
func segmentDistance2D(p, q, r, s vec2) float64 {
	d1 := orient(p, q, r)
	d2 := orient(p, q, s)
	d3 := orient(r, s, p)
	d4 := orient(r, s, q)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return 0
	}
	return math.Min(
		math.Min(pointSegment2D(r, p, q), pointSegment2D(s, p, q)),
		math.Min(pointSegment2D(p, r, s), pointSegment2D(q, r, s)),
	)
}

func orient(a, b, c vec2) float64 {
	return b.sub(a).cross(c.sub(a))
}

func pointSegment2D(p, a, b vec2) float64 {
	ab := b.sub(a)
	l2 := ab.dot(ab)
	t := 0.0
	if l2 > 0 {
		t = math.Max(0, math.Min(1, p.sub(a).dot(ab)/l2))
	}
	c := vec2{a.x + ab.x*t, a.y + ab.y*t}
	d := p.sub(c)
	return math.Sqrt(d.dot(d))
}

// inside2D reports whether p lies strictly inside triangle t, for either
// winding.
func inside2D(p vec2, t [3]vec2) bool {
	s0 := orient(t[0], t[1], p)
	s1 := orient(t[1], t[2], p)
	s2 := orient(t[2], t[0], p)
	return (s0 > 0 && s1 > 0 && s2 > 0) || (s0 < 0 && s1 < 0 && s2 < 0)
}
