package geom

// Triangle is an ordered triple of points. Counter-clockwise winding, seen
// from the side the normal points to, defines the front.
type Triangle struct {
	P1, P2, P3 Vec
}

// Normal returns the unit normal normalize((P2-P1)×(P3-P1)). A degenerate
// triangle has a zero normal.
func (t Triangle) Normal() Vec {
	return Normalize(t.P2.Sub(t.P1).Cross(t.P3.Sub(t.P1)))
}

// Area returns the area of the triangle.
func (t Triangle) Area() float64 {
	return 0.5 * t.P2.Sub(t.P1).Cross(t.P3.Sub(t.P1)).Length()
}

// Plane returns the supporting plane through P1.
func (t Triangle) Plane() Plane {
	return Plane{Point: t.P1, Normal: t.Normal()}
}

// Points returns the corners in order.
func (t Triangle) Points() [3]Vec {
	return [3]Vec{t.P1, t.P2, t.P3}
}

// Edges returns the edges P1P2, P2P3 and P3P1.
func (t Triangle) Edges() [3]Segment {
	return [3]Segment{{t.P1, t.P2}, {t.P2, t.P3}, {t.P3, t.P1}}
}

// Bounds returns the axis-aligned box around the triangle.
func (t Triangle) Bounds() Box {
	return Box{Min: Min(Min(t.P1, t.P2), t.P3), Max: Max(Max(t.P1, t.P2), t.P3)}
}

// Centroid returns the mean of the three corners.
func (t Triangle) Centroid() Vec {
	return t.P1.Add(t.P2).Add(t.P3).MulScalar(1.0 / 3.0)
}

// Flip returns the triangle with reversed winding.
func (t Triangle) Flip() Triangle {
	return Triangle{t.P1, t.P3, t.P2}
}

// Degenerate reports whether two corners coincide within eps or the
// triangle has no area.
func (t Triangle) Degenerate(eps float64) bool {
	if Near(t.P1, t.P2, eps) || Near(t.P2, t.P3, eps) || Near(t.P3, t.P1, eps) {
		return true
	}
	return t.Area() <= eps*eps
}

// Barycentric returns the weights (u, v, w) of P1, P2, P3 for the
// projection of p onto the triangle's plane. A degenerate triangle yields
// equal weights.
func (t Triangle) Barycentric(p Vec) (u, v, w float64) {
	e0 := t.P2.Sub(t.P1)
	e1 := t.P3.Sub(t.P1)
	e2 := p.Sub(t.P1)
	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d11 := e1.Dot(e1)
	d20 := e2.Dot(e0)
	d21 := e2.Dot(e1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	return 1 - v - w, v, w
}

// Contains reports whether p, assumed to lie in the triangle's plane, is
// inside the triangle or within eps of its boundary.
func (t Triangle) Contains(p Vec, eps float64) bool {
	n := t.Normal()
	if IsZero(n, 0) {
		return false
	}
	for _, e := range t.Edges() {
		inward := Normalize(n.Cross(e.B.Sub(e.A)))
		if inward.Dot(p.Sub(e.A)) < -eps {
			return false
		}
	}
	return true
}
