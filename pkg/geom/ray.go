package geom

// Ray is a half-line from Origin along Direction. The predicates in
// package intersect treat rays as full lines wherever a negative
// parameter is meaningful.
type Ray struct {
	Origin    Vec
	Direction Vec
}

// At returns the point at parameter t.
func (r Ray) At(t float64) Vec {
	return r.Origin.Add(r.Direction.MulScalar(t))
}

// Unit returns r with a unit-length direction, so that parameters
// measure distance.
func (r Ray) Unit() Ray {
	return Ray{Origin: r.Origin, Direction: Normalize(r.Direction)}
}

// Parameter returns the parameter of the projection of p onto r.
// r must have a unit direction.
func (r Ray) Parameter(p Vec) float64 {
	return r.Direction.Dot(p.Sub(r.Origin))
}

// DistanceTo returns the distance from p to the line through r.
// r must have a unit direction.
func (r Ray) DistanceTo(p Vec) float64 {
	return p.Sub(r.Origin).Cross(r.Direction).Length()
}

// Segment is an ordered pair of points. A degenerate segment (A == B)
// encodes a point intersection.
type Segment struct {
	A, B Vec
}

// Length returns the distance between the endpoints.
func (s Segment) Length() float64 {
	return s.B.Sub(s.A).Length()
}

// Degenerate reports whether the endpoints coincide within eps.
func (s Segment) Degenerate(eps float64) bool {
	return Near(s.A, s.B, eps)
}

// Midpoint returns the point halfway between the endpoints.
func (s Segment) Midpoint() Vec {
	return Lerp(s.A, s.B, 0.5)
}

// Ray returns the ray from A towards B with a unit direction.
func (s Segment) Ray() Ray {
	return Ray{Origin: s.A, Direction: Normalize(s.B.Sub(s.A))}
}

// Bounds returns the axis-aligned box around the segment.
func (s Segment) Bounds() Box {
	return Box{Min: Min(s.A, s.B), Max: Max(s.A, s.B)}
}
