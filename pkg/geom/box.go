package geom

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec
}

// EmptyBox returns a box that contains nothing; extending it with a point
// yields a box around that point.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: Vec{X: inf, Y: inf, Z: inf},
		Max: Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// Extend returns the smallest box containing b and p.
func (b Box) Extend(p Vec) Box {
	return Box{Min: Min(b.Min, p), Max: Max(b.Max, p)}
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	return Box{Min: Min(b.Min, o.Min), Max: Max(b.Max, o.Max)}
}

// Empty reports whether the box contains no points.
func (b Box) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Size returns the extent of the box along each axis.
func (b Box) Size() Vec {
	if b.Empty() {
		return Vec{}
	}
	return b.Max.Sub(b.Min)
}

// Overlaps reports whether the boxes intersect once both are grown by eps.
func (b Box) Overlaps(o Box, eps float64) bool {
	return b.Min.X <= o.Max.X+eps && o.Min.X <= b.Max.X+eps &&
		b.Min.Y <= o.Max.Y+eps && o.Min.Y <= b.Max.Y+eps &&
		b.Min.Z <= o.Max.Z+eps && o.Min.Z <= b.Max.Z+eps
}

// Contains reports whether p lies in the box grown by eps.
func (b Box) Contains(p Vec, eps float64) bool {
	return p.X >= b.Min.X-eps && p.X <= b.Max.X+eps &&
		p.Y >= b.Min.Y-eps && p.Y <= b.Max.Y+eps &&
		p.Z >= b.Min.Z-eps && p.Z <= b.Max.Z+eps
}
