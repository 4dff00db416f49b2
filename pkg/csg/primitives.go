package csg

import (
	"math"

	"github.com/chazu/carve/pkg/geom"
)

// Box returns the closed axis-aligned box spanning min to max. Each side
// has its own four vertices so normals stay flat; the faces are wound
// counter-clockwise seen from outside.
func Box(min, max geom.Vec) *Mesh {
	s := max.Sub(min)
	sx := geom.Vec{X: s.X}
	sy := geom.Vec{Y: s.Y}
	sz := geom.Vec{Z: s.Z}

	sides := []struct {
		origin, u, v geom.Vec
	}{
		{geom.Vec{X: max.X, Y: min.Y, Z: min.Z}, sy, sz}, // +x
		{min, sz, sy}, // -x
		{geom.Vec{X: min.X, Y: max.Y, Z: min.Z}, sz, sx}, // +y
		{min, sx, sz}, // -y
		{geom.Vec{X: min.X, Y: min.Y, Z: max.Z}, sx, sy}, // +z
		{min, sy, sx}, // -z
	}

	m := New(StandardAttributes())
	for _, side := range sides {
		n := geom.Normalize(side.u.Cross(side.v))
		t := geom.Normalize(side.u)
		base := len(m.Vertices)
		for _, p := range []geom.Vec{
			side.origin,
			side.origin.Add(side.u),
			side.origin.Add(side.u).Add(side.v),
			side.origin.Add(side.v),
		} {
			m.AddVertex(Vertex{Position: p, Normal: n, Tangent: t})
		}
		m.AddFace(base, base+1, base+2)
		m.AddFace(base, base+2, base+3)
	}
	return m
}

// Cube returns the box of the given edge length centered on the origin.
func Cube(size float64) *Mesh {
	h := size / 2
	return Box(geom.Vec{X: -h, Y: -h, Z: -h}, geom.Vec{X: h, Y: h, Z: h})
}

// Cylinder returns a closed prism approximating a cylinder of the given
// height and radius, centered on the origin with its axis along z. The
// side has smooth radial normals; the caps are flat. segments is clamped
// to at least 3.
func Cylinder(height, radius float64, segments int) *Mesh {
	segments = max(segments, 3)
	h := height / 2
	m := New(StandardAttributes())

	ring := func(z float64, normal func(dir geom.Vec) geom.Vec) int {
		base := len(m.Vertices)
		for i := 0; i < segments; i++ {
			a := 2 * math.Pi * float64(i) / float64(segments)
			dir := geom.Vec{X: math.Cos(a), Y: math.Sin(a)}
			m.AddVertex(Vertex{
				Position: geom.Vec{X: radius * dir.X, Y: radius * dir.Y, Z: z},
				Normal:   normal(dir),
				Tangent:  geom.Vec{X: -dir.Y, Y: dir.X},
			})
		}
		return base
	}
	radial := func(dir geom.Vec) geom.Vec { return dir }
	up := func(geom.Vec) geom.Vec { return geom.Vec{Z: 1} }
	down := func(geom.Vec) geom.Vec { return geom.Vec{Z: -1} }

	sideBottom := ring(-h, radial)
	sideTop := ring(h, radial)
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		b0, b1 := sideBottom+i, sideBottom+j
		t0, t1 := sideTop+i, sideTop+j
		m.AddFace(b0, b1, t1)
		m.AddFace(b0, t1, t0)
	}

	top := ring(h, up)
	topCenter := m.AddVertex(Vertex{Position: geom.Vec{Z: h}, Normal: geom.Vec{Z: 1}, Tangent: geom.Vec{X: 1}})
	bottom := ring(-h, down)
	bottomCenter := m.AddVertex(Vertex{Position: geom.Vec{Z: -h}, Normal: geom.Vec{Z: -1}, Tangent: geom.Vec{X: 1}})
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		m.AddFace(topCenter, top+i, top+j)
		m.AddFace(bottomCenter, bottom+j, bottom+i)
	}
	return m
}
