// Package sdfx implements kernel.Kernel with signed distance fields from
// github.com/deadsy/sdfx. Solids stay implicit until ToMesh, which
// samples them with marching cubes, so booleans never fail on
// degenerate contacts but every surface is approximated by the grid.
package sdfx

import (
	"math"

	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/meshio"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultCells is the marching cubes resolution along the longest side of
// a solid's bounding box.
const DefaultCells = 200

// solid wraps an sdf.SDF3, or the error that prevented building it.
type solid struct {
	s   sdf.SDF3
	err error
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) {
	if s.err != nil {
		return min, max
	}
	bb := s.s.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

// Kernel implements kernel.Kernel using sdfx.
type Kernel struct {
	cells int
}

// New returns a kernel that tessellates with cells marching cubes cells;
// cells <= 0 selects DefaultCells.
func New(cells int) *Kernel {
	if cells <= 0 {
		cells = DefaultCells
	}
	return &Kernel{cells: cells}
}

func failed(err error) kernel.Solid { return &solid{err: err} }

func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	ss, ok := s.(*solid)
	if !ok {
		return nil, errors.Errorf("sdfx: solid %T from another kernel", s)
	}
	return ss.s, ss.err
}

func build(s sdf.SDF3, err error) kernel.Solid {
	if err != nil {
		return failed(errors.Wrap(err, "sdfx"))
	}
	return &solid{s: s}
}

// Box creates a box with its minimum corner at the origin. sdf.Box3D is
// centered, so it is shifted by half its size.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	if x <= 0 || y <= 0 || z <= 0 {
		return failed(errors.Errorf("sdfx: box %gx%gx%g", x, y, z))
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return build(nil, err)
	}
	return &solid{s: sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2}))}
}

// Cylinder creates a cylinder centered on the origin, axis along z. The
// surface is exact, so segments is ignored.
func (k *Kernel) Cylinder(height, radius float64, _ int) kernel.Solid {
	if height <= 0 || radius <= 0 {
		return failed(errors.Errorf("sdfx: cylinder height %g radius %g", height, radius))
	}
	return build(sdf.Cylinder3D(height, radius, 0))
}

// Sphere creates a sphere centered on the origin. Resolution is set by the
// kernel, so cells is ignored.
func (k *Kernel) Sphere(radius float64, _ int) kernel.Solid {
	if radius <= 0 {
		return failed(errors.Errorf("sdfx: sphere radius %g", radius))
	}
	return build(sdf.Sphere3D(radius))
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return combine(a, b, func(x, y sdf.SDF3) sdf.SDF3 { return sdf.Union3D(x, y) })
}

// Difference returns the difference a - b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return combine(a, b, sdf.Difference3D)
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return combine(a, b, sdf.Intersect3D)
}

func combine(a, b kernel.Solid, f func(x, y sdf.SDF3) sdf.SDF3) kernel.Solid {
	sa, err := unwrap(a)
	if err != nil {
		return failed(err)
	}
	sb, err := unwrap(b)
	if err != nil {
		return failed(err)
	}
	return &solid{s: f(sa, sb)}
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return transform(s, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	rad := math.Pi / 180
	return transform(s, sdf.RotateZ(z*rad).Mul(sdf.RotateY(y*rad)).Mul(sdf.RotateX(x*rad)))
}

func transform(s kernel.Solid, m sdf.M44) kernel.Solid {
	src, err := unwrap(s)
	if err != nil {
		return failed(err)
	}
	return &solid{s: sdf.Transform3D(src, m)}
}

// ToMesh samples the solid with marching cubes and welds the result into
// an indexed mesh with smoothed normals.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	src, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	m, err := meshio.FromSDF(src, k.cells)
	if err != nil {
		return nil, errors.Wrap(err, "sdfx: tessellate")
	}
	return meshio.ToKernel(m, ""), nil
}
