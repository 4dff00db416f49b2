// Package meshkernel implements kernel.Kernel on exact triangle meshes:
// primitives are built as closed csg meshes and booleans run through
// pkg/csg, so output faces follow the input faces instead of a sampling
// grid.
package meshkernel

import (
	"math"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/geom"
	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/meshio"
	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultSphereCells is the marching cubes resolution used for spheres
// when none is given.
const DefaultSphereCells = 32

// solid is a csg mesh, or the error that prevented building it.
type solid struct {
	mesh *csg.Mesh
	err  error
}

// BoundingBox returns the axis-aligned bounding box. A failed solid has
// zero bounds.
func (s *solid) BoundingBox() (min, max [3]float64) {
	if s.err != nil {
		return min, max
	}
	b := s.mesh.Bounds()
	return [3]float64{b.Min.X, b.Min.Y, b.Min.Z}, [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
}

// Kernel builds solids as csg meshes.
type Kernel struct {
	cfg csg.Config
}

// New returns a kernel whose booleans run with the default csg
// configuration modified by opts.
func New(opts ...csg.Option) *Kernel {
	cfg := csg.DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Kernel{cfg: cfg}
}

// Config returns the configuration booleans run with.
func (k *Kernel) Config() csg.Config { return k.cfg }

func failed(err error) kernel.Solid { return &solid{err: err} }

// unwrap returns the mesh of s, or the error it carries.
func unwrap(s kernel.Solid) (*csg.Mesh, error) {
	ms, ok := s.(*solid)
	if !ok {
		return nil, errors.Errorf("meshkernel: solid %T from another kernel", s)
	}
	return ms.mesh, ms.err
}

// Box creates a box with its minimum corner at the origin.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	if x <= 0 || y <= 0 || z <= 0 {
		return failed(errors.Errorf("meshkernel: box %gx%gx%g", x, y, z))
	}
	return &solid{mesh: csg.Box(geom.Vec{}, geom.Vec{X: x, Y: y, Z: z})}
}

// Cylinder creates a segments-sided prism centered on the origin, axis
// along z.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if height <= 0 || radius <= 0 {
		return failed(errors.Errorf("meshkernel: cylinder height %g radius %g", height, radius))
	}
	return &solid{mesh: csg.Cylinder(height, radius, segments)}
}

// Sphere tessellates a sphere centered on the origin with cells marching
// cubes cells across; cells <= 0 selects DefaultSphereCells.
func (k *Kernel) Sphere(radius float64, cells int) kernel.Solid {
	if radius <= 0 {
		return failed(errors.Errorf("meshkernel: sphere radius %g", radius))
	}
	if cells <= 0 {
		cells = DefaultSphereCells
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return failed(errors.Wrap(err, "meshkernel: sphere"))
	}
	m, err := meshio.FromSDF(s, cells)
	if err != nil {
		return failed(errors.Wrap(err, "meshkernel: sphere"))
	}
	return &solid{mesh: m}
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return k.boolean(csg.OpUnion, a, b)
}

// Difference returns a minus b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return k.boolean(csg.OpSubtract, a, b)
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return k.boolean(csg.OpIntersect, a, b)
}

func (k *Kernel) boolean(op csg.Op, a, b kernel.Solid) kernel.Solid {
	ma, err := unwrap(a)
	if err != nil {
		return failed(err)
	}
	mb, err := unwrap(b)
	if err != nil {
		return failed(err)
	}
	out, err := csg.Apply(op, ma, mb, csg.WithConfig(k.cfg))
	if err != nil {
		return failed(errors.Wrapf(err, "meshkernel: %v", op))
	}
	return &solid{mesh: out}
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return k.transform(s, sdf.Translate3d(geom.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	rad := math.Pi / 180
	m := sdf.RotateZ(z * rad).Mul(sdf.RotateY(y * rad)).Mul(sdf.RotateX(x * rad))
	return k.transform(s, m)
}

func (k *Kernel) transform(s kernel.Solid, t sdf.M44) kernel.Solid {
	m, err := unwrap(s)
	if err != nil {
		return failed(err)
	}
	c := m.Clone()
	c.Transform(t)
	return &solid{mesh: c}
}

// ToMesh flattens the solid into a render mesh, or returns the error
// recorded while building it.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	m, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return meshio.ToKernel(m, ""), nil
}
