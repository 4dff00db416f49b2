// Package kernel defines the abstract geometry kernel the script pipeline
// evaluates solids through. The mesh kernel (exact triangle booleans on
// pkg/csg) and the sdfx kernel (signed distance fields, tessellated on
// output) both implement it, so the tessellator does not care which
// backend built a part.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// Operations that fail record the failure in the Solid they return;
// every later operation on that solid carries it along and ToMesh
// reports it.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid // min corner at the origin
	Cylinder(height, radius float64, segments int) Solid
	Sphere(radius float64, cells int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
