package graph

import "github.com/chazu/carve/pkg/csg"

// Vec3 is a 3D vector, in model units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// BoxData is a box with its minimum corner at the origin.
type BoxData struct {
	Size Vec3 `json:"size"`
}

func (BoxData) nodeData() {}

// CylinderData is a prism approximating a cylinder centered on the
// origin, axis along z. Zero segments selects the kernel default.
type CylinderData struct {
	Height   float64 `json:"height"`
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments,omitempty"`
}

func (CylinderData) nodeData() {}

// SphereData is a sphere centered on the origin. Cells is the
// tessellation resolution; zero selects the kernel default.
type SphereData struct {
	Radius float64 `json:"radius"`
	Cells  int     `json:"cells,omitempty"`
}

func (SphereData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData moves its single child. The rotation (Euler angles in
// degrees, X then Y then Z) is applied before the translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"`
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BooleanData combines two or more children, folding left:
// ((c0 op c1) op c2) ...
type BooleanData struct {
	Op csg.Op `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Part
// ---------------------------------------------------------------------------

// PartData marks a named output. The name lives on the node.
type PartData struct{}

func (PartData) nodeData() {}
