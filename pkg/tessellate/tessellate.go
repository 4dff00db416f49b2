// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per root.
package tessellate

import (
	"fmt"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/graph"
	"github.com/chazu/carve/pkg/kernel"
)

// Tessellate evaluates every root of the design graph through the
// provided geometry kernel and returns one mesh per root, in root order.
// The tessellator is read-only and never mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	err := Each(g, k, func(_ int, m *kernel.Mesh) error {
		meshes = append(meshes, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meshes, nil
}

// Each is Tessellate with a callback: fn receives the index of each root
// and its mesh as soon as it is built. An error from fn stops the walk
// and is returned as is.
func Each(g *graph.DesignGraph, k kernel.Kernel, fn func(root int, m *kernel.Mesh) error) error {
	if g == nil {
		return nil
	}

	w := &walker{
		g:      g,
		k:      k,
		solids: make(map[graph.NodeID]kernel.Solid),
		active: make(map[graph.NodeID]bool),
	}
	for i, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			return fmt.Errorf("tessellate: root %s does not exist", rootID.Short())
		}
		s, err := w.solid(root)
		if err != nil {
			return fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		mesh, err := k.ToMesh(s)
		if err != nil {
			return fmt.Errorf("tessellate: ToMesh failed for root %s: %w", rootID.Short(), err)
		}

		// Prefer the node's Name, fall back to short ID.
		if root.Name != "" {
			mesh.PartName = root.Name
		} else {
			mesh.PartName = root.ID.Short()
		}
		if err := fn(i, mesh); err != nil {
			return err
		}
	}
	return nil
}

// walker evaluates nodes into kernel solids. Nodes shared by several
// parents are evaluated once.
type walker struct {
	g      *graph.DesignGraph
	k      kernel.Kernel
	solids map[graph.NodeID]kernel.Solid
	active map[graph.NodeID]bool // on the current path, for cycle detection
}

func (w *walker) solid(n *graph.Node) (kernel.Solid, error) {
	if s, ok := w.solids[n.ID]; ok {
		return s, nil
	}
	if w.active[n.ID] {
		return nil, fmt.Errorf("cycle through node %s", n.ID.Short())
	}
	w.active[n.ID] = true
	defer delete(w.active, n.ID)

	var s kernel.Solid
	var err error
	switch n.Kind {
	case graph.NodePrimitive:
		s, err = w.primitive(n)
	case graph.NodeTransform:
		s, err = w.transform(n)
	case graph.NodeBoolean:
		s, err = w.boolean(n)
	case graph.NodePart:
		// A part inside another solid contributes its body.
		s, err = w.only(n)
	default:
		err = fmt.Errorf("unknown node kind: %v", n.Kind)
	}
	if err != nil {
		return nil, err
	}
	w.solids[n.ID] = s
	return s, nil
}

// primitive creates geometry for a primitive node.
func (w *walker) primitive(n *graph.Node) (kernel.Solid, error) {
	switch data := n.Data.(type) {
	case graph.BoxData:
		return w.k.Box(data.Size.X, data.Size.Y, data.Size.Z), nil
	case graph.CylinderData:
		return w.k.Cylinder(data.Height, data.Radius, data.Segments), nil
	case graph.SphereData:
		return w.k.Sphere(data.Radius, data.Cells), nil
	}
	return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
}

// transform applies the rotation first, then the translation.
func (w *walker) transform(n *graph.Node) (kernel.Solid, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	s, err := w.only(n)
	if err != nil {
		return nil, err
	}
	if r := td.Rotation; r != nil && (r.X != 0 || r.Y != 0 || r.Z != 0) {
		s = w.k.Rotate(s, r.X, r.Y, r.Z)
	}
	if t := td.Translation; t != nil && (t.X != 0 || t.Y != 0 || t.Z != 0) {
		s = w.k.Translate(s, t.X, t.Y, t.Z)
	}
	return s, nil
}

// boolean folds the children left to right: ((c0 op c1) op c2) ...
func (w *walker) boolean(n *graph.Node) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	var op func(a, b kernel.Solid) kernel.Solid
	switch bd.Op {
	case csg.OpSubtract:
		op = w.k.Difference
	case csg.OpUnion:
		op = w.k.Union
	case csg.OpIntersect:
		op = w.k.Intersection
	default:
		return nil, fmt.Errorf("boolean node %s has unknown op %v", n.ID.Short(), bd.Op)
	}
	if len(n.Children) < 2 {
		return nil, fmt.Errorf("boolean node %s has %d children, want at least 2", n.ID.Short(), len(n.Children))
	}

	var acc kernel.Solid
	for i, cid := range n.Children {
		c, err := w.child(n, cid)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			acc = c
			continue
		}
		acc = op(acc, c)
	}
	return acc, nil
}

// only evaluates the single child of n.
func (w *walker) only(n *graph.Node) (kernel.Solid, error) {
	if len(n.Children) != 1 {
		return nil, fmt.Errorf("%s node %s has %d children, want 1", n.Kind, n.ID.Short(), len(n.Children))
	}
	return w.child(n, n.Children[0])
}

func (w *walker) child(n *graph.Node, id graph.NodeID) (kernel.Solid, error) {
	c := w.g.Get(id)
	if c == nil {
		return nil, fmt.Errorf("%s node %s references missing child %s", n.Kind, n.ID.Short(), id.Short())
	}
	return w.solid(c)
}
