package csg

import (
	"fmt"

	"github.com/chazu/carve/pkg/geom"
)

// Report summarizes the topology of a mesh as seen through vertex
// positions.
type Report struct {
	Faces    int
	Vertices int

	// Degenerate lists faces with (near) zero area.
	Degenerate []int
	// OpenEdges counts edges used by a single face.
	OpenEdges int
	// NonManifoldEdges counts edges used by more than two faces.
	NonManifoldEdges int
	// MisorientedEdges counts two-face edges traversed in the same
	// direction by both faces.
	MisorientedEdges int
}

// Watertight reports whether every edge is shared by exactly two faces
// traversing it in opposite directions.
func (r Report) Watertight() bool {
	return r.OpenEdges == 0 && r.NonManifoldEdges == 0 && r.MisorientedEdges == 0
}

func (r Report) String() string {
	return fmt.Sprintf("%d faces, %d vertices, %d degenerate, %d open, %d non-manifold, %d misoriented edges",
		r.Faces, r.Vertices, len(r.Degenerate), r.OpenEdges, r.NonManifoldEdges, r.MisorientedEdges)
}

type edgeKey struct{ a, b int }

// Check inspects m. Vertices within the tolerance of an earlier vertex are
// welded to it before edges are counted, so coincident vertices with
// different indices count as the same point.
func (m *Mesh) Check() Report {
	eps := m.Config.Tolerance
	if eps <= 0 {
		eps = DefaultConfig().Tolerance
	}
	ids := m.weldIDs(eps)

	r := Report{Faces: len(m.Faces), Vertices: len(m.Vertices)}
	type use struct{ forward, backward int }
	edges := make(map[edgeKey]*use)
	for i := range m.Faces {
		tri := m.Triangle(i)
		if tri.Area() <= eps*eps {
			r.Degenerate = append(r.Degenerate, i)
		}
		f := m.Faces[i]
		for e := 0; e < 3; e++ {
			a, b := ids[f.V[e]], ids[f.V[(e+1)%3]]
			if a == b {
				continue
			}
			k, fwd := edgeKey{a, b}, true
			if b < a {
				k, fwd = edgeKey{b, a}, false
			}
			u := edges[k]
			if u == nil {
				u = &use{}
				edges[k] = u
			}
			if fwd {
				u.forward++
			} else {
				u.backward++
			}
		}
	}

	for _, u := range edges {
		switch n := u.forward + u.backward; {
		case n == 1:
			r.OpenEdges++
		case n > 2:
			r.NonManifoldEdges++
		case u.forward != 1:
			r.MisorientedEdges++
		}
	}
	return r
}

// weldIDs maps every vertex to the earliest vertex within eps of it.
func (m *Mesh) weldIDs(eps float64) []int {
	pool := newVertexPool(eps)
	ids := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		j, ok := pool.weld(v.Position)
		if !ok {
			pool.add(i, v.Position, geom.Vec{})
			j = i
		}
		ids[i] = j
	}
	return ids
}
