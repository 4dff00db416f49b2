package meshio

import (
	"math"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/geom"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/pkg/errors"
)

// weldGrid is the spacing positions are snapped to when welding marching
// cubes output. Shared cube edges produce bit-identical vertices, so the
// grid only has to absorb rounding noise.
const weldGrid = 1e-9

// FromSDF tessellates s with uniform marching cubes over cells cells along
// the longest side of its bounding box. Coincident corners are welded into
// one vertex so the surface is closed, triangles that collapse in the weld
// are dropped, and the result is wound outward. Vertex normals are the
// area-weighted average of the adjacent face normals.
func FromSDF(s sdf.SDF3, cells int) (*csg.Mesh, error) {
	if cells <= 0 {
		return nil, errors.Errorf("meshio: from sdf: %d cells", cells)
	}
	tris := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	m := csg.New(csg.StandardAttributes())
	index := make(map[[3]int64]int, len(tris))
	weld := func(p geom.Vec) int {
		k := [3]int64{
			int64(math.Round(p.X / weldGrid)),
			int64(math.Round(p.Y / weldGrid)),
			int64(math.Round(p.Z / weldGrid)),
		}
		if i, ok := index[k]; ok {
			return i
		}
		i := m.AddVertex(csg.Vertex{Position: p})
		index[k] = i
		return i
	}

	dropped := 0
	for _, t := range tris {
		a, b, c := weld(t[0]), weld(t[1]), weld(t[2])
		if a == b || b == c || a == c {
			dropped++
			continue
		}
		m.AddFace(a, b, c)
	}
	if dropped > 0 {
		m.DeleteUnusedVertices()
	}

	var vol float64
	for i := range m.Faces {
		t := m.Triangle(i)
		vol += t.P1.Dot(t.P2.Cross(t.P3))
	}
	if vol < 0 {
		m.InvertTriangles()
	}
	smoothNormals(m)

	Logger().Debug("meshio: tessellated sdf",
		"cells", cells, "triangles", len(tris), "vertices", len(m.Vertices), "dropped", dropped)
	return m, nil
}

func smoothNormals(m *csg.Mesh) {
	sum := make([]geom.Vec, len(m.Vertices))
	for i, f := range m.Faces {
		t := m.Triangle(i)
		// The cross product's length is twice the area.
		n := t.P2.Sub(t.P1).Cross(t.P3.Sub(t.P1))
		for _, idx := range f.V {
			sum[idx] = sum[idx].Add(n)
		}
	}
	for i := range m.Vertices {
		if sum[i].Length() > 0 {
			m.Vertices[i].Normal = sum[i].Normalize()
		}
	}
}
