package meshio

import (
	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/geom"
	"github.com/chazu/carve/pkg/kernel"
	"github.com/pkg/errors"
)

// ToKernel flattens m into a render mesh named name. Extra channels and
// tangents are dropped.
func ToKernel(m *csg.Mesh, name string) *kernel.Mesh {
	out := &kernel.Mesh{
		Vertices: make([]float32, 0, 3*len(m.Vertices)),
		Normals:  make([]float32, 0, 3*len(m.Vertices)),
		Indices:  make([]uint32, 0, 3*len(m.Faces)),
		PartName: name,
	}
	for _, v := range m.Vertices {
		out.Vertices = append(out.Vertices, float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z))
		out.Normals = append(out.Normals, float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z))
	}
	for _, f := range m.Faces {
		out.Indices = append(out.Indices, uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}
	return out
}

// FromKernel builds a csg mesh with the standard layout from a render
// mesh. Normals are copied when the mesh carries one per vertex.
func FromKernel(k *kernel.Mesh) (*csg.Mesh, error) {
	m := csg.New(csg.StandardAttributes())
	n := k.VertexCount()
	withNormals := len(k.Normals) == len(k.Vertices)
	for i := 0; i < n; i++ {
		v := csg.Vertex{Position: geom.Vec{
			X: float64(k.Vertices[3*i]),
			Y: float64(k.Vertices[3*i+1]),
			Z: float64(k.Vertices[3*i+2]),
		}}
		if withNormals {
			v.Normal = geom.Vec{
				X: float64(k.Normals[3*i]),
				Y: float64(k.Normals[3*i+1]),
				Z: float64(k.Normals[3*i+2]),
			}
		}
		m.AddVertex(v)
	}
	for i := 0; i+2 < len(k.Indices); i += 3 {
		m.AddFace(int(k.Indices[i]), int(k.Indices[i+1]), int(k.Indices[i+2]))
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "meshio: part %q", k.PartName)
	}
	return m, nil
}
