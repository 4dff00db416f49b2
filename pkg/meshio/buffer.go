package meshio

import (
	"math"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/geom"
	"github.com/pkg/errors"
)

// Import builds a mesh from an interleaved vertex buffer and a triangle
// index buffer laid out as l describes. Faces are copied as they are;
// degenerate or repeated-index triangles are not inspected.
func Import(l Layout, vertices []float32, indices []uint16) (*csg.Mesh, error) {
	count, err := vertexCount(l, vertices)
	if err != nil {
		return nil, err
	}
	if len(indices)%3 != 0 {
		return nil, errors.Errorf("meshio: import: %d indices do not form triangles", len(indices))
	}

	m := csg.New(l.Attributes)
	m.Vertices = make([]csg.Vertex, 0, count)
	for i := 0; i < count; i++ {
		m.AddVertex(l.vertex(vertices, i))
	}
	for i := 0; i < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if a >= count || b >= count || c >= count {
			return nil, errors.Wrapf(ErrMissingVertex, "meshio: import: face %d", i/3)
		}
		m.AddFace(a, b, c)
	}
	return m, nil
}

// ImportPart builds a mesh from the count indices starting at offset.
// Only the vertices those indices reference are imported, in the order
// they are first used.
func ImportPart(l Layout, vertices []float32, indices []uint16, offset, count int) (*csg.Mesh, error) {
	total, err := vertexCount(l, vertices)
	if err != nil {
		return nil, err
	}
	if offset < 0 || count < 0 || offset+count > len(indices) {
		return nil, errors.Errorf("meshio: import part: range [%d, %d) outside %d indices", offset, offset+count, len(indices))
	}
	if count%3 != 0 {
		return nil, errors.Errorf("meshio: import part: %d indices do not form triangles", count)
	}

	m := csg.New(l.Attributes)
	remap := make(map[uint16]int)
	local := func(src uint16) (int, error) {
		if idx, ok := remap[src]; ok {
			return idx, nil
		}
		if int(src) >= total {
			return 0, ErrMissingVertex
		}
		idx := m.AddVertex(l.vertex(vertices, int(src)))
		remap[src] = idx
		return idx, nil
	}

	for i := offset; i < offset+count; i += 3 {
		var f [3]int
		for k := range f {
			idx, err := local(indices[i+k])
			if err != nil {
				return nil, errors.Wrapf(err, "meshio: import part: face %d", (i-offset)/3)
			}
			f[k] = idx
		}
		m.AddFace(f[0], f[1], f[2])
	}
	return m, nil
}

// Export flattens m into an interleaved buffer laid out as l describes.
// Extra channels missing from a vertex are written as zero.
func Export(m *csg.Mesh, l Layout) ([]float32, []uint16, error) {
	if len(m.Vertices) > math.MaxUint16+1 {
		return nil, nil, errors.Wrapf(ErrIndexOverflow, "meshio: export: %d vertices", len(m.Vertices))
	}

	vertices := make([]float32, len(m.Vertices)*l.Stride)
	for i, v := range m.Vertices {
		l.put(vertices[i*l.Stride:(i+1)*l.Stride], v)
	}

	indices := make([]uint16, 0, 3*len(m.Faces))
	for i, f := range m.Faces {
		for _, idx := range f.V {
			if idx < 0 || idx >= len(m.Vertices) {
				return nil, nil, errors.Wrapf(ErrMissingVertex, "meshio: export: face %d uses vertex %d", i, idx)
			}
			indices = append(indices, uint16(idx))
		}
	}
	return vertices, indices, nil
}

func vertexCount(l Layout, vertices []float32) (int, error) {
	if l.Stride <= 0 {
		return 0, errors.Wrap(ErrBadAttributeCount, "meshio: layout has zero stride")
	}
	if len(vertices)%l.Stride != 0 {
		return 0, errors.Wrapf(ErrBadAttributeCount, "meshio: %d floats is not a multiple of stride %d", len(vertices), l.Stride)
	}
	return len(vertices) / l.Stride, nil
}

// vertex decodes vertex i of buf.
func (l Layout) vertex(buf []float32, i int) csg.Vertex {
	s := buf[i*l.Stride : (i+1)*l.Stride]
	v := csg.Vertex{Position: vec(s, l.Position)}
	if l.Normal >= 0 {
		v.Normal = vec(s, l.Normal)
	}
	if l.Tangent >= 0 {
		v.Tangent = vec(s, l.Tangent)
	}
	if n := l.ExtraFloats(); n > 0 {
		v.Extra = make([]float32, 0, n)
		for _, c := range l.Extra {
			v.Extra = append(v.Extra, s[c.Offset:c.Offset+c.Floats]...)
		}
	}
	return v
}

// put encodes v into the vertex slot s.
func (l Layout) put(s []float32, v csg.Vertex) {
	putVec(s, l.Position, v.Position)
	if l.Normal >= 0 {
		putVec(s, l.Normal, v.Normal)
	}
	if l.Tangent >= 0 {
		putVec(s, l.Tangent, v.Tangent)
	}
	extra := v.Extra
	for _, c := range l.Extra {
		n := copy(s[c.Offset:c.Offset+c.Floats], extra)
		extra = extra[n:]
	}
}

func vec(s []float32, off int) geom.Vec {
	return geom.Vec{X: float64(s[off]), Y: float64(s[off+1]), Z: float64(s[off+2])}
}

func putVec(s []float32, off int, v geom.Vec) {
	s[off] = float32(v.X)
	s[off+1] = float32(v.Y)
	s[off+2] = float32(v.Z)
}
