package meshio

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/geom"
	"github.com/chazu/carve/pkg/kernel"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF reads every triangle primitive of every mesh in a .gltf or .glb
// file into one csg mesh with the standard layout. Node transforms are
// not applied. Primitives without NORMAL get zero normals.
func LoadGLTF(path string) (*csg.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "meshio: open %s", path)
	}

	m := csg.New(csg.StandardAttributes())
	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				Logger().Debug("meshio: skipping primitive", "mesh", mi, "primitive", pi, "mode", prim.Mode)
				continue
			}
			if err := loadPrimitive(doc, prim, m); err != nil {
				return nil, errors.Wrapf(err, "meshio: %s: mesh %d primitive %d", path, mi, pi)
			}
		}
	}
	Logger().Debug("meshio: loaded gltf", "path", path, "vertices", len(m.Vertices), "faces", len(m.Faces))
	return m, nil
}

func loadPrimitive(doc *gltf.Document, prim *gltf.Primitive, m *csg.Mesh) error {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return errors.New("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return errors.Wrap(err, "read positions")
	}

	var normals [][3]float32
	if nIdx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[nIdx], nil)
		if err != nil {
			return errors.Wrap(err, "read normals")
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return errors.Wrap(err, "read indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return errors.Errorf("%d indices do not form triangles", len(indices))
	}

	base := len(m.Vertices)
	for i, p := range positions {
		v := csg.Vertex{Position: vec3(p)}
		if i < len(normals) {
			v.Normal = vec3(normals[i])
		}
		m.AddVertex(v)
	}
	for i := 0; i < len(indices); i += 3 {
		for _, idx := range indices[i : i+3] {
			if int(idx) >= len(positions) {
				return errors.Wrapf(ErrMissingVertex, "face %d uses vertex %d", i/3, idx)
			}
		}
		m.AddFace(base+int(indices[i]), base+int(indices[i+1]), base+int(indices[i+2]))
	}
	return nil
}

// SaveGLTF writes each non-empty part as its own glTF mesh and node. A .glb
// extension writes the binary container; anything else writes JSON with
// the buffer embedded.
func SaveGLTF(path string, parts ...*kernel.Mesh) error {
	doc := gltf.NewDocument()
	for i, part := range parts {
		if part.IsEmpty() {
			continue
		}
		name := part.PartName
		if name == "" {
			name = "part" + strconv.Itoa(i)
		}
		positions := triples(part.Vertices)
		prim := &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(doc, part.Indices)),
			Attributes: map[string]uint32{"POSITION": modeler.WritePosition(doc, positions)},
		}
		if len(part.Normals) == len(part.Vertices) {
			prim.Attributes["NORMAL"] = modeler.WriteNormal(doc, triples(part.Normals))
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	var err error
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return errors.Wrapf(err, "meshio: save %s", path)
	}
	Logger().Debug("meshio: saved gltf", "path", path, "parts", len(parts))
	return nil
}

func vec3(p [3]float32) geom.Vec {
	return geom.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

func triples(flat []float32) [][3]float32 {
	out := make([][3]float32, len(flat)/3)
	for i := range out {
		out[i] = [3]float32{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return out
}
