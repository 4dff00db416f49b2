// Package csg computes boolean combinations (subtraction, union and
// intersection) of closed triangle meshes.
//
// A run deep-copies both operands, splits each copy along its
// intersection with the other, classifies every vertex against the other
// operand by ray casting, drops the faces the operation does not keep and
// merges what is left. There is no half-edge or B-rep topology: meshes are
// a vertex arena plus a list of index triples.
//
// Inputs are expected to be closed, consistently wound (counter-clockwise
// seen from outside) and free of self-intersections.
package csg

import (
	"fmt"

	"github.com/chazu/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// InsideStatus classifies a point against a closed mesh.
type InsideStatus uint8

const (
	Unclassified InsideStatus = iota
	Inside
	Outside
	Boundary
)

func (s InsideStatus) String() string {
	switch s {
	case Unclassified:
		return "unclassified"
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Boundary:
		return "boundary"
	default:
		return fmt.Sprintf("InsideStatus(%d)", int(s))
	}
}

// Vertex is an entry of a mesh's vertex arena. Identity is the arena
// index: two vertices at the same position are distinct.
type Vertex struct {
	Position geom.Vec
	Normal   geom.Vec
	Tangent  geom.Vec
	// Extra holds the non-geometric channels (colors, texture coordinates,
	// ...) in layout order. Its length is ExtraCount(mesh.Attributes).
	Extra []float32
}

func (v Vertex) clone() Vertex {
	if v.Extra != nil {
		v.Extra = append([]float32(nil), v.Extra...)
	}
	return v
}

// Face is a triangle given by three distinct vertex indices.
type Face struct {
	V [3]int

	// boundary marks a face overlapping a coplanar face of the other
	// operand during the current run.
	boundary bool
}

// Boundary reports whether the face was flagged as overlapping a coplanar
// face of the other operand in the current run.
func (f Face) Boundary() bool { return f.boundary }

// Mesh is a triangle mesh with an indexed vertex arena.
//
// A Mesh is not safe for concurrent use.
type Mesh struct {
	Vertices   []Vertex
	Faces      []Face
	Attributes []Attribute
	Config     Config

	// per-run state
	status   []InsideStatus
	cutEdges []geom.Segment
}

// New returns an empty mesh with the given layout and the default
// configuration.
func New(attrs []Attribute) *Mesh {
	return &Mesh{
		Attributes: append([]Attribute(nil), attrs...),
		Config:     DefaultConfig(),
	}
}

// AddVertex appends v to the arena and returns its index.
func (m *Mesh) AddVertex(v Vertex) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends the triangle (a, b, c).
func (m *Mesh) AddFace(a, b, c int) {
	m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}})
}

// Triangle returns the geometry of face i.
func (m *Mesh) Triangle(i int) geom.Triangle {
	f := m.Faces[i]
	return geom.Triangle{
		P1: m.Vertices[f.V[0]].Position,
		P2: m.Vertices[f.V[1]].Position,
		P3: m.Vertices[f.V[2]].Position,
	}
}

// Bounds returns the box around all vertices.
func (m *Mesh) Bounds() geom.Box {
	b := geom.EmptyBox()
	for _, v := range m.Vertices {
		b = b.Extend(v.Position)
	}
	return b
}

// Validate checks that every face references three distinct vertices of
// the arena.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		for _, idx := range f.V {
			if idx < 0 || idx >= len(m.Vertices) {
				return faceError(ErrBadFace, i, f)
			}
		}
		if f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[2] == f.V[0] {
			return faceError(ErrBadFace, i, f)
		}
	}
	return nil
}

// Clone returns a deep copy of m. Run state is not copied.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:   make([]Vertex, len(m.Vertices)),
		Faces:      make([]Face, len(m.Faces)),
		Attributes: append([]Attribute(nil), m.Attributes...),
		Config:     m.Config,
	}
	for i, v := range m.Vertices {
		c.Vertices[i] = v.clone()
	}
	for i, f := range m.Faces {
		c.Faces[i] = Face{V: f.V}
	}
	return c
}

// MergeWith appends the vertices and faces of o to m. Nothing is
// deduplicated and o is not copied; clone it first if it is still needed.
func (m *Mesh) MergeWith(o *Mesh) {
	off := len(m.Vertices)
	if len(m.status) == len(m.Vertices) && len(o.status) == len(o.Vertices) {
		m.status = append(m.status, o.status...)
	} else {
		m.status = nil
	}
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, f := range o.Faces {
		f.V[0] += off
		f.V[1] += off
		f.V[2] += off
		m.Faces = append(m.Faces, f)
	}
	m.cutEdges = append(m.cutEdges, o.cutEdges...)
}

// InvertTriangles reverses the winding of every face and negates every
// vertex normal, turning the mesh inside out.
func (m *Mesh) InvertTriangles() {
	for i := range m.Faces {
		f := &m.Faces[i]
		f.V[1], f.V[2] = f.V[2], f.V[1]
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Neg()
	}
}

// DeleteUnusedVertices drops vertices no face references and renumbers
// the faces. Classification state follows the surviving vertices.
func (m *Mesh) DeleteUnusedVertices() {
	used := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		for _, idx := range f.V {
			used[idx] = true
		}
	}

	remap := make([]int, len(m.Vertices))
	keepStatus := len(m.status) == len(m.Vertices)
	n := 0
	for i, v := range m.Vertices {
		if !used[i] {
			remap[i] = -1
			continue
		}
		remap[i] = n
		m.Vertices[n] = v
		if keepStatus {
			m.status[n] = m.status[i]
		}
		n++
	}
	clear(m.Vertices[n:])
	m.Vertices = m.Vertices[:n]
	if keepStatus {
		m.status = m.status[:n]
	}

	for i := range m.Faces {
		f := &m.Faces[i]
		for k := range f.V {
			f.V[k] = remap[f.V[k]]
		}
	}
}

// Transform applies t to every position. Normals and tangents go through
// the linear part of t and are renormalized. A mirroring transform also
// reverses the winding so faces keep pointing outwards.
func (m *Mesh) Transform(t sdf.M44) {
	origin := t.MulPosition(geom.Vec{})
	linear := func(d geom.Vec) geom.Vec {
		return geom.Normalize(t.MulPosition(d).Sub(origin))
	}
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = t.MulPosition(v.Position)
		v.Normal = linear(v.Normal)
		v.Tangent = linear(v.Tangent)
	}

	x := t.MulPosition(geom.Vec{X: 1}).Sub(origin)
	y := t.MulPosition(geom.Vec{Y: 1}).Sub(origin)
	z := t.MulPosition(geom.Vec{Z: 1}).Sub(origin)
	if x.Cross(y).Dot(z) < 0 {
		for i := range m.Faces {
			f := &m.Faces[i]
			f.V[1], f.V[2] = f.V[2], f.V[1]
		}
	}
}

// Status returns the classification of vertex i from the last
// ClassifyFaces call.
func (m *Mesh) Status(i int) InsideStatus {
	if i < 0 || i >= len(m.status) {
		return Unclassified
	}
	return m.status[i]
}

// ClearRunState drops the classification, boundary flags and cut edges
// left by a boolean run.
func (m *Mesh) ClearRunState() {
	m.status = nil
	m.cutEdges = nil
	for i := range m.Faces {
		m.Faces[i].boundary = false
	}
}

func (m *Mesh) String() string {
	return fmt.Sprintf("csg.Mesh{%d vertices, %d faces}", len(m.Vertices), len(m.Faces))
}
