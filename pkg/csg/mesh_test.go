package csg

import (
	"math"
	"testing"

	"github.com/chazu/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

func vecNear(a, b geom.Vec) bool { return geom.Near(a, b, 1e-9) }

// flat builds a mesh in the z=0 plane from 2D points and faces.
func flat(pts [][2]float64, faces ...[3]int) *Mesh {
	m := New(StandardAttributes())
	for _, p := range pts {
		m.AddVertex(Vertex{Position: geom.Vec{X: p[0], Y: p[1]}, Normal: geom.Vec{Z: 1}})
	}
	for _, f := range faces {
		m.AddFace(f[0], f[1], f[2])
	}
	return m
}

func area(m *Mesh) float64 {
	var a float64
	for i := range m.Faces {
		a += m.Triangle(i).Area()
	}
	return a
}

func TestBoxPrimitive(t *testing.T) {
	m := Box(geom.Vec{X: 1, Y: 2, Z: 3}, geom.Vec{X: 2, Y: 4, Z: 6})
	if len(m.Vertices) != 24 || len(m.Faces) != 12 {
		t.Fatalf("Box has %d vertices and %d faces, want 24 and 12", len(m.Vertices), len(m.Faces))
	}
	requireClosed(t, m)
	if v := volume(m); math.Abs(v-6) > 1e-12 {
		t.Errorf("volume = %v, want 6", v)
	}
	for i, f := range m.Faces {
		n := m.Triangle(i).Normal()
		for _, idx := range f.V {
			if !vecNear(m.Vertices[idx].Normal, n) {
				t.Errorf("face %d: vertex normal %v, face normal %v", i, m.Vertices[idx].Normal, n)
			}
		}
	}
	b := m.Bounds()
	if !vecNear(b.Min, geom.Vec{X: 1, Y: 2, Z: 3}) || !vecNear(b.Max, geom.Vec{X: 2, Y: 4, Z: 6}) {
		t.Errorf("Bounds = %v", b)
	}
}

func TestCylinderPrimitive(t *testing.T) {
	tests := []struct {
		segments, want int
	}{
		{16, 16},
		{3, 3},
		{1, 3},
	}
	for _, tt := range tests {
		m := Cylinder(2, 0.5, tt.segments)
		if len(m.Faces) != 4*tt.want {
			t.Errorf("Cylinder(%d): %d faces, want %d", tt.segments, len(m.Faces), 4*tt.want)
		}
		requireClosed(t, m)
		n := float64(tt.want)
		want := 0.5 * n * 0.25 * math.Sin(2*math.Pi/n) * 2
		if v := volume(m); math.Abs(v-want) > 1e-9 {
			t.Errorf("Cylinder(%d): volume = %v, want %v", tt.segments, v, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		face [3]int
		ok   bool
	}{
		{"good", [3]int{0, 1, 2}, true},
		{"negative", [3]int{-1, 1, 2}, false},
		{"out of range", [3]int{0, 1, 3}, false},
		{"repeated", [3]int{0, 1, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := flat([][2]float64{{0, 0}, {1, 0}, {0, 1}}, tt.face)
			err := m.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := Cube(1)
	m.Attributes = append(m.Attributes, ColorAttribute())
	for i := range m.Vertices {
		m.Vertices[i].Extra = []float32{1, 0, 0, 1}
	}
	m.Faces[0].boundary = true

	c := m.Clone()
	c.Vertices[0].Position = geom.Vec{X: 9}
	c.Vertices[0].Extra[0] = 5
	c.Faces[1].V[0] = 3
	c.Attributes[0].Name = "changed"

	if m.Vertices[0].Position == c.Vertices[0].Position {
		t.Error("clone shares positions")
	}
	if m.Vertices[0].Extra[0] != 1 {
		t.Error("clone shares extra channels")
	}
	if m.Faces[1].V[0] == 3 {
		t.Error("clone shares faces")
	}
	if m.Attributes[0].Name == "changed" {
		t.Error("clone shares attributes")
	}
	if c.Faces[0].Boundary() {
		t.Error("clone copied run state")
	}
}

func TestMergeWith(t *testing.T) {
	a := Cube(1)
	b := translated(Cube(1), geom.Vec{X: 3})
	a.MergeWith(b)
	if len(a.Vertices) != 48 || len(a.Faces) != 24 {
		t.Fatalf("merged mesh has %d vertices and %d faces", len(a.Vertices), len(a.Faces))
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for i := 12; i < 24; i++ {
		if c := a.Triangle(i).Centroid(); c.X < 2 {
			t.Fatalf("face %d of second operand has centroid %v", i, c)
		}
	}
	requireClosed(t, a)
}

func TestInvertTriangles(t *testing.T) {
	m := Cube(1)
	m.InvertTriangles()
	if v := volume(m); math.Abs(v+1) > 1e-12 {
		t.Fatalf("inverted volume = %v, want -1", v)
	}
	for i, f := range m.Faces {
		n := m.Triangle(i).Normal()
		if !vecNear(m.Vertices[f.V[0]].Normal, n) {
			t.Fatalf("face %d: vertex normal %v does not follow face normal %v", i, m.Vertices[f.V[0]].Normal, n)
		}
	}
	requireClosed(t, m)
}

func TestDeleteUnusedVertices(t *testing.T) {
	m := flat([][2]float64{{5, 5}, {0, 0}, {6, 6}, {1, 0}, {0, 1}}, [3]int{1, 3, 4})
	m.status = []InsideStatus{Outside, Inside, Outside, Boundary, Inside}
	m.DeleteUnusedVertices()

	if len(m.Vertices) != 3 {
		t.Fatalf("%d vertices left, want 3", len(m.Vertices))
	}
	if m.Faces[0].V != [3]int{0, 1, 2} {
		t.Fatalf("face = %v, want [0 1 2]", m.Faces[0].V)
	}
	if !vecNear(m.Vertices[1].Position, geom.Vec{X: 1}) {
		t.Errorf("vertex 1 = %v", m.Vertices[1].Position)
	}
	want := []InsideStatus{Inside, Boundary, Inside}
	for i, s := range want {
		if m.Status(i) != s {
			t.Errorf("Status(%d) = %v, want %v", i, m.Status(i), s)
		}
	}
}

func TestTransform(t *testing.T) {
	t.Run("rotate", func(t *testing.T) {
		m := Cube(1)
		m.Transform(sdf.RotateZ(math.Pi / 4).Mul(sdf.Translate3d(geom.Vec{X: 1})))
		requireClosed(t, m)
		if v := volume(m); math.Abs(v-1) > 1e-9 {
			t.Errorf("volume = %v, want 1", v)
		}
		for i, f := range m.Faces {
			n := m.Triangle(i).Normal()
			if !geom.Near(m.Vertices[f.V[0]].Normal, n, 1e-9) {
				t.Fatalf("face %d: normal %v not rotated with face %v", i, m.Vertices[f.V[0]].Normal, n)
			}
		}
	})
	t.Run("mirror", func(t *testing.T) {
		m := Cube(1)
		m.Transform(sdf.Scale3d(geom.Vec{X: -1, Y: 1, Z: 1}))
		if v := volume(m); math.Abs(v-1) > 1e-12 {
			t.Fatalf("mirrored volume = %v, want 1", v)
		}
		requireClosed(t, m)
	})
}

func TestCheckOpenMesh(t *testing.T) {
	m := Cube(1)
	m.Faces = m.Faces[:len(m.Faces)-1]
	r := m.Check()
	if r.Watertight() {
		t.Fatal("cube with a missing face reported watertight")
	}
	if r.OpenEdges != 3 {
		t.Errorf("OpenEdges = %d, want 3", r.OpenEdges)
	}
}

func TestCheckMisoriented(t *testing.T) {
	m := Cube(1)
	f := &m.Faces[0]
	f.V[1], f.V[2] = f.V[2], f.V[1]
	r := m.Check()
	if r.MisorientedEdges == 0 {
		t.Fatalf("flipped face not reported: %v", r)
	}
}

func TestCheckDegenerate(t *testing.T) {
	m := flat([][2]float64{{0, 0}, {1, 0}, {2, 0}, {0, 1}}, [3]int{0, 1, 2}, [3]int{0, 1, 3})
	r := m.Check()
	if len(r.Degenerate) != 1 || r.Degenerate[0] != 0 {
		t.Fatalf("Degenerate = %v, want [0]", r.Degenerate)
	}
}

func TestCheckWelding(t *testing.T) {
	tests := []struct {
		name string
		pts  [][2]float64
		open int
	}{
		// Corners 3e-5 apart are distinct points.
		{"small triangle", [][2]float64{{0, 0}, {3e-5, 0}, {0, 3e-5}}, 3},
		// A corner 5e-6 from another vertex is that vertex.
		{"collapsed corner", [][2]float64{{0, 0}, {5e-6, 0}, {0, 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := flat(tt.pts, [3]int{0, 1, 2}).Check()
			if r.OpenEdges != tt.open {
				t.Errorf("OpenEdges = %d, want %d (%v)", r.OpenEdges, tt.open, r)
			}
		})
	}
}

func TestAttributes(t *testing.T) {
	attrs := []Attribute{
		PositionAttribute(),
		NormalAttribute(),
		TangentAttribute(),
		ColorAttribute(),
		TexCoordAttribute(1),
		{Usage: UsageColorPacked, Components: 4, Type: TypeUnsignedByte, Normalized: true, Name: "a_packed"},
	}
	if n := ExtraCount(attrs); n != 4+2+1 {
		t.Errorf("ExtraCount = %d, want 7", n)
	}
	if s := attrs[5].Size(); s != 4 {
		t.Errorf("packed color size = %d, want 4", s)
	}
	if attrs[4].Name != "a_texCoord1" || attrs[4].Unit != 1 {
		t.Errorf("TexCoordAttribute(1) = %+v", attrs[4])
	}
	if attrs[2].IsExtra() || !attrs[3].IsExtra() {
		t.Error("IsExtra misclassifies channels")
	}
}
