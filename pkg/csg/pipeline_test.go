package csg

import (
	"math"
	"testing"

	"github.com/chazu/carve/pkg/geom"
	"github.com/pkg/errors"
)

// wall is a single vertical triangle in the plane x=0.5.
func wall() *Mesh {
	m := New(StandardAttributes())
	m.AddVertex(Vertex{Position: geom.Vec{X: 0.5, Y: -1, Z: -1}})
	m.AddVertex(Vertex{Position: geom.Vec{X: 0.5, Y: 3, Z: -1}})
	m.AddVertex(Vertex{Position: geom.Vec{X: 0.5, Y: -1, Z: 1}})
	m.AddFace(0, 1, 2)
	return m
}

func TestSplitTriangle(t *testing.T) {
	attrs := append(StandardAttributes(), ColorAttribute())
	m := flat([][2]float64{{0, 0}, {2, 0}, {0, 2}}, [3]int{0, 1, 2})
	m.Attributes = attrs
	m.Vertices[0].Extra = []float32{0, 0, 0, 1}
	m.Vertices[1].Extra = []float32{1, 1, 1, 1}
	m.Vertices[2].Extra = []float32{0, 0, 0, 1}

	if err := m.SplitTriangles(wall()); err != nil {
		t.Fatalf("SplitTriangles: %v", err)
	}
	if len(m.Faces) != 3 {
		t.Fatalf("%d faces after split, want 3", len(m.Faces))
	}
	if len(m.Vertices) != 5 {
		t.Fatalf("%d vertices after split, want 5", len(m.Vertices))
	}
	if a := area(m); math.Abs(a-2) > 1e-12 {
		t.Errorf("area = %v, want 2", a)
	}
	for i := range m.Faces {
		tri := m.Triangle(i)
		if tri.Normal().Z < 0.999 {
			t.Errorf("face %d flipped: normal %v", i, tri.Normal())
		}
		box := tri.Bounds()
		if box.Min.X < 0.5-1e-9 && box.Max.X > 0.5+1e-9 {
			t.Errorf("face %d still crosses the cut: %v", i, box)
		}
	}
	if len(m.cutEdges) == 0 {
		t.Error("no cut edges recorded")
	}

	var cut *Vertex
	for i := range m.Vertices {
		if vecNear(m.Vertices[i].Position, geom.Vec{X: 0.5}) {
			cut = &m.Vertices[i]
		}
	}
	if cut == nil {
		t.Fatal("no vertex at the cut point (0.5, 0, 0)")
	}
	if math.Abs(float64(cut.Extra[0])-0.25) > 1e-6 || math.Abs(float64(cut.Extra[3])-1) > 1e-6 {
		t.Errorf("interpolated color = %v, want [0.25 0.25 0.25 1]", cut.Extra)
	}
	if !vecNear(cut.Normal, geom.Vec{Z: 1}) {
		t.Errorf("interpolated normal = %v", cut.Normal)
	}
}

func TestSplitSharesCutVertices(t *testing.T) {
	// Two triangles sharing the edge (1,0)-(0,1), both crossed by x=0.5.
	m := flat([][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, [3]int{0, 1, 2}, [3]int{1, 3, 2})
	if err := m.SplitTriangles(wall()); err != nil {
		t.Fatalf("SplitTriangles: %v", err)
	}
	n := 0
	for _, v := range m.Vertices {
		if vecNear(v.Position, geom.Vec{X: 0.5, Y: 0.5}) {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("%d vertices at the shared cut point, want 1", n)
	}
	if a := area(m); math.Abs(a-1) > 1e-12 {
		t.Errorf("area = %v, want 1", a)
	}
}

func TestSplitFlagsCoplanarFaces(t *testing.T) {
	tests := []struct {
		name     string
		boundary bool
	}{
		{"enabled", true},
		{"disabled", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Cube(1)
			m.Config.EnableBoundaryFaces = tt.boundary
			if err := m.SplitTriangles(Cube(1)); err != nil {
				t.Fatalf("SplitTriangles: %v", err)
			}
			if len(m.Faces) != 12 {
				t.Fatalf("%d faces, want 12", len(m.Faces))
			}
			for i, f := range m.Faces {
				if f.Boundary() != tt.boundary {
					t.Errorf("face %d: Boundary() = %v, want %v", i, f.Boundary(), tt.boundary)
				}
			}
		})
	}
}

func TestSplitSliver(t *testing.T) {
	// The wall crosses this sliver along a chord shorter than the tolerance.
	m := flat([][2]float64{{0.45, 0}, {0.9, 0}, {0.9, 2e-5}}, [3]int{0, 1, 2})
	if err := m.SplitTriangles(wall()); err != nil {
		t.Fatalf("SplitTriangles: %v", err)
	}
	if len(m.Faces) != 1 {
		t.Fatalf("%d faces after split, want 1", len(m.Faces))
	}
	if got := m.Triangle(0).Bounds().Min.X; got < 0.5-1e-9 {
		t.Errorf("sliver still reaches x=%v behind the wall", got)
	}
	if p := m.Vertices[m.Faces[0].V[0]].Position; !geom.Near(p, geom.Vec{X: 0.5}, 1e-5) {
		t.Errorf("face starts at %v, want the cut point (0.5, 0, 0)", p)
	}
}

func TestMergePass(t *testing.T) {
	t.Run("collinear pair", func(t *testing.T) {
		m := flat([][2]float64{{0, 0}, {1, 0}, {2, 0}, {0, 2}}, [3]int{0, 1, 3}, [3]int{1, 2, 3})
		if n := m.simplify(10); n != 1 {
			t.Fatalf("simplify merged %d, want 1", n)
		}
		if len(m.Faces) != 1 {
			t.Fatalf("%d faces, want 1", len(m.Faces))
		}
		tri := m.Triangle(0)
		if math.Abs(tri.Area()-2) > 1e-12 || tri.Normal().Z < 0.999 {
			t.Errorf("merged face %v: area %v normal %v", m.Faces[0].V, tri.Area(), tri.Normal())
		}
	})
	t.Run("kept across a cut edge", func(t *testing.T) {
		m := flat([][2]float64{{0, 0}, {1, 0}, {2, 0}, {0, 2}}, [3]int{0, 1, 3}, [3]int{1, 2, 3})
		m.cutEdges = []geom.Segment{{A: geom.Vec{X: 1}, B: geom.Vec{Y: 2}}}
		if n := m.simplify(10); n != 0 {
			t.Fatalf("simplify merged %d across a cut edge", n)
		}
	})
	t.Run("not collinear", func(t *testing.T) {
		m := flat([][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, [3]int{0, 1, 2}, [3]int{0, 2, 3})
		if n := m.simplify(10); n != 0 {
			t.Fatalf("simplify merged a square's halves (%d)", n)
		}
	})
	t.Run("fan", func(t *testing.T) {
		// Four slivers along the x axis collapse into one triangle.
		m := flat([][2]float64{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {0, 4}},
			[3]int{0, 1, 5}, [3]int{1, 2, 5}, [3]int{2, 3, 5}, [3]int{3, 4, 5})
		m.simplify(10)
		if len(m.Faces) != 1 {
			t.Fatalf("%d faces left, want 1", len(m.Faces))
		}
		if a := area(m); math.Abs(a-8) > 1e-12 {
			t.Errorf("area = %v, want 8", a)
		}
	})
}

func TestConformEdges(t *testing.T) {
	// Face 0-1-2 has vertex 3 in the middle of its edge 0-1.
	m := flat([][2]float64{{0, 0}, {2, 0}, {1, 2}, {1, 0}, {1, -2}},
		[3]int{0, 1, 2}, [3]int{0, 4, 3}, [3]int{3, 4, 1})
	if n := m.ConformEdges(); n != 1 {
		t.Fatalf("ConformEdges = %d, want 1", n)
	}
	if len(m.Faces) != 4 {
		t.Fatalf("%d faces, want 4", len(m.Faces))
	}
	if a := area(m); math.Abs(a-4) > 1e-12 {
		t.Errorf("area = %v, want 4", a)
	}
	r := m.Check()
	if r.OpenEdges != 4 || r.NonManifoldEdges != 0 || r.MisorientedEdges != 0 {
		t.Errorf("Check = %v, want only the 4 outline edges open", r)
	}
	if n := m.ConformEdges(); n != 0 {
		t.Errorf("second ConformEdges = %d, want 0", n)
	}
}

func TestConformSkipsDegenerateSplits(t *testing.T) {
	// Vertex 3 lies on edge 0-1 of a needle face, and within the
	// tolerance of its edge 2-0. Either split would leave a zero-area half.
	m := flat([][2]float64{{0, 0}, {1, 0}, {0.5, 1.5e-9}, {0.1, 0}, {0.1, -1}},
		[3]int{0, 1, 2}, [3]int{0, 4, 3})
	if n := m.ConformEdges(); n != 0 {
		t.Fatalf("ConformEdges = %d, want 0", n)
	}
	if len(m.Faces) != 2 {
		t.Fatalf("%d faces, want 2", len(m.Faces))
	}
	if r := m.Check(); len(r.Degenerate) != 0 {
		t.Errorf("degenerate faces %v after conforming", r.Degenerate)
	}
}

func TestComputeInsideStatus(t *testing.T) {
	cube := Cube(1)
	tests := []struct {
		name string
		p    geom.Vec
		want InsideStatus
	}{
		{"center", geom.Vec{}, Inside},
		{"off center", geom.Vec{X: 0.2, Y: -0.4, Z: 0.3}, Inside},
		{"above", geom.Vec{Y: 2}, Outside},
		{"below", geom.Vec{Y: -2}, Outside},
		{"beside", geom.Vec{X: 2}, Outside},
		{"on top", geom.Vec{Y: 0.5}, Boundary},
		{"on side", geom.Vec{X: 0.5, Y: 0.1}, Boundary},
		{"on edge", geom.Vec{X: 0.5, Z: 0.5}, Boundary},
		{"corner", geom.Vec{X: -0.5, Y: -0.5, Z: -0.5}, Boundary},
		{"under a diagonal", geom.Vec{X: 0.1, Y: 0.1, Z: 0.1}, Inside},
		{"under an edge", geom.Vec{X: 0.5, Y: -3, Z: 0.5}, Outside},
		{"inside near a side", geom.Vec{X: 0.5 - 1e-3}, Inside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeInsideStatus(tt.p, cube, 1e-5)
			if err != nil {
				t.Fatalf("ComputeInsideStatus: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeInsideStatus(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeInsideStatusGrazing(t *testing.T) {
	// The 12-gon has corners at (±0.5, 0). A +y ray through x=±0.5 touches
	// the prism along a silhouette edge without entering it.
	cyl := Cylinder(1, 0.5, 12)
	tests := []struct {
		name string
		p    geom.Vec
		want InsideStatus
	}{
		{"below left silhouette", geom.Vec{X: -0.5, Y: -0.3, Z: 0.2}, Outside},
		{"below right silhouette", geom.Vec{X: 0.5, Y: -1, Z: 0.2}, Outside},
		{"below right corner line", geom.Vec{X: 0.5, Y: -1}, Outside},
		{"center", geom.Vec{}, Inside},
		{"inside", geom.Vec{X: 0.2, Y: -0.3, Z: 0.2}, Inside},
		{"below", geom.Vec{Y: -1}, Outside},
		{"on silhouette", geom.Vec{X: -0.5, Z: 0.2}, Boundary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeInsideStatus(tt.p, cyl, 1e-5)
			if err != nil {
				t.Fatalf("ComputeInsideStatus: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeInsideStatus(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestClassifyFaces(t *testing.T) {
	m := flat([][2]float64{{0, 0}, {2, 0}, {0, 2}}, [3]int{0, 1, 2})
	m = translated(m, geom.Vec{X: -0.25, Y: -0.25, Z: 0.1})
	if err := m.ClassifyFaces(Cube(1)); err != nil {
		t.Fatalf("ClassifyFaces: %v", err)
	}
	want := []InsideStatus{Inside, Outside, Outside}
	for i, s := range want {
		if got := m.Status(i); got != s {
			t.Errorf("Status(%d) = %v, want %v", i, got, s)
		}
	}
	if m.Status(7) != Unclassified {
		t.Error("out of range vertex is classified")
	}
}

func TestRemoveFaces(t *testing.T) {
	tri := func(status ...InsideStatus) *Mesh {
		m := flat([][2]float64{{0, 0}, {1, 0}, {0, 1}}, [3]int{0, 1, 2})
		m.status = status
		return m
	}
	tests := []struct {
		name             string
		status           []InsideStatus
		boundaryFace     bool
		inside, boundary bool
		kept             bool
	}{
		{"inside removed", []InsideStatus{Inside, Boundary, Boundary}, false, true, false, false},
		{"inside kept", []InsideStatus{Inside, Inside, Inside}, false, false, false, true},
		{"outside removed", []InsideStatus{Outside, Boundary, Outside}, false, false, false, false},
		{"outside kept", []InsideStatus{Outside, Outside, Outside}, false, true, true, true},
		{"all boundary counts as inside", []InsideStatus{Boundary, Boundary, Boundary}, false, true, false, false},
		{"boundary face removed", []InsideStatus{Boundary, Boundary, Boundary}, true, false, true, false},
		{"boundary face kept", []InsideStatus{Boundary, Boundary, Boundary}, true, false, false, true},
		{"flag needs all boundary", []InsideStatus{Boundary, Inside, Boundary}, true, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tri(tt.status...)
			m.Faces[0].boundary = tt.boundaryFace
			if err := m.RemoveFaces(tt.inside, tt.boundary); err != nil {
				t.Fatalf("RemoveFaces: %v", err)
			}
			if kept := len(m.Faces) == 1; kept != tt.kept {
				t.Fatalf("kept = %v, want %v", kept, tt.kept)
			}
			if !tt.kept && len(m.Vertices) != 0 {
				t.Errorf("%d vertices left after removing the only face", len(m.Vertices))
			}
		})
	}
}

func TestRemoveFacesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status []InsideStatus
		want   error
	}{
		{"inside and outside", []InsideStatus{Inside, Outside, Boundary}, ErrInsideAndOutside},
		{"unclassified", []InsideStatus{Inside, Unclassified, Inside}, ErrUnclassifiedVertex},
		{"not classified at all", nil, ErrUnclassifiedVertex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := flat([][2]float64{{0, 0}, {1, 0}, {0, 1}}, [3]int{0, 1, 2})
			m.status = tt.status
			err := m.RemoveFaces(true, true)
			if errors.Cause(err) != tt.want {
				t.Fatalf("RemoveFaces error = %v, want %v", err, tt.want)
			}
			if len(m.Faces) != 1 || len(m.Vertices) != 3 {
				t.Error("mesh changed on error")
			}
		})
	}
}

func TestInsideStatusString(t *testing.T) {
	tests := map[InsideStatus]string{
		Unclassified:    "unclassified",
		Inside:          "inside",
		Outside:         "outside",
		Boundary:        "boundary",
		InsideStatus(9): "InsideStatus(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
