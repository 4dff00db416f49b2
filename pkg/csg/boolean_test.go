package csg

import (
	"math"
	"strconv"
	"testing"

	"github.com/chazu/carve/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// volume returns the signed volume enclosed by m.
func volume(m *Mesh) float64 {
	var v float64
	for i := range m.Faces {
		t := m.Triangle(i)
		v += t.P1.Dot(t.P2.Cross(t.P3))
	}
	return v / 6
}

func translated(m *Mesh, d geom.Vec) *Mesh {
	c := m.Clone()
	c.Transform(sdf.Translate3d(d))
	return c
}

// yPlanes returns the heights of the faces of m whose normal is ±y.
func yPlanes(m *Mesh) map[float64]bool {
	out := make(map[float64]bool)
	for i := range m.Faces {
		t := m.Triangle(i)
		if math.Abs(math.Abs(t.Normal().Y)-1) < 1e-9 {
			out[math.Round(t.P1.Y*1e6)/1e6] = true
		}
	}
	return out
}

func requireClosed(t *testing.T, m *Mesh) {
	t.Helper()
	r := m.Check()
	if !r.Watertight() {
		t.Fatalf("result is not watertight: %v", r)
	}
	if len(r.Degenerate) != 0 {
		t.Fatalf("result has degenerate faces %v: %v", r.Degenerate, r)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestOverlappingCubes(t *testing.T) {
	cube := Cube(1)
	tests := []struct {
		name   string
		op     Op
		shift  geom.Vec
		volume float64
		planes []float64
	}{
		{"subtract below", OpSubtract, geom.Vec{Y: -0.3}, 0.3, []float64{0.2, 0.5}},
		{"union below", OpUnion, geom.Vec{Y: -0.3}, 1.3, []float64{-0.8, 0.5}},
		{"intersect below", OpIntersect, geom.Vec{Y: -0.3}, 0.7, []float64{-0.5, 0.2}},
		{"subtract above", OpSubtract, geom.Vec{Y: 0.3}, 0.3, []float64{-0.5, -0.2}},
		{"union above", OpUnion, geom.Vec{Y: 0.3}, 1.3, []float64{-0.5, 0.8}},
		{"intersect above", OpIntersect, geom.Vec{Y: 0.3}, 0.7, []float64{-0.2, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(tt.op, cube, translated(cube, tt.shift))
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			requireClosed(t, out)
			if v := volume(out); math.Abs(v-tt.volume) > 1e-6 {
				t.Errorf("volume = %v, want %v", v, tt.volume)
			}
			planes := yPlanes(out)
			if len(planes) != len(tt.planes) {
				t.Errorf("y planes = %v, want %v", planes, tt.planes)
			}
			for _, y := range tt.planes {
				if !planes[y] {
					t.Errorf("missing face at y=%v (have %v)", y, planes)
				}
			}
		})
	}
}

func TestDiagonalCubes(t *testing.T) {
	cube := Cube(1)
	other := translated(cube, geom.Vec{X: 0.3, Y: 0.2, Z: 0.1})
	tests := []struct {
		op     Op
		volume float64
	}{
		{OpSubtract, 0.496},
		{OpUnion, 1.496},
		{OpIntersect, 0.504},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			out, err := Apply(tt.op, cube, other)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			requireClosed(t, out)
			if v := volume(out); math.Abs(v-tt.volume) > 1e-6 {
				t.Errorf("volume = %v, want %v", v, tt.volume)
			}
		})
	}
}

func TestSelfOperations(t *testing.T) {
	cube := Cube(1)
	tests := []struct {
		op     Op
		faces  int
		volume float64
	}{
		{OpSubtract, 0, 0},
		{OpUnion, 12, 1},
		{OpIntersect, 12, 1},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			out, err := Apply(tt.op, cube, cube.Clone())
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if len(out.Faces) != tt.faces {
				t.Fatalf("faces = %d, want %d", len(out.Faces), tt.faces)
			}
			if tt.faces > 0 {
				requireClosed(t, out)
			}
			if v := volume(out); math.Abs(v-tt.volume) > 1e-9 {
				t.Errorf("volume = %v, want %v", v, tt.volume)
			}
		})
	}
}

func TestDisjointCubes(t *testing.T) {
	cube := Cube(1)
	far := translated(cube, geom.Vec{X: 3})
	tests := []struct {
		op     Op
		faces  int
		volume float64
	}{
		{OpSubtract, 12, 1},
		{OpUnion, 24, 2},
		{OpIntersect, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			out, err := Apply(tt.op, cube, far)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if len(out.Faces) != tt.faces {
				t.Fatalf("faces = %d, want %d", len(out.Faces), tt.faces)
			}
			if tt.faces > 0 {
				requireClosed(t, out)
			}
			if v := volume(out); math.Abs(v-tt.volume) > 1e-9 {
				t.Errorf("volume = %v, want %v", v, tt.volume)
			}
			if tt.faces == 0 && len(out.Vertices) != 0 {
				t.Errorf("empty result kept %d vertices", len(out.Vertices))
			}
		})
	}
}

func TestBoxCylinder(t *testing.T) {
	cube := Cube(1)
	cyl := Cylinder(2, 0.3, 16)
	// Cross-section of the 16-gon times the unit height of the box.
	inside := 0.5 * 16 * 0.3 * 0.3 * math.Sin(2*math.Pi/16)

	tests := []struct {
		name   string
		op     Op
		a, b   *Mesh
		volume float64
	}{
		{"box minus cylinder", OpSubtract, cube, cyl, 1 - inside},
		{"box union cylinder", OpUnion, cube, cyl, 1 + inside},
		{"box intersect cylinder", OpIntersect, cube, cyl, inside},
		{"cylinder minus box", OpSubtract, cyl, cube, inside},
		{"cylinder union box", OpUnion, cyl, cube, 1 + inside},
		{"cylinder intersect box", OpIntersect, cyl, cube, inside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(tt.op, tt.a, tt.b)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			requireClosed(t, out)
			if v := volume(out); math.Abs(v-tt.volume) > 1e-6 {
				t.Errorf("volume = %v, want %v", v, tt.volume)
			}
		})
	}
}

func transformed(m *Mesh, t sdf.M44) *Mesh {
	c := m.Clone()
	c.Transform(t)
	return c
}

// rotation applies x, then y, then z.
func rotation(x, y, z float64) sdf.M44 {
	return sdf.RotateZ(z).Mul(sdf.RotateY(y).Mul(sdf.RotateX(x)))
}

var allOps = []Op{OpUnion, OpSubtract, OpIntersect}

func TestRotatedCubes(t *testing.T) {
	cube := Cube(1)
	tests := []struct {
		name    string
		x, y, z float64
		// subtract is the expected volume of cube minus the rotated one.
		subtract float64
	}{
		{"tilted", 0.3, 0.4, 0, 0.4958084393706678},
		{"about x", 0.4, 0, 0, 0.49061065332203585},
		{"about z", 0, 0, 0.5, 0.49496729381575083},
		{"all axes", 0.2, 0.7, 1.1, 0.5159092135897873},
		{"edge on", math.Pi / 4, 0, 0, 0.5018066401624377},
		{"corner on", math.Pi / 4, math.Atan(1 / math.Sqrt2), 0, 0.5161274011230533},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := transformed(Cube(0.8), rotation(tt.x, tt.y, tt.z))
			want := map[Op]float64{
				OpSubtract:  tt.subtract,
				OpIntersect: 1 - tt.subtract,
				OpUnion:     0.512 + tt.subtract,
			}
			for _, op := range allOps {
				out, err := Apply(op, cube, other)
				if err != nil {
					t.Fatalf("%v: %v", op, err)
				}
				requireClosed(t, out)
				if v := volume(out); math.Abs(v-want[op]) > 1e-6 {
					t.Errorf("%v volume = %v, want %v", op, v, want[op])
				}
			}
		})
	}
}

func TestCrossedCylinders(t *testing.T) {
	tests := []struct {
		segments                   int
		union, subtract, intersect float64
	}{
		{12, 0.8986852839324088, 0.14868528393240935, 0.6013147160675901},
		{13, 0.9042709079675486, 0.14909575339642475, 0.6060794011746988},
		{16, 0.9159338969515681, 0.1505670322213895, 0.6147998325087906},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.segments), func(t *testing.T) {
			a := Cylinder(1, 0.5, tt.segments)
			b := transformed(a, sdf.RotateX(0.7))
			want := map[Op]float64{OpUnion: tt.union, OpSubtract: tt.subtract, OpIntersect: tt.intersect}
			for _, op := range allOps {
				out, err := Apply(op, a, b)
				if err != nil {
					t.Fatalf("%v: %v", op, err)
				}
				requireClosed(t, out)
				if v := volume(out); math.Abs(v-want[op]) > 1e-6 {
					t.Errorf("%v volume = %v, want %v", op, v, want[op])
				}
			}
		})
	}
}

// TestPlacementSweep combines a unit cube with a cube or prism at
// scattered orientations and offsets. Placements follow additive
// recurrences so every run uses the same ones.
func TestPlacementSweep(t *testing.T) {
	frac := func(x float64) float64 { return math.Mod(x, 1) }
	cube := Cube(1)
	for k := range 40 {
		t.Run(strconv.Itoa(k), func(t *testing.T) {
			x := math.Pi * frac(0.5+float64(k)*0.7548776662466927)
			y := math.Pi * frac(0.5+float64(k)*0.5698402909980532)
			z := math.Pi * frac(float64(k)*0.4142135623730950)
			d := geom.Vec{
				X: 0.6*frac(float64(k)*0.6180339887498949) - 0.3,
				Y: 0.6*frac(float64(k)*0.3819660112501051) - 0.3,
				Z: 0.6*frac(float64(k)*0.2360679774997897) - 0.3,
			}
			b := Cube(0.8)
			if k%2 == 1 {
				b = Cylinder(1.2, 0.4, []int{8, 12, 16}[(k/2)%3])
			}
			b = transformed(b, sdf.Translate3d(d).Mul(rotation(x, y, z)))

			vols := make(map[Op]float64)
			for _, op := range allOps {
				out, err := Apply(op, cube, b)
				if err != nil {
					t.Fatalf("%v: %v", op, err)
				}
				requireClosed(t, out)
				vols[op] = volume(out)
			}
			if got, want := vols[OpUnion]+vols[OpIntersect], 1+volume(b); math.Abs(got-want) > 1e-9 {
				t.Errorf("union + intersect = %v, want %v", got, want)
			}
			if got := vols[OpSubtract] + vols[OpIntersect]; math.Abs(got-1) > 1e-9 {
				t.Errorf("subtract + intersect = %v, want 1", got)
			}
		})
	}
}

func TestApplyLeavesOperands(t *testing.T) {
	a := Cube(1)
	b := translated(Cube(1), geom.Vec{Y: 0.3})
	wantA, wantB := len(a.Faces), len(b.Faces)

	if _, err := Subtract(a, b); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if len(a.Faces) != wantA || len(b.Faces) != wantB {
		t.Fatalf("operands changed: %d and %d faces, want %d and %d",
			len(a.Faces), len(b.Faces), wantA, wantB)
	}
	if len(a.status) != 0 || len(b.status) != 0 {
		t.Fatal("operands carry run state")
	}
}

func TestApplyOptions(t *testing.T) {
	a := Cube(1)
	b := translated(Cube(1), geom.Vec{Y: -0.3})

	out, err := Union(a, b, WithTolerance(1e-4), WithMerging(false))
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	if out.Config.Tolerance != 1e-4 || out.Config.EnableMerging {
		t.Fatalf("config not carried: %+v", out.Config)
	}
	requireClosed(t, out)
	if v := volume(out); math.Abs(v-1.3) > 1e-6 {
		t.Errorf("volume = %v, want 1.3", v)
	}
}

func TestApplyBadOperand(t *testing.T) {
	bad := Cube(1)
	bad.Faces[3].V[1] = 999
	if _, err := Intersect(Cube(1), bad); err == nil {
		t.Fatal("expected an error for a face with a missing vertex")
	}
	if _, err := Apply(Op(42), Cube(1), Cube(1)); err == nil {
		t.Fatal("expected an error for an unknown op")
	}
}

func TestKeepsAttributes(t *testing.T) {
	attrs := append(StandardAttributes(), ColorAttribute())
	paint := func(m *Mesh, c float32) *Mesh {
		m.Attributes = attrs
		for i := range m.Vertices {
			m.Vertices[i].Extra = []float32{c, c, c, 1}
		}
		return m
	}
	a := paint(Cube(1), 1)
	b := paint(translated(Cube(1), geom.Vec{Y: 0.3}), 0)

	out, err := Subtract(a, b)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if len(out.Attributes) != 3 {
		t.Fatalf("attributes = %d, want 3", len(out.Attributes))
	}
	for i, v := range out.Vertices {
		if len(v.Extra) != 4 {
			t.Fatalf("vertex %d has %d extra values", i, len(v.Extra))
		}
	}
}

func TestParseOp(t *testing.T) {
	tests := []struct {
		in   string
		want Op
		ok   bool
	}{
		{"subtract", OpSubtract, true},
		{"Difference", OpSubtract, true},
		{" minus ", OpSubtract, true},
		{"-", OpSubtract, true},
		{"union", OpUnion, true},
		{"+", OpUnion, true},
		{"intersect", OpIntersect, true},
		{"INTERSECTION", OpIntersect, true},
		{"and", OpIntersect, true},
		{"xor", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOp(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseOp(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("ParseOp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOpString(t *testing.T) {
	for _, op := range []Op{OpSubtract, OpUnion, OpIntersect} {
		back, err := ParseOp(op.String())
		if err != nil || back != op {
			t.Errorf("ParseOp(%q) = %v, %v", op.String(), back, err)
		}
	}
	if s := Op(7).String(); s != "Op(7)" {
		t.Errorf("Op(7).String() = %q", s)
	}
}
