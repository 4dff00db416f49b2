package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/geom"
	"github.com/chazu/carve/pkg/meshio"
	"github.com/pkg/errors"
)

func writeMesh(t *testing.T, path string, m *csg.Mesh) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := meshio.Write(f, m); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
}

func readMesh(t *testing.T, path string) *csg.Mesh {
	t.Helper()
	m, err := load(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	return m
}

func meshVolume(m *csg.Mesh) float64 {
	var v float64
	for i := range m.Faces {
		tri := m.Triangle(i)
		v += tri.P1.Dot(tri.P2.Cross(tri.P3))
	}
	return v / 6
}

func TestRunScriptFormats(t *testing.T) {
	for _, ext := range []string{".glb", ".gltf", ".stl", ".csgm"} {
		t.Run(ext, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "parts"+ext)
			err := run([]string{"-o", out, "-progress=false", "-check", "../../examples/bracket.carve"})
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("no output: %v", err)
			}
			switch ext {
			case ".stl":
				if info.Size() <= 84 || (info.Size()-84)%50 != 0 {
					t.Errorf("STL size %d is not a binary STL", info.Size())
				}
			default:
				m := readMesh(t, out)
				if r := m.Check(); !r.Watertight() {
					t.Errorf("read back mesh: %v", r)
				}
			}
		})
	}
}

func TestRunConfigOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "from-config.csgm")
	cfg := writeFile(t, "carve.yaml", "output: "+out+"\n")

	if err := run([]string{"-config", cfg, "-progress=false", "../../examples/drilled_cube.carve"}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	m := readMesh(t, out)
	hole := 0.5 * 16 * 0.09 * math.Sin(2*math.Pi/16)
	// Both parts land in the one merged mesh.
	if v := meshVolume(m); math.Abs(v-2*(1-hole)) > 1e-4 {
		t.Errorf("volume = %v, want %v", v, 2*(1-hole))
	}
}

func TestRunBoolean(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csgm")
	b := filepath.Join(dir, "b.csgm")
	writeMesh(t, a, csg.Cube(1))
	writeMesh(t, b, csg.Box(geom.Vec{X: -0.5, Y: -0.8, Z: -0.5}, geom.Vec{X: 0.5, Y: 0.2, Z: 0.5}))

	tests := []struct {
		op     string
		volume float64
	}{
		{"union", 1.3},
		{"subtract", 0.3},
		{"intersect", 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			out := filepath.Join(dir, tt.op+".csgm")
			if err := run([]string{"-op", tt.op, "-o", out, "-check", a, b}); err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if v := meshVolume(readMesh(t, out)); math.Abs(v-tt.volume) > 1e-4 {
				t.Errorf("volume = %v, want %v", v, tt.volume)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csgm")
	writeMesh(t, a, csg.Cube(1))
	bad := writeFile(t, "bad.carve", `(defpart "x" (box :x 1 :y 1))`)
	empty := writeFile(t, "empty.carve", `(def size 3)`)

	tests := []struct {
		name string
		args []string
	}{
		{"no output", []string{a, a}},
		{"one mesh", []string{"-o", filepath.Join(dir, "o.csgm"), a}},
		{"three inputs", []string{"-o", filepath.Join(dir, "o.csgm"), a, a, a}},
		{"unknown op", []string{"-op", "xor", "-o", filepath.Join(dir, "o.csgm"), a, a}},
		{"unsupported output", []string{"-o", filepath.Join(dir, "o.obj"), a, a}},
		{"unsupported input", []string{"-o", filepath.Join(dir, "o.csgm"), a, filepath.Join(dir, "b.obj")}},
		{"missing input", []string{"-o", filepath.Join(dir, "o.csgm"), a, filepath.Join(dir, "none.csgm")}},
		{"script error", []string{"-progress=false", "-o", filepath.Join(dir, "o.glb"), bad}},
		{"script without parts", []string{"-progress=false", "-o", filepath.Join(dir, "o.glb"), empty}},
		{"negative tolerance", []string{"-tolerance", "-1", "-o", filepath.Join(dir, "o.csgm"), a, a}},
	}
	type stackTracer interface{ StackTrace() errors.StackTrace }
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args)
			if err == nil {
				t.Fatal("expected an error")
			}
			if _, ok := err.(stackTracer); !ok {
				t.Errorf("error %q carries no stack trace", err)
			}
		})
	}
}

func TestRunKernelFlag(t *testing.T) {
	script := writeFile(t, "block.carve", `(defpart "block" (box :x 2 :y 2 :z 2))`)
	out := filepath.Join(t.TempDir(), "block.csgm")
	if err := run([]string{"-kernel", "sdf", "-cells", "48", "-progress=false", "-o", out, script}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if v := meshVolume(readMesh(t, out)); math.Abs(v-8)/8 > 0.05 {
		t.Errorf("volume = %v, want about 8", v)
	}

	if err := run([]string{"-kernel", "voxel", "-o", out, script}); err == nil {
		t.Error("expected an error for an unknown kernel")
	}
}
