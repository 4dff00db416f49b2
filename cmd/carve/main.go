// Command carve runs mesh booleans. Given a .carve script it evaluates
// the script and writes every part; given two meshes it combines them
// with -op.
//
// Usage:
//
//	carve [-config carve.yaml] [-o out.glb|.gltf|.stl|.csgm] [-op subtract|union|intersect]
//	      [-kernel mesh|sdf] [-cells n] [-tolerance eps] [-check] [-progress] [-v] inputs...
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/meshio"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("carve failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("carve", flag.ContinueOnError)

	configPath := fs.String("config", "", "YAML config file (tolerance, merging, boundary_faces, merge_passes, conform_edges, output)")
	out := fs.String("o", "", "output file; the extension selects the format (.glb, .gltf, .stl, .csgm)")
	opName := fs.String("op", "subtract", "operation for two mesh inputs: subtract, union or intersect")
	tolerance := fs.Float64("tolerance", 0, "coincidence tolerance, overriding the config file")
	verbose := fs.Bool("v", false, "debug logging")
	check := fs.Bool("check", false, "fail unless every result is watertight")
	progress := fs.Bool("progress", true, "show a progress bar while tessellating")
	kernelName := fs.String("kernel", "mesh", "kernel for scripts: mesh (exact booleans) or sdf (sdfx, marching cubes)")
	cells := fs.Int("cells", 0, "marching cubes cells along the longest side for -kernel sdf (0 selects the default)")

	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "failed to parse args")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	csg.SetLogger(logger)
	meshio.SetLogger(logger)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *tolerance < 0 {
		return errors.Errorf("tolerance %g is negative", *tolerance)
	}
	if *tolerance > 0 {
		cfg.Tolerance = *tolerance
	}
	if *out != "" {
		cfg.Output = *out
	}
	if cfg.Output == "" {
		return errors.New("no output file: pass -o or set output in the config")
	}

	inputs := fs.Args()
	switch {
	case len(inputs) == 1 && strings.EqualFold(filepath.Ext(inputs[0]), ".carve"):
		app := NewApp(cfg.CSG())
		switch *kernelName {
		case "mesh":
		case "sdf":
			app.UseSDF(*cells)
		default:
			return errors.Errorf("unknown kernel %q, want mesh or sdf", *kernelName)
		}
		return runScript(app, inputs[0], cfg.Output, *check, *progress)
	case len(inputs) == 2:
		op, err := csg.ParseOp(*opName)
		if err != nil {
			return err
		}
		return runBoolean(op, inputs[0], inputs[1], cfg, *check)
	default:
		fs.Usage()
		return errors.Errorf("want one .carve script or two meshes, got %d inputs", len(inputs))
	}
}

// runScript evaluates a script and writes all of its parts to output.
func runScript(app *App, path, output string, check, progress bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read script")
	}

	var bar *progressbar.ProgressBar
	if progress {
		app.OnPart = func(done, total int, m *kernel.Mesh) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "tessellating")
			}
			bar.Add(1)
		}
	}

	result := app.Evaluate(string(source))
	if bar != nil {
		bar.Close()
	}
	for _, w := range result.Warnings {
		slog.Warn("script warning", "node", w.NodeID.Short(), "message", w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			slog.Error("script error", "file", path, "line", e.Line, "message", e.Message)
		}
		return errors.Errorf("%s: %d errors", path, len(result.Errors))
	}
	if len(result.Meshes) == 0 {
		return errors.Errorf("%s defines no parts", path)
	}

	if check {
		for _, m := range result.Meshes {
			if err := checkMesh(m, result.Config); err != nil {
				return err
			}
		}
	}
	if err := write(output, result.Meshes); err != nil {
		return err
	}
	slog.Info("wrote parts", "path", output, "parts", len(result.Meshes))
	return nil
}

// runBoolean combines two mesh files.
func runBoolean(op csg.Op, pathA, pathB string, cfg Config, check bool) error {
	a, err := load(pathA)
	if err != nil {
		return err
	}
	b, err := load(pathB)
	if err != nil {
		return err
	}

	c := cfg.CSG()
	m, err := csg.Apply(op, a, b, csg.WithConfig(c))
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(cfg.Output), filepath.Ext(cfg.Output))
	km := meshio.ToKernel(m, name)
	if check {
		if err := checkMesh(km, c); err != nil {
			return err
		}
	}
	if err := write(cfg.Output, []*kernel.Mesh{km}); err != nil {
		return err
	}
	slog.Info("wrote result", "op", op, "path", cfg.Output, "faces", len(m.Faces), "vertices", len(m.Vertices))
	return nil
}

// checkMesh fails unless m is closed and consistently oriented.
func checkMesh(m *kernel.Mesh, cfg csg.Config) error {
	cm, err := meshio.FromKernel(m)
	if err != nil {
		return err
	}
	cm.Config = cfg
	r := cm.Check()
	slog.Info("check", "part", m.PartName, "report", r.String())
	if !r.Watertight() {
		return errors.Errorf("part %q is not watertight: %s", m.PartName, r)
	}
	return nil
}

// load reads a mesh file, choosing the reader by extension.
func load(path string) (*csg.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return meshio.LoadGLTF(path)
	case ".csgm":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "load")
		}
		defer f.Close()
		m, err := meshio.Read(f)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
		return m, nil
	}
	return nil, errors.Errorf("load %s: unsupported format", path)
}

// write saves parts, choosing the writer by extension. Formats without
// parts (.csgm) get the parts merged into one mesh.
func write(path string, parts []*kernel.Mesh) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return meshio.SaveGLTF(path, parts...)
	case ".stl":
		return meshio.SaveSTL(path, parts...)
	case ".csgm":
		merged := csg.New(csg.StandardAttributes())
		for _, p := range parts {
			m, err := meshio.FromKernel(p)
			if err != nil {
				return err
			}
			merged.MergeWith(m)
		}
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "write")
		}
		if err := meshio.Write(f, merged); err != nil {
			f.Close()
			return err
		}
		return errors.Wrap(f.Close(), "write")
	}
	return errors.Errorf("write %s: unsupported format", path)
}
