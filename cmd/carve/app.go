package main

import (
	"log/slog"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/engine"
	"github.com/chazu/carve/pkg/graph"
	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/kernel/meshkernel"
	"github.com/chazu/carve/pkg/kernel/sdfx"
	"github.com/chazu/carve/pkg/tessellate"
)

// App runs the script pipeline: source → design graph → one mesh per
// part.
type App struct {
	engine *engine.Engine
	cfg    csg.Config
	kernel func(csg.Config) kernel.Kernel

	// OnPart, if set, is called after each part is tessellated.
	OnPart func(done, total int, m *kernel.Mesh)
}

// Result is the outcome of one evaluation. Meshes is empty whenever
// Errors is not.
type Result struct {
	Meshes   []*kernel.Mesh
	Errors   []engine.EvalError
	Warnings []engine.EvalWarning
	Config   csg.Config // what the booleans ran with
}

// NewApp creates an App that builds parts with the mesh kernel, its
// booleans running with cfg.
func NewApp(cfg csg.Config) *App {
	return &App{
		engine: engine.NewEngine(),
		cfg:    cfg,
		kernel: func(c csg.Config) kernel.Kernel { return meshkernel.New(csg.WithConfig(c)) },
	}
}

// UseSDF switches the App to the sdfx kernel, meshing each part with
// cells marching cubes cells along its longest side. The boolean
// configuration does not apply to it.
func (a *App) UseSDF(cells int) {
	a.kernel = func(csg.Config) kernel.Kernel { return sdfx.New(cells) }
}

// Evaluate takes script source and returns the part meshes, or the
// errors that stopped it.
func (a *App) Evaluate(source string) Result {
	res, err := a.engine.EvaluateResult(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		slog.Error("evaluate fatal error", "error", err)
		return Result{Errors: []engine.EvalError{{Message: err.Error()}}}
	}
	result := Result{Errors: res.Errors, Warnings: res.Warnings}
	if len(res.Errors) > 0 {
		return result
	}

	result.Config = a.config(res.Graph)
	k := a.kernel(result.Config)
	total := len(res.Graph.Roots)
	err = tessellate.Each(res.Graph, k, func(i int, m *kernel.Mesh) error {
		result.Meshes = append(result.Meshes, m)
		if a.OnPart != nil {
			a.OnPart(i+1, total, m)
		}
		return nil
	})
	if err != nil {
		slog.Error("tessellate error", "error", err)
		result.Meshes = nil
		result.Errors = append(result.Errors, engine.EvalError{Message: "tessellation failed: " + err.Error()})
	}
	return result
}

// config returns the App's configuration with the script's tolerance
// applied when the script set one.
func (a *App) config(g *graph.DesignGraph) csg.Config {
	cfg := a.cfg
	if eps := g.Defaults.Tolerance; eps > 0 && eps != graph.DefaultTolerance {
		cfg.Tolerance = eps
	}
	return cfg
}
