package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/chazu/carve/pkg/csg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// maxConfigSize bounds the config file read into memory.
const maxConfigSize = 1024 * 1024

// Config is the carve.yaml file. Unset fields keep the csg defaults;
// booleans are pointers to tell unset from false.
type Config struct {
	Tolerance     float64 `yaml:"tolerance"`
	Merging       *bool   `yaml:"merging"`
	BoundaryFaces *bool   `yaml:"boundary_faces"`
	MergePasses   *int    `yaml:"merge_passes"`
	ConformEdges  *bool   `yaml:"conform_edges"`
	Output        string  `yaml:"output"`
}

// LoadConfig reads and parses the config file at path. An empty path
// returns the zero Config. Unknown keys are rejected so typos do not
// silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config")
	}
	if info.Size() > maxConfigSize {
		return Config{}, errors.Errorf("config: %s is %d bytes, limit %d", path, info.Size(), maxConfigSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config")
	}
	defer f.Close()

	var c Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	// An empty file decodes to io.EOF and means no settings.
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	if c.Tolerance < 0 {
		return Config{}, errors.Errorf("config: tolerance %g is negative", c.Tolerance)
	}
	if c.MergePasses != nil && *c.MergePasses < 0 {
		return Config{}, errors.Errorf("config: merge_passes %d is negative", *c.MergePasses)
	}

	slog.Debug("loaded config", "path", path, "size", info.Size())
	return c, nil
}

// CSG returns the boolean configuration: the csg defaults with every set
// field of c applied.
func (c Config) CSG() csg.Config {
	out := csg.DefaultConfig()
	if c.Tolerance > 0 {
		out.Tolerance = c.Tolerance
	}
	if c.Merging != nil {
		out.EnableMerging = *c.Merging
	}
	if c.BoundaryFaces != nil {
		out.EnableBoundaryFaces = *c.BoundaryFaces
	}
	if c.MergePasses != nil {
		out.MergePasses = *c.MergePasses
	}
	if c.ConformEdges != nil {
		out.ConformEdges = *c.ConformEdges
	}
	return out
}
