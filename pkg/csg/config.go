package csg

// Config tunes a boolean run.
type Config struct {
	// Tolerance is the linear distance under which two points, or a point
	// and a plane, are considered coincident.
	Tolerance float64

	// EnableMerging runs the coplanar simplification pass after splitting.
	EnableMerging bool

	// EnableBoundaryFaces flags faces that overlap a coplanar face of the
	// other operand, so that coincident surfaces are kept once instead of
	// twice or not at all.
	EnableBoundaryFaces bool

	// MergePasses bounds the number of simplification passes. Zero
	// disables merging even when EnableMerging is set.
	MergePasses int

	// ConformEdges splits edges at result vertices lying in their interior
	// after the fragments are merged.
	ConformEdges bool
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Tolerance:           1e-5,
		EnableMerging:       true,
		EnableBoundaryFaces: true,
		MergePasses:         10,
		ConformEdges:        true,
	}
}

// Option configures a boolean operation.
//
// Example:
//
//	out, err := csg.Subtract(a, b, csg.WithTolerance(1e-4))
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(o *Config) {
		*o = c
	}
}

// WithTolerance sets the coincidence tolerance.
func WithTolerance(eps float64) Option {
	return func(o *Config) {
		o.Tolerance = eps
	}
}

// WithMerging enables or disables the simplification pass.
func WithMerging(enabled bool) Option {
	return func(o *Config) {
		o.EnableMerging = enabled
	}
}

// WithConformEdges enables or disables the edge conformity pass.
func WithConformEdges(enabled bool) Option {
	return func(o *Config) {
		o.ConformEdges = enabled
	}
}

func resolveConfig(opts []Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultConfig().Tolerance
	}
	return c
}
