package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites carve source into something zygomys accepts:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with user variables of the same name.
//  2. Kebab-case identifiers become snake case (bolt-hole -> bolt_hole);
//     zygomys reads a bare hyphen as subtraction.
//  3. ; line comments (any number of semicolons) become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// := is assignment, not a keyword.
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// A hyphen between identifier characters is kebab-case, not minus.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so solids can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	kind graph.NodeKind
	name string // part name, if any
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(%s %q)", n.kind, n.name)
	}
	return fmt.Sprintf("(%s %s)", n.kind, n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A trailing keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// number returns the keyword argument key as a float64.
func (a kwArgs) number(key string) (float64, bool, error) {
	v, ok := a.kw[key]
	if !ok {
		return 0, false, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return f, true, nil
}

// vec returns the keyword argument key as a Vec3.
func (a kwArgs) vec(key string) (*graph.Vec3, error) {
	v, ok := a.kw[key]
	if !ok {
		return nil, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &vec, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("expected whole number, got %g", f)
	}
	return int(f), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a solid from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toSolids collects solids from args. Lists and arrays are flattened one
// level, so (union (list a b) c) works on generated solids.
func toSolids(args []zygo.Sexp) ([]graph.NodeID, error) {
	var ids []graph.NodeID
	for i, arg := range args {
		switch arg.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(arg)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			for _, item := range items {
				ref, err := toNodeRef(item)
				if err != nil {
					return nil, fmt.Errorf("argument %d: %w", i+1, err)
				}
				ids = append(ids, ref.id)
			}
		default:
			ref, err := toNodeRef(arg)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			ids = append(ids, ref.id)
		}
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the carve builtins into a zygomys environment.
// The builtins populate g as the script runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {
	add := func(kind graph.NodeKind, name string, data graph.NodeData, children ...graph.NodeID) *sexpNodeRef {
		n := g.AddNode(graph.NewNode(kind, name, data, children...))
		return &sexpNodeRef{id: n.ID, kind: n.Kind, name: n.Name}
	}

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: graph.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 x y z)) or (box :x 10 :y 20 :z 5)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size, err := pa.vec("size")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		if size == nil {
			size = &graph.Vec3{}
			for _, axis := range []struct {
				key string
				dst *float64
			}{{"x", &size.X}, {"y", &size.Y}, {"z", &size.Z}} {
				f, ok, err := pa.number(axis.key)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("box: %w", err)
				}
				if !ok {
					return zygo.SexpNull, fmt.Errorf("box requires :size or all of :x :y :z (missing :%s)", axis.key)
				}
				*axis.dst = f
			}
		}
		return add(graph.NodePrimitive, "", graph.BoxData{Size: *size}), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 10 :radius 2 :segments 32)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var cd graph.CylinderData
		var ok bool
		var err error
		if cd.Height, ok, err = pa.number("height"); err != nil || !ok {
			return zygo.SexpNull, requireErr("cylinder", "height", err)
		}
		if cd.Radius, ok, err = pa.number("radius"); err != nil || !ok {
			return zygo.SexpNull, requireErr("cylinder", "radius", err)
		}
		if v, has := pa.kw["segments"]; has {
			if cd.Segments, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
		}
		return add(graph.NodePrimitive, "", cd), nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 5 :cells 48)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var sd graph.SphereData
		var ok bool
		var err error
		if sd.Radius, ok, err = pa.number("radius"); err != nil || !ok {
			return zygo.SexpNull, requireErr("sphere", "radius", err)
		}
		if v, has := pa.kw["cells"]; has {
			if sd.Cells, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: cells: %w", err)
			}
		}
		return add(graph.NodePrimitive, "", sd), nil
	})

	// -----------------------------------------------------------------------
	// (translate solid (vec3 x y z)) and (rotate solid (vec3 rx ry rz))
	// -----------------------------------------------------------------------
	transform := func(key string) builtin {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vec3", key)
			}
			ref, err := toNodeRef(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", key, err)
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", key, err)
			}
			var td graph.TransformData
			if key == "translate" {
				td.Translation = &v
			} else {
				td.Rotation = &v
			}
			return add(graph.NodeTransform, "", td, ref.id), nil
		}
	}
	env.AddFunction("translate", transform("translate"))
	env.AddFunction("rotate", transform("rotate"))

	// -----------------------------------------------------------------------
	// (place solid :at (vec3 ...) :rotate (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires exactly one solid")
		}
		ref, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		var td graph.TransformData
		if td.Translation, err = pa.vec("at"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if td.Rotation, err = pa.vec("rotate"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if td.Translation == nil && td.Rotation == nil {
			return zygo.SexpNull, fmt.Errorf("place requires :at or :rotate")
		}
		return add(graph.NodeTransform, "", td, ref.id), nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...), (difference a b ...), (intersection a b ...)
	// -----------------------------------------------------------------------
	boolean := func(op csg.Op) builtin {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			ids, err := toSolids(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			if len(ids) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", name, len(ids))
			}
			return add(graph.NodeBoolean, "", graph.BooleanData{Op: op}, ids...), nil
		}
	}
	env.AddFunction("union", boolean(csg.OpUnion))
	env.AddFunction("difference", boolean(csg.OpSubtract))
	env.AddFunction("intersection", boolean(csg.OpIntersect))

	// -----------------------------------------------------------------------
	// (defpart "name" solid)
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a solid")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		if partName == "" {
			return zygo.SexpNull, fmt.Errorf("defpart: name is empty")
		}
		if g.Lookup(partName) != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: part %q is already defined", partName)
		}
		body, err := toNodeRef(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart %q: %w", partName, err)
		}
		ref := add(graph.NodePart, partName, graph.PartData{}, body.id)
		g.AddRoot(ref.id)
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("part requires exactly one name argument")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: %w", err)
		}
		n := g.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}
		return &sexpNodeRef{id: n.ID, kind: n.Kind, name: n.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (tolerance 1e-6)
	// -----------------------------------------------------------------------
	env.AddFunction("tolerance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("tolerance requires exactly one number")
		}
		eps, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tolerance: %w", err)
		}
		if eps <= 0 {
			return zygo.SexpNull, fmt.Errorf("tolerance %g is not positive", eps)
		}
		g.Defaults.Tolerance = eps
		return &zygo.SexpFloat{Val: eps}, nil
	})
}

func requireErr(fn, key string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	return fmt.Errorf("%s requires :%s", fn, key)
}
