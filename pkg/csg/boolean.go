package csg

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Op is a boolean operation.
type Op int

const (
	OpSubtract Op = iota
	OpUnion
	OpIntersect
)

func (op Op) String() string {
	switch op {
	case OpSubtract:
		return "subtract"
	case OpUnion:
		return "union"
	case OpIntersect:
		return "intersect"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// ParseOp parses an operation name. It accepts the String forms and the
// aliases "difference", "minus", "intersection" and "and"/"or".
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "subtract", "difference", "minus", "-":
		return OpSubtract, nil
	case "union", "or", "+":
		return OpUnion, nil
	case "intersect", "intersection", "and", "*":
		return OpIntersect, nil
	}
	return 0, errors.Errorf("csg: unknown operation %q", s)
}

// removal is the RemoveFaces arguments for each operand of an operation.
type removal struct {
	insideA, boundaryA bool
	insideB, boundaryB bool
	invertB            bool
}

var removals = map[Op]removal{
	OpSubtract:  {insideA: true, boundaryA: true, insideB: false, boundaryB: true, invertB: true},
	OpUnion:     {insideA: true, boundaryA: false, insideB: true, boundaryB: true},
	OpIntersect: {insideA: false, boundaryA: false, insideB: false, boundaryB: true},
}

// Subtract returns a minus b.
func Subtract(a, b *Mesh, opts ...Option) (*Mesh, error) {
	return Apply(OpSubtract, a, b, opts...)
}

// Union returns the union of a and b.
func Union(a, b *Mesh, opts ...Option) (*Mesh, error) {
	return Apply(OpUnion, a, b, opts...)
}

// Intersect returns the intersection of a and b.
func Intersect(a, b *Mesh, opts ...Option) (*Mesh, error) {
	return Apply(OpIntersect, a, b, opts...)
}

// Apply runs op on a and b and returns a new mesh. The operands are not
// modified. The result carries a's attribute layout and the resolved
// configuration.
//
// A contract violation detected along the way, such as a face ending up
// both inside and outside the other operand, aborts the run with an
// error.
func Apply(op Op, a, b *Mesh, opts ...Option) (out *Mesh, err error) {
	r, ok := removals[op]
	if !ok {
		return nil, errors.Errorf("csg: unknown operation %v", op)
	}
	defer recoverInvariant("csg: "+op.String(), &err)

	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "csg: first operand")
	}
	if err := b.Validate(); err != nil {
		return nil, errors.Wrap(err, "csg: second operand")
	}

	cfg := resolveConfig(opts)
	start := time.Now()

	copyA, copyB := a.Clone(), b.Clone()
	copyA.Config, copyB.Config = cfg, cfg

	if err := copyA.SplitTriangles(b); err != nil {
		return nil, err
	}
	if err := copyB.SplitTriangles(a); err != nil {
		return nil, err
	}
	if err := copyA.ClassifyFaces(b); err != nil {
		return nil, err
	}
	if err := copyB.ClassifyFaces(a); err != nil {
		return nil, err
	}
	if err := copyA.RemoveFaces(r.insideA, r.boundaryA); err != nil {
		return nil, errors.Wrap(err, "csg: "+op.String()+": first operand")
	}
	if err := copyB.RemoveFaces(r.insideB, r.boundaryB); err != nil {
		return nil, errors.Wrap(err, "csg: "+op.String()+": second operand")
	}
	if r.invertB {
		copyB.InvertTriangles()
	}

	copyA.MergeWith(copyB)
	copyA.ClearRunState()
	if cfg.ConformEdges {
		copyA.ConformEdges()
	}
	copyA.DeleteUnusedVertices()

	Logger().Debug("csg: boolean",
		"op", op.String(),
		"faces_a", len(a.Faces),
		"faces_b", len(b.Faces),
		"faces_out", len(copyA.Faces),
		"vertices_out", len(copyA.Vertices),
		"elapsed", time.Since(start))
	return copyA, nil
}
