package csg

import (
	"github.com/chazu/carve/pkg/intersect"
	"github.com/pkg/errors"
)

// Contract violations. They abort the operation and are never retried.
var (
	// ErrInsideAndOutside reports a face with vertices on both sides of
	// the other operand after splitting.
	ErrInsideAndOutside = errors.New("csg: face is both inside and outside")

	// ErrUnclassifiedVertex reports a face referencing a vertex that was
	// not classified, usually because RemoveFaces ran before ClassifyFaces.
	ErrUnclassifiedVertex = errors.New("csg: unclassified vertex")

	// ErrBadFace reports a face referencing a vertex outside the arena.
	ErrBadFace = errors.New("csg: face references a missing vertex")
)

// recoverInvariant turns a predicate panic carrying an
// *intersect.InvariantError into an error on *err. Any other panic is
// re-raised.
func recoverInvariant(op string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*intersect.InvariantError)
	if !ok {
		panic(r)
	}
	*err = errors.Wrap(ie, op)
}

func faceError(err error, i int, f Face) error {
	return errors.Wrapf(err, "face %d %v", i, f.V)
}
