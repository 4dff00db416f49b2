// Package meshio moves csg meshes in and out of flat vertex buffers, the
// binary .csgm format, glTF, STL and the kernel render mesh.
package meshio

import (
	"github.com/chazu/carve/pkg/csg"
	"github.com/pkg/errors"
)

var (
	// ErrMissingVertex reports a face referencing a vertex that is not in
	// the mesh or buffer.
	ErrMissingVertex = errors.New("meshio: face references a missing vertex")

	// ErrIndexOverflow reports a vertex index that does not fit in 16 bits.
	ErrIndexOverflow = errors.New("meshio: vertex index exceeds 16 bits")

	// ErrBadAttributeCount reports a layout or buffer whose attribute
	// counts do not fit the format.
	ErrBadAttributeCount = errors.New("meshio: bad attribute count")

	// ErrNoPosition reports a layout without a position channel.
	ErrNoPosition = errors.New("meshio: layout has no position attribute")
)

// Channel locates an extra attribute inside an interleaved vertex.
type Channel struct {
	Offset int // in floats from the start of the vertex
	Floats int
}

// Layout describes an interleaved float vertex buffer. Offsets and the
// stride are counted in 32-bit slots. Normal and Tangent are -1 when the
// buffer has no such channel.
type Layout struct {
	Attributes []csg.Attribute
	Stride     int
	Position   int
	Normal     int
	Tangent    int
	Extra      []Channel
}

// NewLayout packs attrs in order, each channel starting where the
// previous one ends.
func NewLayout(attrs []csg.Attribute) (Layout, error) {
	l := Layout{
		Attributes: append([]csg.Attribute(nil), attrs...),
		Position:   -1,
		Normal:     -1,
		Tangent:    -1,
	}
	off := 0
	for _, a := range attrs {
		switch a.Usage {
		case csg.UsagePosition:
			l.Position = off
		case csg.UsageNormal:
			l.Normal = off
		case csg.UsageTangent:
			l.Tangent = off
		default:
			l.Extra = append(l.Extra, Channel{Offset: off, Floats: a.Floats()})
		}
		off += a.Floats()
	}
	l.Stride = off
	if l.Position < 0 {
		return Layout{}, ErrNoPosition
	}
	return l, nil
}

// ExtraFloats returns the number of extra values per vertex.
func (l Layout) ExtraFloats() int {
	n := 0
	for _, c := range l.Extra {
		n += c.Floats
	}
	return n
}
