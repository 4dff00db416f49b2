package meshio

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/geom"
	"github.com/pkg/errors"
)

// The .csgm format, all values big-endian:
//
//	attrCount u8
//	attrCount × { usage i32, components i32, type i32, normalized bool,
//	              name (u16 length, UTF-8), unit i32 }
//	vertexCount i32, extraPerVertex u8
//	vertexCount × { position 3×f32, normal 3×f32, tangent 3×f32,
//	                extra extraPerVertex×f32 }
//	faceCount i32
//	faceCount × { 3 × index u16 }

// maxStringLen bounds attribute names; the length prefix is a u16.
const maxStringLen = math.MaxUint16

// Write serializes m to w in the .csgm format.
func Write(w io.Writer, m *csg.Mesh) error {
	if len(m.Attributes) > math.MaxUint8 {
		return errors.Wrapf(ErrBadAttributeCount, "meshio: write: %d attributes", len(m.Attributes))
	}
	extra := csg.ExtraCount(m.Attributes)
	if extra > math.MaxUint8 {
		return errors.Wrapf(ErrBadAttributeCount, "meshio: write: %d extra values per vertex", extra)
	}
	if len(m.Vertices) > math.MaxUint16+1 {
		return errors.Wrapf(ErrIndexOverflow, "meshio: write: %d vertices", len(m.Vertices))
	}

	bw := bufio.NewWriter(w)
	e := encoder{w: bw}
	e.u8(uint8(len(m.Attributes)))
	for _, a := range m.Attributes {
		e.i32(a.Usage)
		e.i32(a.Components)
		e.i32(a.Type)
		e.boolean(a.Normalized)
		e.str(a.Name)
		e.i32(a.Unit)
	}

	e.i32(len(m.Vertices))
	e.u8(uint8(extra))
	row := make([]float32, extra)
	for _, v := range m.Vertices {
		e.vec(v.Position)
		e.vec(v.Normal)
		e.vec(v.Tangent)
		if extra > 0 {
			clear(row)
			copy(row, v.Extra)
			e.put(row)
		}
	}

	e.i32(len(m.Faces))
	for i, f := range m.Faces {
		for _, idx := range f.V {
			if idx < 0 || idx >= len(m.Vertices) {
				return errors.Wrapf(ErrMissingVertex, "meshio: write: face %d uses vertex %d", i, idx)
			}
		}
		e.put([3]uint16{uint16(f.V[0]), uint16(f.V[1]), uint16(f.V[2])})
	}
	if e.err != nil {
		return errors.Wrap(e.err, "meshio: write")
	}
	return errors.Wrap(bw.Flush(), "meshio: write")
}

// Read decodes a mesh written by Write.
func Read(r io.Reader) (*csg.Mesh, error) {
	d := decoder{r: bufio.NewReader(r)}

	attrs := make([]csg.Attribute, d.u8())
	for i := range attrs {
		attrs[i] = csg.Attribute{
			Usage:      d.i32(),
			Components: d.i32(),
			Type:       d.i32(),
			Normalized: d.boolean(),
			Name:       d.str(),
			Unit:       d.i32(),
		}
	}
	m := csg.New(attrs)

	count := d.i32()
	extra := int(d.u8())
	if d.err != nil {
		return nil, errors.Wrap(d.err, "meshio: read header")
	}
	if count < 0 || count > math.MaxUint16+1 {
		return nil, errors.Wrapf(ErrIndexOverflow, "meshio: read: vertex count %d", count)
	}
	m.Vertices = make([]csg.Vertex, count)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = d.vec()
		v.Normal = d.vec()
		v.Tangent = d.vec()
		if extra > 0 {
			v.Extra = make([]float32, extra)
			d.get(v.Extra)
		}
	}

	faces := d.i32()
	if d.err != nil {
		return nil, errors.Wrap(d.err, "meshio: read vertices")
	}
	if faces < 0 {
		return nil, errors.Errorf("meshio: read: face count %d", faces)
	}
	// The count is untrusted until the faces have been read.
	m.Faces = make([]csg.Face, 0, min(faces, math.MaxUint16+1))
	for i := 0; i < faces && d.err == nil; i++ {
		var idx [3]uint16
		d.get(&idx)
		for _, x := range idx {
			if int(x) >= count {
				return nil, errors.Wrapf(ErrMissingVertex, "meshio: read: face %d uses vertex %d", i, x)
			}
		}
		m.AddFace(int(idx[0]), int(idx[1]), int(idx[2]))
	}
	if d.err != nil {
		return nil, errors.Wrap(d.err, "meshio: read faces")
	}
	return m, nil
}

// encoder writes big-endian values and keeps the first error.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) put(v any) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.BigEndian, v)
	}
}

func (e *encoder) u8(v uint8)     { e.put(v) }
func (e *encoder) i32(v int)      { e.put(int32(v)) }
func (e *encoder) boolean(v bool) { e.put(v) }

func (e *encoder) vec(v geom.Vec) {
	e.put([3]float32{float32(v.X), float32(v.Y), float32(v.Z)})
}

func (e *encoder) str(s string) {
	if len(s) > maxStringLen {
		if e.err == nil {
			e.err = errors.Errorf("attribute name of %d bytes", len(s))
		}
		return
	}
	e.put(uint16(len(s)))
	if e.err == nil {
		_, e.err = io.WriteString(e.w, s)
	}
}

// decoder reads big-endian values. After the first error every read
// returns the zero value.
type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) get(v any) {
	if d.err == nil {
		d.err = binary.Read(d.r, binary.BigEndian, v)
	}
}

func (d *decoder) u8() uint8 {
	var v uint8
	d.get(&v)
	return v
}

func (d *decoder) i32() int {
	var v int32
	d.get(&v)
	return int(v)
}

func (d *decoder) boolean() bool {
	var v bool
	d.get(&v)
	return v
}

func (d *decoder) vec() geom.Vec {
	var v [3]float32
	d.get(&v)
	return geom.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

func (d *decoder) str() string {
	var n uint16
	d.get(&n)
	if d.err != nil {
		return ""
	}
	buf := make([]byte, n)
	_, d.err = io.ReadFull(d.r, buf)
	return string(buf)
}
