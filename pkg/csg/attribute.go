package csg

import "strconv"

// Vertex attribute usages. The values match the libGDX
// VertexAttributes.Usage bit flags so serialized meshes stay readable by
// tools that share the format.
const (
	UsagePosition           = 1
	UsageColorUnpacked      = 2
	UsageColorPacked        = 4
	UsageNormal             = 8
	UsageTextureCoordinates = 16
	UsageGeneric            = 32
	UsageBoneWeight         = 64
	UsageTangent            = 128
	UsageBiNormal           = 256
)

// Component types, as OpenGL enums.
const (
	TypeByte          = 0x1400
	TypeUnsignedByte  = 0x1401
	TypeShort         = 0x1402
	TypeUnsignedShort = 0x1403
	TypeFloat         = 0x1406
	TypeFixed         = 0x140C
)

// Attribute describes one channel of an interleaved vertex buffer.
//
// Position, Normal and Tangent channels map onto the Vertex fields of the
// same name; every other channel is carried in Vertex.Extra and
// interpolated linearly when vertices are created by a split.
type Attribute struct {
	Usage      int
	Components int
	Type       int
	Normalized bool
	Name       string
	Unit       int
}

// Size returns the size of the channel in bytes.
func (a Attribute) Size() int {
	switch a.Type {
	case TypeByte, TypeUnsignedByte:
		return a.Components
	case TypeShort, TypeUnsignedShort:
		return 2 * a.Components
	default:
		return 4 * a.Components
	}
}

// Floats returns the number of 32-bit slots the channel occupies.
func (a Attribute) Floats() int {
	return (a.Size() + 3) / 4
}

// IsExtra reports whether the channel is stored in Vertex.Extra.
func (a Attribute) IsExtra() bool {
	switch a.Usage {
	case UsagePosition, UsageNormal, UsageTangent:
		return false
	}
	return true
}

// PositionAttribute returns the standard 3-float position channel.
func PositionAttribute() Attribute {
	return Attribute{Usage: UsagePosition, Components: 3, Type: TypeFloat, Name: "a_position"}
}

// NormalAttribute returns the standard 3-float normal channel.
func NormalAttribute() Attribute {
	return Attribute{Usage: UsageNormal, Components: 3, Type: TypeFloat, Name: "a_normal"}
}

// TangentAttribute returns the standard 3-float tangent channel.
func TangentAttribute() Attribute {
	return Attribute{Usage: UsageTangent, Components: 3, Type: TypeFloat, Name: "a_tangent"}
}

// ColorAttribute returns an unpacked 4-float RGBA channel.
func ColorAttribute() Attribute {
	return Attribute{Usage: UsageColorUnpacked, Components: 4, Type: TypeFloat, Name: "a_color"}
}

// TexCoordAttribute returns a 2-float texture coordinate channel for unit.
func TexCoordAttribute(unit int) Attribute {
	return Attribute{
		Usage:      UsageTextureCoordinates,
		Components: 2,
		Type:       TypeFloat,
		Name:       "a_texCoord" + strconv.Itoa(unit),
		Unit:       unit,
	}
}

// StandardAttributes returns the position and normal layout used by the
// primitives and file loaders.
func StandardAttributes() []Attribute {
	return []Attribute{PositionAttribute(), NormalAttribute()}
}

// ExtraCount returns the number of Vertex.Extra values implied by attrs.
func ExtraCount(attrs []Attribute) int {
	n := 0
	for _, a := range attrs {
		if a.IsExtra() {
			n += a.Floats()
		}
	}
	return n
}
