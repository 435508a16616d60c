package shaderir

import "fmt"

// Stage identifies the half of a shader program an object belongs to.
type Stage uint8

// Shader stages.
const (
	// StageVertex is the vertex half of a program.
	StageVertex Stage = iota

	// StageFragment is the fragment (pixel) half of a program.
	StageFragment
)

// String returns the string representation of a Stage.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// UniformType is the register file a uniform draws its value from.
type UniformType uint8

// Uniform types.
const (
	// UniformFloat reads from the float4 register file.
	UniformFloat UniformType = iota

	// UniformInt reads from the int4 register file.
	UniformInt

	// UniformBool reads from the bool register file.
	UniformBool
)

// String returns the string representation of a UniformType.
func (t UniformType) String() string {
	switch t {
	case UniformFloat:
		return "float"
	case UniformInt:
		return "int"
	case UniformBool:
		return "bool"
	default:
		return fmt.Sprintf("UniformType(%d)", uint8(t))
	}
}

// Uniform is one constant declared by a shader.
//
// Index is the base register the uniform is loaded from. ArrayCount is the
// declared array length, or 0 for a non-array uniform; both occupy
// max(ArrayCount,1) 16-byte register slots in the packed uniform buffer.
type Uniform struct {
	Type       UniformType
	Index      int
	ArrayCount int
	Name       string
}

// Sampler is one texture sampler declared by a shader.
// Index is the binding slot; slots may be sparse.
type Sampler struct {
	Index int
	Name  string
}

// Attribute is one vertex input declared by a vertex shader.
type Attribute struct {
	Usage      VertexUsage
	UsageIndex int
	Name       string
}

// VertexUsage is the semantic meaning of a vertex attribute.
type VertexUsage uint8

// Vertex attribute usages.
const (
	UsagePosition VertexUsage = iota
	UsageBlendWeight
	UsageBlendIndices
	UsageNormal
	UsagePointSize
	UsageTexCoord
	UsageTangent
	UsageBinormal
	UsageTessFactor
	UsagePositionT
	UsageColor
	UsageFog
	UsageDepth
	UsageSample
)

// VertexElementFormat is the in-memory encoding of a vertex attribute.
//
// The numeric values match the element format enumeration of the source
// bytecode format, which is why they are fixed rather than iota-ordered
// conveniences: patch tables and blob-store content hashes depend on them.
type VertexElementFormat uint8

// Vertex element formats.
const (
	FormatSingle  VertexElementFormat = 0
	FormatVector2 VertexElementFormat = 1
	FormatVector3 VertexElementFormat = 2
	FormatVector4 VertexElementFormat = 3
	FormatColor   VertexElementFormat = 4

	// FormatByte4, FormatShort2 and FormatShort4 are the packed-integer
	// formats: the shader must load integer data and convert it to float
	// rather than reinterpret it, so a generically-compiled vertex shader
	// has to be patched before it can consume them.
	FormatByte4  VertexElementFormat = 5
	FormatShort2 VertexElementFormat = 6
	FormatShort4 VertexElementFormat = 7

	FormatNormalizedShort2 VertexElementFormat = 8
	FormatNormalizedShort4 VertexElementFormat = 9
	FormatHalfVector2      VertexElementFormat = 10
	FormatHalfVector4      VertexElementFormat = 11
)

// PackedInteger reports whether the format requires an integer load and an
// explicit int-to-float conversion in the vertex shader.
func (f VertexElementFormat) PackedInteger() bool {
	return f >= FormatByte4 && f <= FormatShort4
}

// SignedInteger reports whether a packed-integer format carries signed
// components. Only meaningful when PackedInteger is true; Byte4 is the one
// unsigned packed format.
func (f VertexElementFormat) SignedInteger() bool {
	return f != FormatByte4
}

// VertexAttribute is one element of an input layout: the attribute a vertex
// buffer supplies at a given usage slot, and how it is encoded.
type VertexAttribute struct {
	Usage      VertexUsage
	UsageIndex int
	Format     VertexElementFormat
}

// MaxVertexAttributes is the maximum number of attributes in an input layout.
const MaxVertexAttributes = 16

// AttributeKey identifies a vertex attribute slot independent of its format.
// It keys patch-table slots and interface-slot matching.
type AttributeKey struct {
	Usage      VertexUsage
	UsageIndex int
}
