package metadata

import (
	"fmt"
	"strings"
)

/**
 * @brief Scalar type of one component of a vertex attribute.
 */
type ElementType uint8

const (
	ElementByte ElementType = iota
	ElementUByte
	ElementShort
	ElementUShort
	ElementInt
	ElementUInt
	ElementFloat
	ElementDouble

	ElementTypeCount
)

var elementTypeNames = [ElementTypeCount]string{
	"byte", "ubyte", "short", "ushort", "int", "uint", "float", "double",
}

var elementTypeSizes = [ElementTypeCount]uint32{1, 1, 2, 2, 4, 4, 4, 8}

// Size returns the size of one component in bytes.
func (t ElementType) Size() uint32 {
	if t >= ElementTypeCount {
		return 0
	}
	return elementTypeSizes[t]
}

func (t ElementType) String() string {
	if t >= ElementTypeCount {
		return "unknown"
	}
	return elementTypeNames[t]
}

// ParseElementType accepts the names printed by String.
func ParseElementType(name string) (ElementType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range elementTypeNames {
		if s == n {
			return ElementType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown element type %q", name)
}

/**
 * @brief Role of a vertex attribute as seen by the shader.
 */
type Semantic uint8

const (
	SemanticPosition Semantic = iota
	SemanticNormal
	SemanticColor
	SemanticTexCoord0
	SemanticTexCoord1
	SemanticTexCoord2
	SemanticTexCoord3
	SemanticTexCoord4
	SemanticTexCoord5
	SemanticTexCoord6
	SemanticTexCoord7
	SemanticTangent
	SemanticBinormal
	SemanticBlendWeights
	SemanticBlendIndices
	SemanticLightProbe
	SemanticCustom

	SemanticCount
)

var semanticNames = [SemanticCount]string{
	"position", "normal", "color",
	"texcoord0", "texcoord1", "texcoord2", "texcoord3",
	"texcoord4", "texcoord5", "texcoord6", "texcoord7",
	"tangent", "binormal", "blend_weights", "blend_indices",
	"light_probe", "custom",
}

func (s Semantic) String() string {
	if s >= SemanticCount {
		return "unknown"
	}
	return semanticNames[s]
}

// ParseSemantic accepts the names printed by String.
func ParseSemantic(name string) (Semantic, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range semanticNames {
		if s == n {
			return Semantic(i), nil
		}
	}
	return 0, fmt.Errorf("unknown semantic %q", name)
}

// TexCoord returns the texture coordinate semantic for channel i (0..7).
func TexCoord(i int) Semantic {
	return SemanticTexCoord0 + Semantic(i)
}

/**
 * @brief How often the GPU advances through a buffer slot.
 */
type StepRate uint8

const (
	StepPerVertex StepRate = iota
	StepPerInstance
)

func (r StepRate) String() string {
	if r == StepPerInstance {
		return "instance"
	}
	return "vertex"
}

// ParseStepRate accepts "vertex" and "instance".
func ParseStepRate(name string) (StepRate, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "vertex":
		return StepPerVertex, nil
	case "instance":
		return StepPerInstance, nil
	}
	return 0, fmt.Errorf("unknown step rate %q", name)
}

/**
 * @brief The closed set of vertex shapes the engine stores.
 */
type VertexType uint8

const (
	/** @brief No expectation, any element type is accepted. */
	VertexTypeUnknown VertexType = iota
	/** @brief Position, normal, color, one texture coordinate. */
	VertexTypeStandard
	/** @brief Standard plus a second texture coordinate. */
	VertexType2TCoords
	/** @brief Standard plus tangent and binormal. */
	VertexTypeTangents
	/** @brief Standard plus blend weights and blend indices. */
	VertexTypeSkin
	/** @brief Two texture coordinates plus tangent and binormal. */
	VertexType2TCoordsTangents
	/** @brief Tangents plus blend weights and blend indices. */
	VertexTypeSkinTangents
	/** @brief Plain data defined by the user, e.g. per-instance payloads. */
	VertexTypeCustom
)

var vertexTypeNames = [...]string{
	"unknown", "standard", "2tcoords", "tangents", "skin", "2tcoords_tangents", "skin_tangents", "custom",
}

func (t VertexType) String() string {
	if int(t) >= len(vertexTypeNames) {
		return "invalid"
	}
	return vertexTypeNames[t]
}

// ParseVertexType accepts the names printed by String.
func ParseVertexType(name string) (VertexType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range vertexTypeNames {
		if s == n {
			return VertexType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown vertex type %q", name)
}

// BuiltinVertexTypes lists the shapes with a concrete Go vertex struct.
var BuiltinVertexTypes = []VertexType{
	VertexTypeStandard,
	VertexType2TCoords,
	VertexTypeTangents,
	VertexTypeSkin,
	VertexType2TCoordsTangents,
	VertexTypeSkinTangents,
}
