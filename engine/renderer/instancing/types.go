package instancing

import (
	"github.com/go-gl/mathgl/mgl32"
)

/**
 * @brief Which form of indirect lighting an entity carries.
 */
type IndirectLightingType uint8

const (
	/** @brief Four spherical harmonics coefficients. */
	IndirectLightingSH4 IndirectLightingType = iota
	/** @brief A flat ambient color. */
	IndirectLightingAmbient
)

/**
 * @brief Indirect lighting of one entity, sampled from light probes or the
 * scene ambient.
 */
type IndirectLighting struct {
	Type    IndirectLightingType
	SH      [4]mgl32.Vec3
	Ambient mgl32.Vec4
}

// Color returns a single color for shaders that cannot evaluate spherical
// harmonics: the ambient color, or the constant band.
func (l IndirectLighting) Color() mgl32.Vec4 {
	if l.Type == IndirectLightingAmbient {
		return l.Ambient
	}
	return l.SH[0].Vec4(1)
}

/**
 * @brief The state of one live entity the batch functions read. It is a
 * snapshot: batching never writes back.
 */
type RenderEntity struct {
	World    mgl32.Mat4
	Lighting IndirectLighting
}

// WorldTransform is the per-instance element of the transform buffer used
// with render lighting. 64 bytes, one float4 attribute per matrix column.
type WorldTransform struct {
	World mgl32.Mat4
}

// IndirectLightingSH is the per-instance element of the lighting buffer.
// 48 bytes.
type IndirectLightingSH struct {
	SH [4]mgl32.Vec3
}

// TransformAndLighting is the per-instance element of the transform buffer
// of a variant descriptor. 80 bytes.
type TransformAndLighting struct {
	World    mgl32.Mat4
	Lighting mgl32.Vec4
}

// StandardInstanceData is the payload of StandardInstancing: material color
// and uv scale (xy) plus offset (zw). 32 bytes.
type StandardInstanceData struct {
	Color       mgl32.Vec4
	UVTransform mgl32.Vec4
}

// TangentInstanceData extends the standard payload with specular color (xyz)
// and gloss (w). 48 bytes.
type TangentInstanceData struct {
	Color       mgl32.Vec4
	UVTransform mgl32.Vec4
	Specular    mgl32.Vec4
}
