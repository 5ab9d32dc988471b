package metadata

import (
	"github.com/go-gl/mathgl/mgl32"
)

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief The number of float4 parameter slots a material exposes to shaders. */
const MaxMaterialParams = 16

/**
 * @brief A material as seen by the buffer core: an opaque block of float4
 * shader parameters. The meaning of each slot belongs to the shader.
 */
type Material struct {
	/** @brief The material name. */
	Name string
	/** @brief The shader the parameters are laid out for. */
	ShaderName string
	/** @brief Shader parameters, copied verbatim into instancing buffers. */
	Params [MaxMaterialParams]mgl32.Vec4
	/** @brief Incremented every time a parameter changes. */
	Generation uint32
}

func NewMaterial(name, shaderName string) *Material {
	return &Material{
		Name:       name,
		ShaderName: shaderName,
	}
}

// SetParam writes one float4 slot. Slots outside the block are ignored.
func (m *Material) SetParam(slot int, v mgl32.Vec4) {
	if slot < 0 || slot >= MaxMaterialParams {
		return
	}
	m.Params[slot] = v
	m.Generation++
}

// Param reads one float4 slot, zero outside the block.
func (m *Material) Param(slot int) mgl32.Vec4 {
	if m == nil || slot < 0 || slot >= MaxMaterialParams {
		return mgl32.Vec4{}
	}
	return m.Params[slot]
}
