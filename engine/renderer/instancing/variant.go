package instancing

import (
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// Variant defines the shader specific per-instance payload of an instancing
// setup.
type Variant interface {
	Name() string
	// AddInstanceAttributes declares the payload in buffer slot bufferID.
	AddInstanceAttributes(d *descriptor.VertexDescriptor, bufferID uint32)
	NewInstanceBuffer() buffer.VertexBuffer
	// BatchInstancing fills vb from the first count materials.
	BatchInstancing(vb buffer.VertexBuffer, materials []*metadata.Material, entities []RenderEntity, count int) bool
}

// Material parameter slots read by the built-in variants.
const (
	ParamColor       = 0
	ParamUVTransform = 1
	ParamSpecular    = 2
)

// StandardInstancing sends material color and uv transform per instance.
type StandardInstancing struct{}

func (StandardInstancing) Name() string {
	return "standard"
}

func (StandardInstancing) AddInstanceAttributes(d *descriptor.VertexDescriptor, bufferID uint32) {
	d.AddAttribute("inInstanceColor", 4, metadata.SemanticCustom, metadata.ElementFloat, bufferID)
	d.AddAttribute("inInstanceUVTransform", 4, metadata.SemanticCustom, metadata.ElementFloat, bufferID)
}

func (StandardInstancing) NewInstanceBuffer() buffer.VertexBuffer {
	return buffer.NewTypedVertexBuffer[StandardInstanceData](metadata.VertexTypeCustom)
}

func (StandardInstancing) BatchInstancing(vb buffer.VertexBuffer, materials []*metadata.Material, entities []RenderEntity, count int) bool {
	target := typedTarget[StandardInstanceData](vb, "standard instancing")
	if target == nil {
		return false
	}
	count = batchCount(count, len(materials), "standard instancing")

	target.SetUsed(count)
	out := target.Elements()
	for i := 0; i < count; i++ {
		m := materials[i]
		out[i] = StandardInstanceData{
			Color:       m.Param(ParamColor),
			UVTransform: m.Param(ParamUVTransform),
		}
	}
	target.SetDirty()
	return true
}

// TangentInstancing adds specular color and gloss for normal mapped shaders.
type TangentInstancing struct{}

func (TangentInstancing) Name() string {
	return "tangent"
}

func (TangentInstancing) AddInstanceAttributes(d *descriptor.VertexDescriptor, bufferID uint32) {
	StandardInstancing{}.AddInstanceAttributes(d, bufferID)
	d.AddAttribute("inInstanceSpecular", 4, metadata.SemanticCustom, metadata.ElementFloat, bufferID)
}

func (TangentInstancing) NewInstanceBuffer() buffer.VertexBuffer {
	return buffer.NewTypedVertexBuffer[TangentInstanceData](metadata.VertexTypeCustom)
}

func (TangentInstancing) BatchInstancing(vb buffer.VertexBuffer, materials []*metadata.Material, entities []RenderEntity, count int) bool {
	target := typedTarget[TangentInstanceData](vb, "tangent instancing")
	if target == nil {
		return false
	}
	count = batchCount(count, len(materials), "tangent instancing")

	target.SetUsed(count)
	out := target.Elements()
	for i := 0; i < count; i++ {
		m := materials[i]
		out[i] = TangentInstanceData{
			Color:       m.Param(ParamColor),
			UVTransform: m.Param(ParamUVTransform),
			Specular:    m.Param(ParamSpecular),
		}
	}
	target.SetDirty()
	return true
}

// VariantByName resolves the names used in configuration files.
func VariantByName(name string) (Variant, bool) {
	switch name {
	case "standard":
		return StandardInstancing{}, true
	case "tangent":
		return TangentInstancing{}, true
	}
	return nil, false
}
