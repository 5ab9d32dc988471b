package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

/**
 * @brief The vertex input part of a graphics pipeline, derived from a vertex
 * descriptor. One binding per used buffer slot, one attribute description per
 * descriptor attribute.
 */
type VertexInputState struct {
	Bindings   []vk.VertexInputBindingDescription
	Attributes []vk.VertexInputAttributeDescription
}

// formats indexed by element type then component count - 1.
var formats = [metadata.ElementTypeCount][4]vk.Format{
	metadata.ElementByte:   {vk.FormatR8Sint, vk.FormatR8g8Sint, vk.FormatR8g8b8Sint, vk.FormatR8g8b8a8Sint},
	metadata.ElementUByte:  {vk.FormatR8Uint, vk.FormatR8g8Uint, vk.FormatR8g8b8Uint, vk.FormatR8g8b8a8Uint},
	metadata.ElementShort:  {vk.FormatR16Sint, vk.FormatR16g16Sint, vk.FormatR16g16b16Sint, vk.FormatR16g16b16a16Sint},
	metadata.ElementUShort: {vk.FormatR16Uint, vk.FormatR16g16Uint, vk.FormatR16g16b16Uint, vk.FormatR16g16b16a16Uint},
	metadata.ElementInt:    {vk.FormatR32Sint, vk.FormatR32g32Sint, vk.FormatR32g32b32Sint, vk.FormatR32g32b32a32Sint},
	metadata.ElementUInt:   {vk.FormatR32Uint, vk.FormatR32g32Uint, vk.FormatR32g32b32Uint, vk.FormatR32g32b32a32Uint},
	metadata.ElementFloat:  {vk.FormatR32Sfloat, vk.FormatR32g32Sfloat, vk.FormatR32g32b32Sfloat, vk.FormatR32g32b32a32Sfloat},
	metadata.ElementDouble: {vk.FormatR64Sfloat, vk.FormatR64g64Sfloat, vk.FormatR64g64b64Sfloat, vk.FormatR64g64b64a64Sfloat},
}

var normalizedColorFormats = [4]vk.Format{
	vk.FormatR8Unorm, vk.FormatR8g8Unorm, vk.FormatR8g8b8Unorm, vk.FormatR8g8b8a8Unorm,
}

// AttributeFormat maps an attribute to its Vulkan format. Unsigned byte colors
// are read as normalized floats.
func AttributeFormat(a *descriptor.Attribute) (vk.Format, error) {
	count := a.ElementCount()
	if a.Type() >= metadata.ElementTypeCount || count == 0 || count > 4 {
		return vk.FormatUndefined, fmt.Errorf("attribute %s has no vulkan format (%s x%d)", a.Name(), a.Type(), count)
	}
	if a.Type() == metadata.ElementUByte && a.Semantic() == metadata.SemanticColor {
		return normalizedColorFormats[count-1], nil
	}
	return formats[a.Type()][count-1], nil
}

// locationSpan is the number of shader locations an attribute consumes. Three
// and four component doubles take two.
func locationSpan(a *descriptor.Attribute) uint32 {
	if a.Type() == metadata.ElementDouble && a.ElementCount() > 2 {
		return 2
	}
	return 1
}

// NewVertexInputState translates a descriptor. Shader locations follow the
// attribute order of the descriptor.
func NewVertexInputState(desc *descriptor.VertexDescriptor) (*VertexInputState, error) {
	if desc == nil {
		return nil, fmt.Errorf("cannot build vertex input state without a descriptor")
	}
	state := &VertexInputState{}

	for slot := uint32(0); slot < desc.BufferCount(); slot++ {
		stride := desc.VertexSize(slot)
		if stride == 0 {
			continue
		}
		rate := vk.VertexInputRateVertex
		if desc.InstanceDataStepRate(slot) == metadata.StepPerInstance {
			rate = vk.VertexInputRateInstance
		}
		state.Bindings = append(state.Bindings, vk.VertexInputBindingDescription{
			Binding:   slot,
			Stride:    stride,
			InputRate: rate,
		})
	}

	location := uint32(0)
	for i := 0; i < desc.AttributeCount(); i++ {
		a := desc.Attribute(i)
		format, err := AttributeFormat(a)
		if err != nil {
			return nil, err
		}
		state.Attributes = append(state.Attributes, vk.VertexInputAttributeDescription{
			Location: location,
			Binding:  a.BufferID(),
			Format:   format,
			Offset:   a.Offset(),
		})
		location += locationSpan(a)
	}
	return state, nil
}

// CreateInfo fills the pipeline vertex input stage.
func (s *VertexInputState) CreateInfo() vk.PipelineVertexInputStateCreateInfo {
	info := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(s.Bindings)),
		PVertexBindingDescriptions:      s.Bindings,
		VertexAttributeDescriptionCount: uint32(len(s.Attributes)),
		PVertexAttributeDescriptions:    s.Attributes,
	}
	return info
}

// IndexType maps the engine index width to Vulkan's.
func IndexType(it metadata.IndexType) vk.IndexType {
	if it == metadata.IndexType16Bit {
		return vk.IndexTypeUint16
	}
	return vk.IndexTypeUint32
}

// PrimitiveTopology maps a primitive type. Line loops and point sprites have
// no Vulkan topology and report false.
func PrimitiveTopology(pt metadata.PrimitiveType) (vk.PrimitiveTopology, bool) {
	switch pt {
	case metadata.PrimitivePoints:
		return vk.PrimitiveTopologyPointList, true
	case metadata.PrimitiveLineStrip:
		return vk.PrimitiveTopologyLineStrip, true
	case metadata.PrimitiveLines:
		return vk.PrimitiveTopologyLineList, true
	case metadata.PrimitiveTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip, true
	case metadata.PrimitiveTriangleFan:
		return vk.PrimitiveTopologyTriangleFan, true
	case metadata.PrimitiveTriangles:
		return vk.PrimitiveTopologyTriangleList, true
	}
	return vk.PrimitiveTopologyPointList, false
}
