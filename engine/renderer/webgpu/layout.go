package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

type formatKey struct {
	elementType metadata.ElementType
	count       uint32
	normalized  bool
}

// WebGPU has no single or three component 8 and 16 bit formats and no 64 bit
// floats.
var vertexFormats = map[formatKey]wgpu.VertexFormat{
	{metadata.ElementByte, 2, false}:   wgpu.VertexFormatSint8x2,
	{metadata.ElementByte, 4, false}:   wgpu.VertexFormatSint8x4,
	{metadata.ElementUByte, 2, false}:  wgpu.VertexFormatUint8x2,
	{metadata.ElementUByte, 4, false}:  wgpu.VertexFormatUint8x4,
	{metadata.ElementUByte, 2, true}:   wgpu.VertexFormatUnorm8x2,
	{metadata.ElementUByte, 4, true}:   wgpu.VertexFormatUnorm8x4,
	{metadata.ElementShort, 2, false}:  wgpu.VertexFormatSint16x2,
	{metadata.ElementShort, 4, false}:  wgpu.VertexFormatSint16x4,
	{metadata.ElementUShort, 2, false}: wgpu.VertexFormatUint16x2,
	{metadata.ElementUShort, 4, false}: wgpu.VertexFormatUint16x4,
	{metadata.ElementInt, 1, false}:    wgpu.VertexFormatSint32,
	{metadata.ElementInt, 2, false}:    wgpu.VertexFormatSint32x2,
	{metadata.ElementInt, 3, false}:    wgpu.VertexFormatSint32x3,
	{metadata.ElementInt, 4, false}:    wgpu.VertexFormatSint32x4,
	{metadata.ElementUInt, 1, false}:   wgpu.VertexFormatUint32,
	{metadata.ElementUInt, 2, false}:   wgpu.VertexFormatUint32x2,
	{metadata.ElementUInt, 3, false}:   wgpu.VertexFormatUint32x3,
	{metadata.ElementUInt, 4, false}:   wgpu.VertexFormatUint32x4,
	{metadata.ElementFloat, 1, false}:  wgpu.VertexFormatFloat32,
	{metadata.ElementFloat, 2, false}:  wgpu.VertexFormatFloat32x2,
	{metadata.ElementFloat, 3, false}:  wgpu.VertexFormatFloat32x3,
	{metadata.ElementFloat, 4, false}:  wgpu.VertexFormatFloat32x4,
}

// VertexFormat maps an attribute to a WebGPU vertex format. Unsigned byte
// colors are normalized.
func VertexFormat(a *descriptor.Attribute) (wgpu.VertexFormat, error) {
	key := formatKey{
		elementType: a.Type(),
		count:       a.ElementCount(),
		normalized:  a.Type() == metadata.ElementUByte && a.Semantic() == metadata.SemanticColor,
	}
	f, ok := vertexFormats[key]
	if !ok {
		return wgpu.VertexFormatUndefined, fmt.Errorf("attribute %s has no webgpu format (%s x%d)", a.Name(), a.Type(), a.ElementCount())
	}
	return f, nil
}

// VertexBufferLayouts returns one layout per buffer slot of the descriptor,
// indexed by slot so the result can be passed to wgpu.VertexState directly.
// Unused slots get an empty layout with no attributes.
func VertexBufferLayouts(desc *descriptor.VertexDescriptor) ([]wgpu.VertexBufferLayout, error) {
	if desc == nil {
		return nil, fmt.Errorf("cannot build vertex layouts without a descriptor")
	}
	layouts := make([]wgpu.VertexBufferLayout, desc.BufferCount())
	for slot := range layouts {
		layouts[slot].ArrayStride = uint64(desc.VertexSize(uint32(slot)))
		layouts[slot].StepMode = wgpu.VertexStepModeVertex
		if desc.InstanceDataStepRate(uint32(slot)) == metadata.StepPerInstance {
			layouts[slot].StepMode = wgpu.VertexStepModeInstance
		}
	}

	for i := 0; i < desc.AttributeCount(); i++ {
		a := desc.Attribute(i)
		format, err := VertexFormat(a)
		if err != nil {
			return nil, err
		}
		l := &layouts[a.BufferID()]
		l.Attributes = append(l.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         uint64(a.Offset()),
			ShaderLocation: uint32(i),
		})
	}
	return layouts, nil
}

// IndexFormat maps the engine index width to WebGPU's.
func IndexFormat(it metadata.IndexType) wgpu.IndexFormat {
	if it == metadata.IndexType16Bit {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

// PrimitiveTopology maps a primitive type. Fans, loops and point sprites have
// no WebGPU topology and report false.
func PrimitiveTopology(pt metadata.PrimitiveType) (wgpu.PrimitiveTopology, bool) {
	switch pt {
	case metadata.PrimitivePoints:
		return wgpu.PrimitiveTopologyPointList, true
	case metadata.PrimitiveLineStrip:
		return wgpu.PrimitiveTopologyLineStrip, true
	case metadata.PrimitiveLines:
		return wgpu.PrimitiveTopologyLineList, true
	case metadata.PrimitiveTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip, true
	case metadata.PrimitiveTriangles:
		return wgpu.PrimitiveTopologyTriangleList, true
	}
	return wgpu.PrimitiveTopologyPointList, false
}

// VertexState assembles the vertex stage of a render pipeline.
func VertexState(module *wgpu.ShaderModule, entryPoint string, desc *descriptor.VertexDescriptor) (wgpu.VertexState, error) {
	layouts, err := VertexBufferLayouts(desc)
	if err != nil {
		return wgpu.VertexState{}, err
	}
	return wgpu.VertexState{
		Module:     module,
		EntryPoint: entryPoint,
		Buffers:    layouts,
	}, nil
}
