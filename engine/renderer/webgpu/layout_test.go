package webgpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/instancing"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTangentLayout(t *testing.T) {
	c := descriptor.NewCatalog()
	c.RegisterDefaults()

	layouts, err := VertexBufferLayouts(c.GetByVertexType(metadata.VertexTypeTangents))
	require.NoError(t, err)
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(60), layouts[0].ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layouts[0].StepMode)
	require.Len(t, layouts[0].Attributes, 6)
	assert.Equal(t, wgpu.VertexFormatUnorm8x4, layouts[0].Attributes[2].Format)
	assert.Equal(t, uint64(36), layouts[0].Attributes[4].Offset)
	assert.Equal(t, uint32(5), layouts[0].Attributes[5].ShaderLocation)
}

func TestInstancedLayoutsPerSlot(t *testing.T) {
	c := descriptor.NewCatalog()
	c.RegisterDefaults()
	s, err := instancing.New(c, instancing.TangentInstancing{}, metadata.VertexTypeStandard)
	require.NoError(t, err)

	layouts, err := VertexBufferLayouts(s.SetupDescriptorForMesh())
	require.NoError(t, err)
	require.Len(t, layouts, 3)

	assert.Equal(t, uint64(36), layouts[0].ArrayStride)
	assert.Equal(t, uint64(48), layouts[instancing.InstanceSlot].ArrayStride)
	assert.Equal(t, uint64(80), layouts[instancing.TransformSlot].ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, layouts[instancing.InstanceSlot].StepMode)
	assert.Equal(t, wgpu.VertexStepModeInstance, layouts[instancing.TransformSlot].StepMode)

	// locations keep counting across slots
	first := layouts[instancing.InstanceSlot].Attributes[0]
	assert.Equal(t, uint32(4), first.ShaderLocation)
	assert.Equal(t, uint64(0), first.Offset)
}

func TestUnsupportedFormats(t *testing.T) {
	d := descriptor.NewVertexDescriptor("odd", 0)
	d.AddAttribute("weights", 3, metadata.SemanticCustom, metadata.ElementUByte, 0)
	_, err := VertexBufferLayouts(d)
	assert.Error(t, err)

	d = descriptor.NewVertexDescriptor("doubles", 0)
	d.AddAttribute("p", 2, metadata.SemanticPosition, metadata.ElementDouble, 0)
	_, err = VertexBufferLayouts(d)
	assert.Error(t, err)

	_, err = VertexBufferLayouts(nil)
	assert.Error(t, err)
}

func TestIndexFormatAndTopology(t *testing.T) {
	assert.Equal(t, wgpu.IndexFormatUint16, IndexFormat(metadata.IndexType16Bit))
	assert.Equal(t, wgpu.IndexFormatUint32, IndexFormat(metadata.IndexType32Bit))

	topo, ok := PrimitiveTopology(metadata.PrimitiveLines)
	assert.True(t, ok)
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, topo)

	for _, pt := range []metadata.PrimitiveType{metadata.PrimitiveTriangleFan, metadata.PrimitiveLineLoop, metadata.PrimitivePointSprites} {
		_, ok := PrimitiveTopology(pt)
		assert.False(t, ok, pt.String())
	}
}
