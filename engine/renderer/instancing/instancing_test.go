package instancing

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, variant Variant, base metadata.VertexType) (*descriptor.Catalog, *ShaderInstancing) {
	t.Helper()
	c := descriptor.NewCatalog()
	c.RegisterDefaults()
	s, err := New(c, variant, base)
	require.NoError(t, err)
	return c, s
}

func triangle(c *descriptor.Catalog) *mesh.MeshBuffer {
	vb := buffer.NewTypedVertexBuffer[buffer.Vertex](metadata.VertexTypeStandard)
	vb.Add(buffer.Vertex{Pos: mgl32.Vec3{0, 0, 0}})
	vb.Add(buffer.Vertex{Pos: mgl32.Vec3{1, 0, 0}})
	vb.Add(buffer.Vertex{Pos: mgl32.Vec3{0, 1, 0}})
	mb := mesh.NewWithVertexBuffer(c.Get("standard"), vb, metadata.IndexType16Bit)
	mb.IndexBuffer().SetIndices([]uint32{0, 1, 2})
	return mb
}

func entities(n int) []RenderEntity {
	out := make([]RenderEntity, n)
	for i := range out {
		out[i] = RenderEntity{
			World: mgl32.Translate3D(float32(i), float32(2*i), 0),
			Lighting: IndirectLighting{
				Type: IndirectLightingSH4,
				SH:   [4]mgl32.Vec3{{float32(i), 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}},
			},
		}
	}
	return out
}

func TestNewRequiresBaseDescriptor(t *testing.T) {
	_, err := New(descriptor.NewCatalog(), StandardInstancing{}, metadata.VertexTypeStandard)
	assert.Error(t, err)
}

func TestRenderLightingDescriptorSizes(t *testing.T) {
	c, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)

	d := s.SetupDescriptorForRenderLighting("standard_lighting")
	assert.Equal(t, uint32(36), d.VertexSize(0))
	assert.Equal(t, uint32(48), d.VertexSize(InstanceSlot))
	assert.Equal(t, uint32(64), d.VertexSize(TransformSlot))
	assert.Equal(t, metadata.StepPerVertex, d.InstanceDataStepRate(0))
	assert.Equal(t, metadata.StepPerInstance, d.InstanceDataStepRate(InstanceSlot))
	assert.Equal(t, metadata.StepPerInstance, d.InstanceDataStepRate(TransformSlot))
	assert.Equal(t, 4+4+4, d.AttributeCount())
	assert.NotNil(t, d.AttributeBySemantic(metadata.SemanticLightProbe))

	assert.Equal(t, uint32(unsafe.Sizeof(IndirectLightingSH{})), d.VertexSize(InstanceSlot))
	assert.Equal(t, uint32(unsafe.Sizeof(WorldTransform{})), d.VertexSize(TransformSlot))

	count := c.Count()
	again := s.SetupDescriptorForRenderLighting("standard_lighting")
	assert.Same(t, d, again)
	assert.Equal(t, count, c.Count())
	assert.Equal(t, 12, again.AttributeCount())
}

func TestVariantDescriptorSizes(t *testing.T) {
	_, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	d := s.SetupDescriptorForMesh()
	assert.Equal(t, "standard_standard_instancing", d.Name())
	assert.Same(t, d, s.SetupDescriptorForMesh())
	assert.Equal(t, uint32(unsafe.Sizeof(StandardInstanceData{})), d.VertexSize(InstanceSlot))
	assert.Equal(t, uint32(unsafe.Sizeof(TransformAndLighting{})), d.VertexSize(TransformSlot))

	_, ts := setup(t, TangentInstancing{}, metadata.VertexTypeTangents)
	td := ts.SetupDescriptorForMesh()
	assert.Equal(t, uint32(60), td.VertexSize(0))
	assert.Equal(t, uint32(unsafe.Sizeof(TangentInstanceData{})), td.VertexSize(InstanceSlot))
}

func TestApplyRemoveRoundTrip(t *testing.T) {
	c, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	mb := triangle(c)
	base := mb.VertexDescriptor()
	count := mb.VertexBufferCount()

	require.True(t, s.IsSupport(mb))
	require.True(t, s.ApplyInstancing(mb, s.CreateInstancingBuffer(), s.CreateTransformBuffer()))
	assert.Same(t, s.InstancedDescriptor(), mb.VertexDescriptor())
	assert.Equal(t, 3, mb.VertexBufferCount())
	assert.True(t, mb.Drawable())
	assert.True(t, s.IsSupport(mb))

	s.RemoveInstancing(mb)
	assert.Same(t, base, mb.VertexDescriptor())
	assert.Equal(t, count, mb.VertexBufferCount())

	s.RemoveInstancing(mb)
	assert.Same(t, base, mb.VertexDescriptor())
	assert.Equal(t, count, mb.VertexBufferCount())
}

const positionOnlyStandard = `
[[descriptor]]
name = "standard"
vertex_type = "standard"

[[descriptor.attribute]]
name = "inPosition"
semantic = "position"
type = "float"
count = 4
`

func TestRebuildFollowsReloadedBase(t *testing.T) {
	c, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	mb := triangle(c)
	lit := triangle(c)
	require.True(t, s.ApplyInstancing(mb, s.CreateInstancingBuffer(), s.CreateTransformBuffer()))
	require.True(t, s.ApplyInstancingForRenderLighting(lit, s.CreateIndirectLightingBuffer(), s.CreateWorldTransformBuffer()))
	assert.False(t, s.Rebuild(), "base untouched")

	_, err := c.LoadLayouts(strings.NewReader(positionOnlyStandard), descriptor.LayoutTOML)
	require.NoError(t, err)
	require.Equal(t, uint32(16), c.Get("standard").VertexSize(0))

	require.True(t, s.Rebuild())
	assert.Equal(t, uint32(16), s.InstancedDescriptor().VertexSize(0))
	assert.Equal(t, uint32(16), s.LightingDescriptor().VertexSize(0))
	assert.Equal(t, uint32(32), s.InstancedDescriptor().VertexSize(InstanceSlot))
	assert.Equal(t, uint32(48), s.LightingDescriptor().VertexSize(InstanceSlot))
	assert.False(t, s.Rebuild(), "already in sync")

	mb.UpdateCompatibility()
	lit.UpdateCompatibility()
	assert.Equal(t, mesh.StateIncompatible, mb.State())
	assert.Equal(t, mesh.StateIncompatible, lit.State())
}

func TestApplyReplacesBoundBuffers(t *testing.T) {
	c, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	mb := triangle(c)
	require.True(t, s.ApplyInstancingForRenderLighting(mb, s.CreateIndirectLightingBuffer(), s.CreateWorldTransformBuffer()))
	assert.Same(t, s.LightingDescriptor(), mb.VertexDescriptor())

	lighting := s.CreateIndirectLightingBuffer()
	world := s.CreateWorldTransformBuffer()
	require.True(t, s.ApplyInstancingForRenderLighting(mb, lighting, world))
	assert.Equal(t, 3, mb.VertexBufferCount())
	assert.Same(t, lighting, mb.VertexBuffer(InstanceSlot))
	assert.Same(t, world, mb.VertexBuffer(TransformSlot))
}

func TestApplyRejectsWrongBuffers(t *testing.T) {
	c, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	mb := triangle(c)
	assert.False(t, s.ApplyInstancing(mb, s.CreateWorldTransformBuffer(), s.CreateTransformBuffer()))
	assert.Equal(t, mesh.StateIncompatible, mb.State())
	assert.False(t, s.ApplyInstancing(mb, nil, s.CreateTransformBuffer()))
}

func TestIsSupportRejectsUnknownDescriptors(t *testing.T) {
	c, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	skin := mesh.NewWithVertexBuffer(c.Get("skin"), buffer.NewVertexBuffer(metadata.VertexTypeSkin), metadata.IndexType16Bit)
	assert.False(t, s.IsSupport(skin))
	assert.False(t, s.ApplyInstancing(skin, s.CreateInstancingBuffer(), s.CreateTransformBuffer()))
	assert.Same(t, c.Get("skin"), skin.VertexDescriptor())
	assert.False(t, s.IsSupport(nil))

	m := mesh.NewMesh("mixed")
	m.AddMeshBuffer(triangle(c))
	assert.True(t, s.IsSupportMesh(m))
	m.AddMeshBuffer(skin)
	assert.False(t, s.IsSupportMesh(m))
	assert.False(t, s.IsSupportMesh(mesh.NewMesh("empty")))
}

func TestApplyRemoveMesh(t *testing.T) {
	c, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	m := mesh.NewMesh("pair")
	m.AddMeshBuffer(triangle(c))
	m.AddMeshBuffer(triangle(c))

	inst := s.CreateInstancingBuffer()
	tr := s.CreateTransformBuffer()
	require.True(t, s.ApplyInstancingMesh(m, inst, tr))
	for _, mb := range m.MeshBuffers() {
		assert.Same(t, inst, mb.VertexBuffer(InstanceSlot))
	}
	s.RemoveInstancingMesh(m)
	for _, mb := range m.MeshBuffers() {
		assert.Equal(t, 1, mb.VertexBufferCount())
		assert.Same(t, s.BaseDescriptor(), mb.VertexDescriptor())
	}
}

func TestBatchTransform(t *testing.T) {
	_, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	vb := s.CreateWorldTransformBuffer()
	es := entities(5)

	before := vb.ChangedID()
	require.True(t, BatchTransform(vb, es, len(es)))
	assert.Equal(t, len(es), vb.ElementCount())
	assert.Equal(t, before+1, vb.ChangedID())

	typed := vb.(*buffer.TypedVertexBuffer[WorldTransform])
	for i := range es {
		assert.Equal(t, es[i].World, typed.Get(i).World)
	}

	require.True(t, BatchTransform(vb, es, 2))
	assert.Equal(t, 2, vb.ElementCount(), "buffers shrink to the live count")
}

func TestBatchTransformAndLighting(t *testing.T) {
	_, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	vb := s.CreateTransformBuffer()
	es := entities(3)
	es[2].Lighting = IndirectLighting{Type: IndirectLightingAmbient, Ambient: mgl32.Vec4{0.2, 0.3, 0.4, 1}}

	before := vb.ChangedID()
	require.True(t, BatchTransformAndLighting(vb, es, 3))
	assert.Equal(t, before+1, vb.ChangedID())

	typed := vb.(*buffer.TypedVertexBuffer[TransformAndLighting])
	assert.Equal(t, es[1].World, typed.Get(1).World)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, typed.Get(1).Lighting)
	assert.Equal(t, mgl32.Vec4{0.2, 0.3, 0.4, 1}, typed.Get(2).Lighting)
}

func TestBatchIndirectLighting(t *testing.T) {
	_, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	vb := s.CreateIndirectLightingBuffer()
	es := entities(2)
	es[1].Lighting = IndirectLighting{Type: IndirectLightingAmbient, Ambient: mgl32.Vec4{0.5, 0.5, 0.5, 1}}

	require.True(t, BatchIndirectLighting(vb, es, 2))
	typed := vb.(*buffer.TypedVertexBuffer[IndirectLightingSH])
	assert.Equal(t, es[0].Lighting.SH, typed.Get(0).SH)
	assert.Equal(t, [4]mgl32.Vec3{{0.5, 0.5, 0.5}}, typed.Get(1).SH)
}

func TestBatchInstancingCopiesMaterialParams(t *testing.T) {
	_, s := setup(t, TangentInstancing{}, metadata.VertexTypeTangents)
	vb := s.CreateInstancingBuffer()

	red := metadata.NewMaterial("red", "instanced")
	red.SetParam(ParamColor, mgl32.Vec4{1, 0, 0, 1})
	red.SetParam(ParamUVTransform, mgl32.Vec4{2, 2, 0.5, 0})
	red.SetParam(ParamSpecular, mgl32.Vec4{1, 1, 1, 32})
	materials := []*metadata.Material{red, nil}

	before := vb.ChangedID()
	require.True(t, s.BatchInstancing(vb, materials, entities(2), 2))
	assert.Equal(t, before+1, vb.ChangedID())

	typed := vb.(*buffer.TypedVertexBuffer[TangentInstanceData])
	assert.Equal(t, TangentInstanceData{
		Color:       mgl32.Vec4{1, 0, 0, 1},
		UVTransform: mgl32.Vec4{2, 2, 0.5, 0},
		Specular:    mgl32.Vec4{1, 1, 1, 32},
	}, typed.Get(0))
	assert.Equal(t, TangentInstanceData{}, typed.Get(1))
}

func TestBatchRejectsWrongBuffer(t *testing.T) {
	if core.AssertionsEnabled {
		t.Skip("downcast failures assert in debug builds")
	}
	_, s := setup(t, StandardInstancing{}, metadata.VertexTypeStandard)
	vb := s.CreateTransformBuffer()
	before := vb.ChangedID()

	assert.False(t, BatchTransform(vb, entities(2), 2))
	assert.False(t, BatchIndirectLighting(vb, entities(2), 2))
	assert.False(t, s.BatchInstancing(vb, nil, nil, 0))
	assert.Equal(t, before, vb.ChangedID())
	assert.Zero(t, vb.ElementCount())
}

func TestVariantByName(t *testing.T) {
	v, ok := VariantByName("tangent")
	require.True(t, ok)
	assert.Equal(t, "tangent", v.Name())
	_, ok = VariantByName("bogus")
	assert.False(t, ok)
}
