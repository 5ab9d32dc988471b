package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ RendererBackend = (*null.Backend)(nil)

func setup(t *testing.T) (*Renderer, *null.Backend, *descriptor.Catalog) {
	t.Helper()
	backend := null.New()
	r := New(backend)
	require.NoError(t, r.Initialize())
	c := descriptor.NewCatalog()
	c.RegisterDefaults()
	return r, backend, c
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

func TestSceneOrdering(t *testing.T) {
	r := New(null.New())
	assert.ErrorIs(t, r.BeginScene(), core.ErrBackendNotReady)
	require.NoError(t, r.Initialize())

	assert.ErrorIs(t, r.EndScene(), core.ErrSceneNotStarted)
	assert.ErrorIs(t, r.DrawMeshBuffer(nil), core.ErrSceneNotStarted)
	require.NoError(t, r.BeginScene())
	assert.ErrorIs(t, r.BeginScene(), core.ErrSceneAlreadyStarted)
	require.NoError(t, r.EndScene())
	assert.Equal(t, uint64(1), r.FrameNumber())
	require.NoError(t, r.Shutdown())
}

func TestDrawAttachesHardwareBuffers(t *testing.T) {
	r, backend, c := setup(t)
	mb := triangle(c)
	mb.SetHardwareMappingHint(metadata.HardwareMappingStatic, metadata.BufferTypeVertexAndIndex)

	require.NoError(t, r.BeginScene())
	require.NoError(t, r.DrawMeshBuffer(mb))
	require.NoError(t, r.EndScene())

	require.NotNil(t, mb.VertexBuffer(0).HardwareBuffer())
	require.NotNil(t, mb.IndexBuffer().HardwareBuffer())
	assert.Equal(t, 2, backend.LiveBuffers())
	assert.Equal(t, uint64(2), backend.Stats().Uploads)
	assert.Zero(t, backend.Stats().ClientBytes)

	mb.VertexBuffer(0).Release()
	mb.IndexBuffer().Release()
	assert.Equal(t, 0, backend.LiveBuffers())
}

func TestNeverHintDrawsFromClientMemory(t *testing.T) {
	r, backend, c := setup(t)
	mb := triangle(c)

	require.NoError(t, r.BeginScene())
	require.NoError(t, r.DrawMeshBuffer(mb))
	require.NoError(t, r.EndScene())

	assert.Nil(t, mb.VertexBuffer(0).HardwareBuffer())
	assert.Equal(t, 0, backend.LiveBuffers())
	assert.Equal(t, uint64(3*36+3*2), backend.Stats().ClientBytes)
}

func TestIncompatibleMeshBufferIsSkipped(t *testing.T) {
	r, backend, c := setup(t)
	mb := triangle(c)
	mb.SetVertexDescriptor(c.Get("skin"))
	require.Equal(t, mesh.StateIncompatible, mb.State())

	require.NoError(t, r.BeginScene())
	assert.NoError(t, r.DrawMeshBuffer(mb))
	assert.NoError(t, r.DrawInstanced(triangle(c), 0))
	require.NoError(t, r.EndScene())

	assert.Equal(t, uint64(1), r.SkippedDraws())
	assert.Zero(t, backend.Stats().Draws)
}
