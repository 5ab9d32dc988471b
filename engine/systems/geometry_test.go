package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func creator() *GeometryCreator {
	c := descriptor.NewCatalog()
	c.RegisterDefaults()
	return NewGeometryCreator(c)
}

// assertFacesMatchNormals checks every triangle winds counter-clockwise
// around the stored vertex normal.
func assertFacesMatchNormals(t *testing.T, mb *mesh.MeshBuffer) {
	t.Helper()
	vb := mb.VertexBuffer(0).(*buffer.TypedVertexBuffer[buffer.Vertex])
	idx := mb.IndexBuffer().Indices()
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := vb.Get(int(idx[i])), vb.Get(int(idx[i+1])), vb.Get(int(idx[i+2]))
		n := b.Pos.Sub(a.Pos).Cross(c.Pos.Sub(a.Pos)).Normalize()
		assert.InDelta(t, 1, n.Dot(a.Normal), 1e-5, "triangle %d", i/3)
	}
}

func TestCreatePlane(t *testing.T) {
	mb := creator().CreatePlane(4, 2, 4, 2, 2, 1)
	assert.Equal(t, 4*2*4, mb.VertexCount())
	assert.Equal(t, 4*2*6, mb.IndexCount())
	assert.Equal(t, uint32(16), mb.PrimitiveCount())
	assert.Equal(t, mesh.StateCompatible, mb.State())
	assert.Equal(t, metadata.IndexType16Bit, mb.IndexBuffer().IndexType())
	assert.Equal(t, metadata.HardwareMappingStatic, mb.VertexBuffer(0).HardwareMappingHint())

	box := mb.BoundingBox()
	assert.Equal(t, mgl32.Vec3{-2, -1, 0}, box.Min)
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, box.Max)

	vb := mb.VertexBuffer(0).(*buffer.TypedVertexBuffer[buffer.Vertex])
	last := vb.Get(vb.ElementCount() - 3)
	assert.Equal(t, mgl32.Vec2{2, 1}, last.TCoords, "uvs repeat tileX times")
	assertFacesMatchNormals(t, mb)
}

func TestCreatePlaneDefaultsInvalidSizes(t *testing.T) {
	mb := creator().CreatePlane(0, 0, 0, 0, 0, 0)
	assert.Equal(t, 4, mb.VertexCount())
	box := mb.BoundingBox()
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, 0}, box.Min)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0}, box.Max)
}

func TestCreateCube(t *testing.T) {
	g := creator()
	g.SetHardwareMappingHint(metadata.HardwareMappingDynamic)
	mb := g.CreateCube(2, 4, 0)

	assert.Equal(t, 24, mb.VertexCount())
	assert.Equal(t, 36, mb.IndexCount())
	assert.Equal(t, uint32(12), mb.PrimitiveCount())
	assert.True(t, mb.Drawable())
	assert.Equal(t, metadata.HardwareMappingDynamic, mb.IndexBuffer().HardwareMappingHint())

	box := mb.BoundingBox()
	assert.Equal(t, mgl32.Vec3{-1, -2, -0.5}, box.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 0.5}, box.Max)
	assertFacesMatchNormals(t, mb)
}

func TestCubeConvertsToTangents(t *testing.T) {
	c := descriptor.NewCatalog()
	c.RegisterDefaults()
	mb := NewGeometryCreator(c).CreateCube(1, 1, 1)

	require.True(t, mesh.GenerateTangents(mb, c.GetByVertexType(metadata.VertexTypeTangents)))
	assert.Equal(t, metadata.VertexTypeTangents, mb.VertexBuffer(0).VertexType())
	assert.Equal(t, mesh.StateCompatible, mb.State())
}
