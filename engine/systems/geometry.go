package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/math"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

/**
 * @brief Builds procedural mesh buffers using the catalog's standard
 * descriptor. Every quad is split into two counter-clockwise triangles.
 */
type GeometryCreator struct {
	catalog *descriptor.Catalog
	hint    metadata.HardwareMappingHint
}

func NewGeometryCreator(catalog *descriptor.Catalog) *GeometryCreator {
	return &GeometryCreator{
		catalog: catalog,
		hint:    metadata.HardwareMappingStatic,
	}
}

// SetHardwareMappingHint changes the hint given to buffers created afterwards.
func (g *GeometryCreator) SetHardwareMappingHint(hint metadata.HardwareMappingHint) {
	g.hint = hint
}

// CreatePlane builds a width x height plane in the XY plane facing +Z, split
// into xSegmentCount x ySegmentCount quads. Texture coordinates repeat
// tileX and tileY times.
func (g *GeometryCreator) CreatePlane(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32) *mesh.MeshBuffer {
	width = nonZero(width, "Width")
	height = nonZero(height, "Height")
	tileX = nonZero(tileX, "tileX")
	tileY = nonZero(tileY, "tileY")
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}

	quads := int(xSegmentCount * ySegmentCount)
	vb := buffer.NewTypedVertexBuffer[buffer.Vertex](metadata.VertexTypeStandard)
	vb.SetUsed(quads * 4)
	verts := vb.Elements()
	indices := make([]uint32, 0, quads*6)

	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	normal := mgl32.Vec3{0, 0, 1}
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := (float32(x) * segWidth) - halfWidth
			minY := (float32(y) * segHeight) - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minUVX := (float32(x) / float32(xSegmentCount)) * tileX
			minUVY := (float32(y) / float32(ySegmentCount)) * tileY
			maxUVX := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxUVY := (float32(y+1) / float32(ySegmentCount)) * tileY

			vOffset := ((y * xSegmentCount) + x) * 4
			verts[vOffset+0] = vertex(mgl32.Vec3{minX, minY, 0}, normal, mgl32.Vec2{minUVX, minUVY})
			verts[vOffset+1] = vertex(mgl32.Vec3{maxX, maxY, 0}, normal, mgl32.Vec2{maxUVX, maxUVY})
			verts[vOffset+2] = vertex(mgl32.Vec3{minX, maxY, 0}, normal, mgl32.Vec2{minUVX, maxUVY})
			verts[vOffset+3] = vertex(mgl32.Vec3{maxX, minY, 0}, normal, mgl32.Vec2{maxUVX, minUVY})
			indices = appendQuad(indices, vOffset)
		}
	}
	return g.finish(vb, indices)
}

// cube corners per face, as signs of the half extents, in quad order.
var cubeFaces = [6]struct {
	normal  mgl32.Vec3
	corners [4]mgl32.Vec3
}{
	{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-1, -1, 1}, {1, 1, 1}, {-1, 1, 1}, {1, -1, 1}}},       // front
	{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {-1, -1, -1}}},  // back
	{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-1, -1, -1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}}},  // left
	{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{1, -1, 1}, {1, 1, -1}, {1, 1, 1}, {1, -1, -1}}},       // right
	{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {-1, -1, 1}}},  // bottom
	{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {1, 1, 1}}},       // top
}

var quadUVs = [4]mgl32.Vec2{{0, 0}, {1, 1}, {0, 1}, {1, 0}}

// CreateCube builds a box centered on the origin with four vertices per face
// so every face keeps its own normal.
func (g *GeometryCreator) CreateCube(width, height, depth float32) *mesh.MeshBuffer {
	half := mgl32.Vec3{
		nonZero(width, "Width") * 0.5,
		nonZero(height, "Height") * 0.5,
		nonZero(depth, "Depth") * 0.5,
	}

	vb := buffer.NewTypedVertexBuffer[buffer.Vertex](metadata.VertexTypeStandard)
	vb.Reallocate(len(cubeFaces) * 4)
	indices := make([]uint32, 0, len(cubeFaces)*6)
	for _, face := range cubeFaces {
		offset := uint32(vb.ElementCount())
		for i, c := range face.corners {
			pos := mgl32.Vec3{c[0] * half[0], c[1] * half[1], c[2] * half[2]}
			vb.Add(vertex(pos, face.normal, quadUVs[i]))
		}
		indices = appendQuad(indices, offset)
	}
	return g.finish(vb, indices)
}

func (g *GeometryCreator) finish(vb *buffer.TypedVertexBuffer[buffer.Vertex], indices []uint32) *mesh.MeshBuffer {
	desc := g.catalog.GetByVertexType(metadata.VertexTypeStandard)
	if desc == nil {
		core.LogError("geometry creator: catalog has no standard descriptor")
	}
	indexType := metadata.IndexType16Bit
	if vb.ElementCount() > 0x10000 {
		indexType = metadata.IndexType32Bit
	}
	mb := mesh.NewWithVertexBuffer(desc, vb, indexType)
	mb.IndexBuffer().SetIndices(indices)
	mb.SetHardwareMappingHint(g.hint, metadata.BufferTypeVertexAndIndex)
	mb.RecalculateBoundingBox()
	return mb
}

func vertex(pos, normal mgl32.Vec3, uv mgl32.Vec2) buffer.Vertex {
	return buffer.Vertex{Pos: pos, Normal: normal, Color: math.ColorWhite, TCoords: uv}
}

func appendQuad(indices []uint32, offset uint32) []uint32 {
	return append(indices, offset+0, offset+1, offset+2, offset+0, offset+3, offset+1)
}

func nonZero(v float32, name string) float32 {
	if v == 0 {
		core.LogWarn("%s must be nonzero. Defaulting to one.", name)
		return 1
	}
	return v
}
