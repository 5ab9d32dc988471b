package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// GenerateNormals writes flat face normals into slot 0. Only triangle lists
// of standard or tangent vertices are supported.
func GenerateNormals(mb *MeshBuffer) bool {
	if mb.PrimitiveType() != metadata.PrimitiveTriangles {
		core.LogWarn("generate normals: %s topology is not supported", mb.PrimitiveType())
		return false
	}
	indices := mb.IndexBuffer().Indices()

	switch vb := mb.VertexBuffer(0).(type) {
	case *buffer.TypedVertexBuffer[buffer.Vertex]:
		verts := vb.Elements()
		forEachTriangle(indices, len(verts), func(i0, i1, i2 uint32) {
			n := faceNormal(verts[i0].Pos, verts[i1].Pos, verts[i2].Pos)
			verts[i0].Normal, verts[i1].Normal, verts[i2].Normal = n, n, n
		})
	case *buffer.TypedVertexBuffer[buffer.VertexTangents]:
		verts := vb.Elements()
		forEachTriangle(indices, len(verts), func(i0, i1, i2 uint32) {
			n := faceNormal(verts[i0].Pos, verts[i1].Pos, verts[i2].Pos)
			verts[i0].Normal, verts[i1].Normal, verts[i2].Normal = n, n, n
		})
	default:
		core.LogWarn("generate normals: unsupported vertex buffer in slot 0")
		return false
	}
	mb.SetDirty(metadata.BufferTypeVertex, 0)
	return true
}

// GenerateTangents computes per face tangents and binormals. A standard
// vertex buffer in slot 0 is converted to tangent vertices first, and the
// mesh buffer is switched to tangentDesc.
func GenerateTangents(mb *MeshBuffer, tangentDesc *descriptor.VertexDescriptor) bool {
	if mb.PrimitiveType() != metadata.PrimitiveTriangles {
		core.LogWarn("generate tangents: %s topology is not supported", mb.PrimitiveType())
		return false
	}
	src := mb.VertexBuffer(0)
	if src == nil {
		return false
	}
	if src.VertexType() != metadata.VertexTypeTangents {
		converted := buffer.ConvertVertexBuffer(src, metadata.VertexTypeTangents)
		if converted == nil {
			core.LogWarn("generate tangents: cannot convert %s vertices", src.VertexType())
			return false
		}
		src = converted
	}
	vb, ok := src.(*buffer.TypedVertexBuffer[buffer.VertexTangents])
	if !ok {
		return false
	}

	verts := vb.Elements()
	forEachTriangle(mb.IndexBuffer().Indices(), len(verts), func(i0, i1, i2 uint32) {
		v0, v1, v2 := &verts[i0], &verts[i1], &verts[i2]
		edge1 := v1.Pos.Sub(v0.Pos)
		edge2 := v2.Pos.Sub(v0.Pos)

		deltaU1 := v1.TCoords.X() - v0.TCoords.X()
		deltaV1 := v1.TCoords.Y() - v0.TCoords.Y()
		deltaU2 := v2.TCoords.X() - v0.TCoords.X()
		deltaV2 := v2.TCoords.Y() - v0.TCoords.Y()

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if dividend == 0 {
			return
		}
		fc := 1.0 / dividend
		tangent := edge1.Mul(deltaV2).Sub(edge2.Mul(deltaV1)).Mul(fc)
		bitangent := edge2.Mul(deltaU1).Sub(edge1.Mul(deltaU2)).Mul(fc)
		if tangent.Len() == 0 {
			return
		}
		tangent = tangent.Normalize()

		for _, v := range []*buffer.VertexTangents{v0, v1, v2} {
			b := v.Normal.Cross(tangent)
			if b.Dot(bitangent) < 0.0 {
				b = b.Mul(-1.0)
			}
			v.Tangent = tangent
			v.Binormal = b
		}
	})

	vb.SetDirty()
	mb.SetVertexBuffer(vb, 0)
	if tangentDesc != nil {
		mb.SetVertexDescriptor(tangentDesc)
	}
	return true
}

func faceNormal(p0, p1, p2 mgl32.Vec3) mgl32.Vec3 {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}

// forEachTriangle skips triangles referencing vertices past vertexCount.
func forEachTriangle(indices []uint32, vertexCount int, fn func(i0, i1, i2 uint32)) {
	n := uint32(vertexCount)
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		fn(i0, i1, i2)
	}
}
