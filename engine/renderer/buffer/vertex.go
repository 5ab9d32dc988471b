package buffer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima-buffers/engine/math"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

/**
 * @brief The standard vertex: position, normal, packed color and one
 * texture coordinate. 36 bytes.
 */
type Vertex struct {
	Pos     mgl32.Vec3
	Normal  mgl32.Vec3
	Color   math.Color
	TCoords mgl32.Vec2
}

/**
 * @brief Standard vertex with a second texture coordinate (lightmaps). 44 bytes.
 */
type Vertex2TCoords struct {
	Pos      mgl32.Vec3
	Normal   mgl32.Vec3
	Color    math.Color
	TCoords  mgl32.Vec2
	TCoords2 mgl32.Vec2
}

/**
 * @brief Standard vertex with tangent space for normal mapping. 60 bytes.
 */
type VertexTangents struct {
	Pos      mgl32.Vec3
	Normal   mgl32.Vec3
	Color    math.Color
	TCoords  mgl32.Vec2
	Tangent  mgl32.Vec3
	Binormal mgl32.Vec3
}

/**
 * @brief Standard vertex with four bone influences. 68 bytes.
 */
type VertexSkin struct {
	Pos        mgl32.Vec3
	Normal     mgl32.Vec3
	Color      math.Color
	TCoords    mgl32.Vec2
	BoneIndex  mgl32.Vec4
	BoneWeight mgl32.Vec4
}

/**
 * @brief Two texture coordinates plus tangent space. 68 bytes.
 */
type Vertex2TCoordsTangents struct {
	Pos      mgl32.Vec3
	Normal   mgl32.Vec3
	Color    math.Color
	TCoords  mgl32.Vec2
	TCoords2 mgl32.Vec2
	Tangent  mgl32.Vec3
	Binormal mgl32.Vec3
}

/**
 * @brief Tangent space plus four bone influences. 92 bytes.
 */
type VertexSkinTangents struct {
	Pos        mgl32.Vec3
	Normal     mgl32.Vec3
	Color      math.Color
	TCoords    mgl32.Vec2
	Tangent    mgl32.Vec3
	Binormal   mgl32.Vec3
	BoneIndex  mgl32.Vec4
	BoneWeight mgl32.Vec4
}

// fullVertex is the union of every vertex field, used to move data between
// shapes.
type fullVertex struct {
	Pos        mgl32.Vec3
	Normal     mgl32.Vec3
	Color      math.Color
	TCoords    mgl32.Vec2
	TCoords2   mgl32.Vec2
	Tangent    mgl32.Vec3
	Binormal   mgl32.Vec3
	BoneIndex  mgl32.Vec4
	BoneWeight mgl32.Vec4
}

type positioned interface {
	VertexPosition() mgl32.Vec3
}

type convertible interface {
	toFull() fullVertex
	fromFull(f fullVertex)
}

func (v Vertex) VertexPosition() mgl32.Vec3                 { return v.Pos }
func (v Vertex2TCoords) VertexPosition() mgl32.Vec3         { return v.Pos }
func (v VertexTangents) VertexPosition() mgl32.Vec3         { return v.Pos }
func (v VertexSkin) VertexPosition() mgl32.Vec3             { return v.Pos }
func (v Vertex2TCoordsTangents) VertexPosition() mgl32.Vec3 { return v.Pos }
func (v VertexSkinTangents) VertexPosition() mgl32.Vec3     { return v.Pos }

func (v Vertex) toFull() fullVertex {
	return fullVertex{Pos: v.Pos, Normal: v.Normal, Color: v.Color, TCoords: v.TCoords}
}

func (v *Vertex) fromFull(f fullVertex) {
	*v = Vertex{Pos: f.Pos, Normal: f.Normal, Color: f.Color, TCoords: f.TCoords}
}

func (v Vertex2TCoords) toFull() fullVertex {
	return fullVertex{Pos: v.Pos, Normal: v.Normal, Color: v.Color, TCoords: v.TCoords, TCoords2: v.TCoords2}
}

func (v *Vertex2TCoords) fromFull(f fullVertex) {
	*v = Vertex2TCoords{Pos: f.Pos, Normal: f.Normal, Color: f.Color, TCoords: f.TCoords, TCoords2: f.TCoords2}
}

func (v VertexTangents) toFull() fullVertex {
	return fullVertex{Pos: v.Pos, Normal: v.Normal, Color: v.Color, TCoords: v.TCoords, Tangent: v.Tangent, Binormal: v.Binormal}
}

func (v *VertexTangents) fromFull(f fullVertex) {
	*v = VertexTangents{Pos: f.Pos, Normal: f.Normal, Color: f.Color, TCoords: f.TCoords, Tangent: f.Tangent, Binormal: f.Binormal}
}

func (v VertexSkin) toFull() fullVertex {
	return fullVertex{Pos: v.Pos, Normal: v.Normal, Color: v.Color, TCoords: v.TCoords, BoneIndex: v.BoneIndex, BoneWeight: v.BoneWeight}
}

func (v *VertexSkin) fromFull(f fullVertex) {
	*v = VertexSkin{Pos: f.Pos, Normal: f.Normal, Color: f.Color, TCoords: f.TCoords, BoneIndex: f.BoneIndex, BoneWeight: f.BoneWeight}
}

func (v Vertex2TCoordsTangents) toFull() fullVertex {
	return fullVertex{Pos: v.Pos, Normal: v.Normal, Color: v.Color, TCoords: v.TCoords, TCoords2: v.TCoords2, Tangent: v.Tangent, Binormal: v.Binormal}
}

func (v *Vertex2TCoordsTangents) fromFull(f fullVertex) {
	*v = Vertex2TCoordsTangents{Pos: f.Pos, Normal: f.Normal, Color: f.Color, TCoords: f.TCoords, TCoords2: f.TCoords2, Tangent: f.Tangent, Binormal: f.Binormal}
}

func (v VertexSkinTangents) toFull() fullVertex {
	return fullVertex{Pos: v.Pos, Normal: v.Normal, Color: v.Color, TCoords: v.TCoords, Tangent: v.Tangent, Binormal: v.Binormal, BoneIndex: v.BoneIndex, BoneWeight: v.BoneWeight}
}

func (v *VertexSkinTangents) fromFull(f fullVertex) {
	*v = VertexSkinTangents{Pos: f.Pos, Normal: f.Normal, Color: f.Color, TCoords: f.TCoords, Tangent: f.Tangent, Binormal: f.Binormal, BoneIndex: f.BoneIndex, BoneWeight: f.BoneWeight}
}

// NewVertexBuffer creates the buffer for one of the built-in vertex shapes.
// It returns nil for VertexTypeUnknown and VertexTypeCustom; custom payloads
// are created with NewTypedVertexBuffer.
func NewVertexBuffer(vt metadata.VertexType) VertexBuffer {
	switch vt {
	case metadata.VertexTypeStandard:
		return NewTypedVertexBuffer[Vertex](vt)
	case metadata.VertexType2TCoords:
		return NewTypedVertexBuffer[Vertex2TCoords](vt)
	case metadata.VertexTypeTangents:
		return NewTypedVertexBuffer[VertexTangents](vt)
	case metadata.VertexTypeSkin:
		return NewTypedVertexBuffer[VertexSkin](vt)
	case metadata.VertexType2TCoordsTangents:
		return NewTypedVertexBuffer[Vertex2TCoordsTangents](vt)
	case metadata.VertexTypeSkinTangents:
		return NewTypedVertexBuffer[VertexSkinTangents](vt)
	}
	return nil
}

// ConvertVertexBuffer builds a buffer of shape vt holding src's vertices.
// Fields both shapes share are copied, the others are zero. The hint is kept
// and the result is dirty. Returns nil when either side is not a built-in
// shape.
func ConvertVertexBuffer(src VertexBuffer, vt metadata.VertexType) VertexBuffer {
	from, ok := src.(fullSource)
	if !ok || !from.convertible() {
		return nil
	}
	dst := NewVertexBuffer(vt)
	if dst == nil {
		return nil
	}
	to, ok := dst.(fullSink)
	if !ok {
		return nil
	}
	dst.Reallocate(src.ElementCount())
	for i := 0; i < src.ElementCount(); i++ {
		f, ok := from.fullAt(i)
		if !ok {
			return nil
		}
		to.addFull(f)
	}
	dst.SetHardwareMappingHint(src.HardwareMappingHint())
	dst.SetDirty()
	return dst
}
