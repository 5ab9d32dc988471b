package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestExtentsGrow(t *testing.T) {
	e := NewExtents3D(mgl32.Vec3{0, 0, 0})
	assert.True(t, e.IsEmpty())

	e.AddInternalPoint(mgl32.Vec3{1, -2, 3})
	e.AddInternalPoint(mgl32.Vec3{-1, 2, 0})
	assert.Equal(t, mgl32.Vec3{-1, -2, 0}, e.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, e.Max)
	assert.Equal(t, mgl32.Vec3{0, 0, 1.5}, e.Center())
	assert.Equal(t, mgl32.Vec3{2, 4, 3}, e.Size())

	other := NewExtents3D(mgl32.Vec3{5, 5, 5})
	e.AddInternalBox(other)
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, e.Max)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 4, Clamp(9, 1, 4))
	assert.Equal(t, uint32(1), Clamp(uint32(0), 1, 4))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}

func TestColorRoundTrip(t *testing.T) {
	c := NewColor(255, 0, 128, 255)
	assert.Equal(t, c, ColorFromVec4(c.Vec4()))
	assert.Equal(t, Color{255, 0, 0, 0}, ColorFromVec4(mgl32.Vec4{2, -1, 0, 0}))
}

func TestTransformWorld(t *testing.T) {
	parent := TransformFromPosition(mgl32.Vec3{10, 0, 0})
	child := TransformFromPositionRotationScale(
		mgl32.Vec3{0, 1, 0},
		mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}),
		mgl32.Vec3{2, 2, 2},
	)
	child.Parent = parent

	p := child.GetWorld().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 10, p.X(), 1e-5)
	assert.InDelta(t, 3, p.Y(), 1e-5)
	assert.False(t, child.IsDirty)

	parent.Translate(mgl32.Vec3{0, 0, 5})
	assert.InDelta(t, 5, child.GetWorld().Col(3).Z(), 1e-5)

	var none *Transform
	assert.Equal(t, mgl32.Ident4(), none.GetWorld())
}
