package metadata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveCount(t *testing.T) {
	cases := []struct {
		pt    PrimitiveType
		count uint32
		want  uint32
	}{
		{PrimitiveTriangles, 9, 3},
		{PrimitiveTriangleStrip, 5, 3},
		{PrimitiveTriangleFan, 5, 3},
		{PrimitiveLines, 6, 3},
		{PrimitiveLineStrip, 4, 3},
		{PrimitiveLineLoop, 4, 4},
		{PrimitivePoints, 7, 7},
		{PrimitivePointSprites, 7, 7},
	}
	for _, c := range cases {
		t.Run(c.pt.String(), func(t *testing.T) {
			assert.Equal(t, c.want, c.pt.PrimitiveCount(c.count))
		})
	}
}

func TestMinIndexCountGuardsUnderflow(t *testing.T) {
	assert.Equal(t, uint32(2), PrimitiveLineStrip.MinIndexCount())
	assert.Equal(t, uint32(3), PrimitiveTriangleStrip.MinIndexCount())
	assert.Equal(t, uint32(1), PrimitivePoints.MinIndexCount())

	for _, pt := range []PrimitiveType{PrimitiveLineStrip, PrimitiveTriangleStrip, PrimitiveTriangles, PrimitiveLines} {
		assert.Greater(t, pt.PrimitiveCount(pt.MinIndexCount()), uint32(0), pt.String())
	}
}

func TestElementTypeSizes(t *testing.T) {
	assert.Equal(t, uint32(1), ElementUByte.Size())
	assert.Equal(t, uint32(2), ElementShort.Size())
	assert.Equal(t, uint32(4), ElementFloat.Size())
	assert.Equal(t, uint32(8), ElementDouble.Size())
	assert.Equal(t, uint32(0), ElementTypeCount.Size())
}

func TestParseNames(t *testing.T) {
	s, err := ParseSemantic("TexCoord3")
	require.NoError(t, err)
	assert.Equal(t, SemanticTexCoord3, s)
	assert.Equal(t, TexCoord(3), s)

	et, err := ParseElementType(" float ")
	require.NoError(t, err)
	assert.Equal(t, ElementFloat, et)

	vt, err := ParseVertexType("skin_tangents")
	require.NoError(t, err)
	assert.Equal(t, VertexTypeSkinTangents, vt)

	r, err := ParseStepRate("instance")
	require.NoError(t, err)
	assert.Equal(t, StepPerInstance, r)

	_, err = ParseSemantic("uv")
	assert.Error(t, err)
	_, err = ParseElementType("half")
	assert.Error(t, err)
}

func TestMaterialParams(t *testing.T) {
	m := NewMaterial("rock", "standard")
	m.SetParam(1, mgl32.Vec4{1, 2, 3, 4})
	m.SetParam(MaxMaterialParams, mgl32.Vec4{9, 9, 9, 9})

	assert.Equal(t, mgl32.Vec4{1, 2, 3, 4}, m.Param(1))
	assert.Equal(t, mgl32.Vec4{}, m.Param(-1))
	assert.Equal(t, uint32(1), m.Generation)

	var none *Material
	assert.Equal(t, mgl32.Vec4{}, none.Param(0))
}
