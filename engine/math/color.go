package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Color is a packed 8 bit per channel RGBA color, the layout vertex color
// attributes use on the GPU.
type Color [4]uint8

func NewColor(r, g, b, a uint8) Color {
	return Color{r, g, b, a}
}

var ColorWhite = Color{255, 255, 255, 255}

// Vec4 converts to normalized floats.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{
		float32(c[0]) / 255.0,
		float32(c[1]) / 255.0,
		float32(c[2]) / 255.0,
		float32(c[3]) / 255.0,
	}
}

// ColorFromVec4 packs normalized floats, clamping each channel to [0,1].
func ColorFromVec4(v mgl32.Vec4) Color {
	var c Color
	for i := 0; i < 4; i++ {
		c[i] = uint8(Clamp(v[i], 0, 1)*255.0 + 0.5)
	}
	return c
}
