package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

/**
 * @brief Represents the extents of a 3d object, an axis aligned box.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min mgl32.Vec3
	/** @brief The maximum extents of the object. */
	Max mgl32.Vec3
}

// NewExtents3D returns a box containing exactly p.
func NewExtents3D(p mgl32.Vec3) Extents3D {
	return Extents3D{Min: p, Max: p}
}

// Reset collapses the box onto p.
func (e *Extents3D) Reset(p mgl32.Vec3) {
	e.Min = p
	e.Max = p
}

// AddInternalPoint grows the box so it contains p.
func (e *Extents3D) AddInternalPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < e.Min[i] {
			e.Min[i] = p[i]
		}
		if p[i] > e.Max[i] {
			e.Max[i] = p[i]
		}
	}
}

// AddInternalBox grows the box so it contains other.
func (e *Extents3D) AddInternalBox(other Extents3D) {
	e.AddInternalPoint(other.Min)
	e.AddInternalPoint(other.Max)
}

func (e Extents3D) Center() mgl32.Vec3 {
	return e.Min.Add(e.Max).Mul(0.5)
}

func (e Extents3D) Size() mgl32.Vec3 {
	return e.Max.Sub(e.Min)
}

func (e Extents3D) IsEmpty() bool {
	return e.Min == e.Max
}
