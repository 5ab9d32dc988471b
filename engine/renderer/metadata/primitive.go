package metadata

/**
 * @brief Topology used to assemble indices into primitives.
 */
type PrimitiveType uint8

const (
	PrimitivePoints PrimitiveType = iota
	PrimitiveLineStrip
	PrimitiveLineLoop
	PrimitiveLines
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
	PrimitiveTriangles
	PrimitivePointSprites
)

func (p PrimitiveType) String() string {
	switch p {
	case PrimitivePoints:
		return "points"
	case PrimitiveLineStrip:
		return "line_strip"
	case PrimitiveLineLoop:
		return "line_loop"
	case PrimitiveLines:
		return "lines"
	case PrimitiveTriangleStrip:
		return "triangle_strip"
	case PrimitiveTriangleFan:
		return "triangle_fan"
	case PrimitiveTriangles:
		return "triangles"
	case PrimitivePointSprites:
		return "point_sprites"
	default:
		return "unknown"
	}
}

// MinIndexCount returns the fewest indices that form one primitive of the
// topology.
func (p PrimitiveType) MinIndexCount() uint32 {
	switch p {
	case PrimitiveLineStrip, PrimitiveLineLoop, PrimitiveLines:
		return 2
	case PrimitiveTriangleStrip, PrimitiveTriangleFan, PrimitiveTriangles:
		return 3
	default:
		return 1
	}
}

// PrimitiveCount derives the primitive count from an index count. There is
// no clamping: an index count below MinIndexCount wraps around.
func (p PrimitiveType) PrimitiveCount(indexCount uint32) uint32 {
	switch p {
	case PrimitivePoints, PrimitivePointSprites:
		return indexCount
	case PrimitiveLineStrip:
		return indexCount - 1
	case PrimitiveLineLoop:
		return indexCount
	case PrimitiveLines:
		return indexCount / 2
	case PrimitiveTriangleStrip, PrimitiveTriangleFan:
		return indexCount - 2
	case PrimitiveTriangles:
		return indexCount / 3
	}
	return 0
}
