package metadata

/**
 * @brief Hint telling the backend how a buffer's GPU memory is expected to
 * be updated.
 */
type HardwareMappingHint uint8

const (
	/** @brief Never upload, the buffer is drawn from client memory. */
	HardwareMappingNever HardwareMappingHint = iota
	/** @brief Uploaded once, rarely changed. */
	HardwareMappingStatic
	/** @brief Changed now and then. */
	HardwareMappingDynamic
	/** @brief Rewritten every frame (instancing data). */
	HardwareMappingStream
)

func (h HardwareMappingHint) String() string {
	switch h {
	case HardwareMappingNever:
		return "never"
	case HardwareMappingStatic:
		return "static"
	case HardwareMappingDynamic:
		return "dynamic"
	case HardwareMappingStream:
		return "stream"
	default:
		return "unknown"
	}
}

/**
 * @brief Selects which part of a mesh buffer an operation targets.
 */
type BufferType uint8

const (
	BufferTypeNone BufferType = iota
	BufferTypeVertex
	BufferTypeIndex
	BufferTypeVertexAndIndex
)

// HasVertex reports whether the selection includes vertex data.
func (b BufferType) HasVertex() bool {
	return b == BufferTypeVertex || b == BufferTypeVertexAndIndex
}

// HasIndex reports whether the selection includes index data.
func (b BufferType) HasIndex() bool {
	return b == BufferTypeIndex || b == BufferTypeVertexAndIndex
}

/**
 * @brief Width of the values stored in an index buffer.
 */
type IndexType uint8

const (
	IndexType16Bit IndexType = iota
	IndexType32Bit
)

// Size returns the size of one index in bytes.
func (t IndexType) Size() int {
	if t == IndexType16Bit {
		return 2
	}
	return 4
}

func (t IndexType) String() string {
	if t == IndexType16Bit {
		return "16bit"
	}
	return "32bit"
}
