package descriptor

import (
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

/**
 * @brief One named, semantically tagged field of a vertex layout. Attributes
 * are created by VertexDescriptor.AddAttribute and never change afterwards.
 */
type Attribute struct {
	name         string
	semantic     metadata.Semantic
	elementType  metadata.ElementType
	elementCount uint32
	offset       uint32
	bufferID     uint32
}

func (a *Attribute) Name() string {
	return a.name
}

func (a *Attribute) Semantic() metadata.Semantic {
	return a.semantic
}

func (a *Attribute) Type() metadata.ElementType {
	return a.elementType
}

// ElementCount is the number of components, 1 to 4.
func (a *Attribute) ElementCount() uint32 {
	return a.elementCount
}

// Offset is the byte offset of the attribute inside one element of its buffer.
func (a *Attribute) Offset() uint32 {
	return a.offset
}

// BufferID is the mesh buffer slot the attribute reads from.
func (a *Attribute) BufferID() uint32 {
	return a.bufferID
}

// Size is the number of bytes the attribute occupies.
func (a *Attribute) Size() uint32 {
	return a.elementType.Size() * a.elementCount
}
