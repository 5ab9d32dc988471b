package descriptor

import (
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/math"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// MaxVertexBuffers is the number of buffer slots a descriptor can address.
const MaxVertexBuffers = 8

const noAttribute = -1

/**
 * @brief Describes how the bytes of one or more vertex buffers map to shader
 * inputs. Descriptors are shared by name through a Catalog and must not be
 * rebuilt while a mesh buffer draws with them.
 */
type VertexDescriptor struct {
	id   uint32
	name string

	attributes    []*Attribute
	semanticIndex [metadata.SemanticCount]int
	strides       [MaxVertexBuffers]uint32
	stepRates     [MaxVertexBuffers]metadata.StepRate
	vertexTypes   [MaxVertexBuffers]metadata.VertexType

	// bumped on every ClearAttribute
	generation uint32
}

// NewVertexDescriptor creates an empty descriptor. Most callers go through
// Catalog.Add instead.
func NewVertexDescriptor(name string, id uint32) *VertexDescriptor {
	d := &VertexDescriptor{id: id, name: name}
	d.ClearAttribute()
	return d
}

func (d *VertexDescriptor) ID() uint32 {
	return d.id
}

func (d *VertexDescriptor) Name() string {
	return d.name
}

// Generation changes each time the descriptor is cleared for a rebuild.
func (d *VertexDescriptor) Generation() uint32 {
	return d.generation
}

// AddAttribute appends an attribute to buffer slot bufferID at the slot's
// current stride. An attribute with the same name, or the same semantic
// unless it is SemanticCustom, is returned instead of adding a duplicate.
// Returns nil when bufferID is out of range.
func (d *VertexDescriptor) AddAttribute(name string, elementCount uint32, semantic metadata.Semantic, elementType metadata.ElementType, bufferID uint32) *Attribute {
	if bufferID >= MaxVertexBuffers {
		core.LogWarn("descriptor %s: buffer id %d for attribute %s exceeds %d slots", d.name, bufferID, name, MaxVertexBuffers)
		return nil
	}
	if semantic >= metadata.SemanticCount || elementType >= metadata.ElementTypeCount {
		core.LogWarn("descriptor %s: attribute %s has an invalid semantic or type", d.name, name)
		return nil
	}

	for _, a := range d.attributes {
		if a.name == name {
			return a
		}
	}
	if semantic != metadata.SemanticCustom {
		if i := d.semanticIndex[semantic]; i != noAttribute {
			return d.attributes[i]
		}
	}

	a := &Attribute{
		name:         name,
		semantic:     semantic,
		elementType:  elementType,
		elementCount: math.Clamp(elementCount, 1, 4),
		offset:       d.strides[bufferID],
		bufferID:     bufferID,
	}
	d.strides[bufferID] += a.Size()

	if semantic != metadata.SemanticCustom {
		d.semanticIndex[semantic] = len(d.attributes)
	}
	d.attributes = append(d.attributes, a)
	return a
}

// Attribute returns attribute i. The index is only checked in debug builds.
func (d *VertexDescriptor) Attribute(i int) *Attribute {
	if core.AssertionsEnabled {
		core.Assert(i >= 0 && i < len(d.attributes), "descriptor %s: attribute %d out of range", d.name, i)
	}
	return d.attributes[i]
}

func (d *VertexDescriptor) AttributeCount() int {
	return len(d.attributes)
}

// AttributeBySemantic returns the attribute bound to s, or nil.
func (d *VertexDescriptor) AttributeBySemantic(s metadata.Semantic) *Attribute {
	if s >= metadata.SemanticCount {
		return nil
	}
	i := d.semanticIndex[s]
	if i == noAttribute {
		return nil
	}
	return d.attributes[i]
}

// AttributeByName returns the attribute called name, or nil.
func (d *VertexDescriptor) AttributeByName(name string) *Attribute {
	for _, a := range d.attributes {
		if a.name == name {
			return a
		}
	}
	return nil
}

// VertexSize returns the stride of buffer slot bufferID. The slot is only
// checked in debug builds.
func (d *VertexDescriptor) VertexSize(bufferID uint32) uint32 {
	if core.AssertionsEnabled {
		core.Assert(bufferID < MaxVertexBuffers, "descriptor %s: buffer id %d out of range", d.name, bufferID)
	}
	return d.strides[bufferID]
}

// BufferCount is one past the highest slot any attribute reads from.
func (d *VertexDescriptor) BufferCount() uint32 {
	var n uint32
	for _, a := range d.attributes {
		if a.bufferID+1 > n {
			n = a.bufferID + 1
		}
	}
	return n
}

func (d *VertexDescriptor) SetInstanceDataStepRate(rate metadata.StepRate, bufferID uint32) {
	if bufferID >= MaxVertexBuffers {
		core.LogWarn("descriptor %s: step rate for buffer id %d ignored", d.name, bufferID)
		return
	}
	d.stepRates[bufferID] = rate
}

func (d *VertexDescriptor) InstanceDataStepRate(bufferID uint32) metadata.StepRate {
	if core.AssertionsEnabled {
		core.Assert(bufferID < MaxVertexBuffers, "descriptor %s: buffer id %d out of range", d.name, bufferID)
	}
	return d.stepRates[bufferID]
}

// SetVertexType records the vertex shape a mesh buffer must bind in slot
// bufferID. VertexTypeUnknown accepts any shape with the right stride.
func (d *VertexDescriptor) SetVertexType(bufferID uint32, vt metadata.VertexType) {
	if bufferID >= MaxVertexBuffers {
		core.LogWarn("descriptor %s: vertex type for buffer id %d ignored", d.name, bufferID)
		return
	}
	d.vertexTypes[bufferID] = vt
}

func (d *VertexDescriptor) VertexType(bufferID uint32) metadata.VertexType {
	if bufferID >= MaxVertexBuffers {
		return metadata.VertexTypeUnknown
	}
	return d.vertexTypes[bufferID]
}

// ClearAttribute resets the descriptor so it can be rebuilt. Mesh buffers
// hold a reference, not a copy, so none may be drawing with it.
func (d *VertexDescriptor) ClearAttribute() {
	d.attributes = d.attributes[:0]
	for i := range d.semanticIndex {
		d.semanticIndex[i] = noAttribute
	}
	d.strides = [MaxVertexBuffers]uint32{}
	d.stepRates = [MaxVertexBuffers]metadata.StepRate{}
	d.vertexTypes = [MaxVertexBuffers]metadata.VertexType{}
	d.generation++
}

// CopyAttributes adds every attribute of src, keeping names, semantics and
// slots. Step rates and vertex types of the slots are copied too.
func (d *VertexDescriptor) CopyAttributes(src *VertexDescriptor) {
	for _, a := range src.attributes {
		d.AddAttribute(a.name, a.elementCount, a.semantic, a.elementType, a.bufferID)
	}
	for b := uint32(0); b < MaxVertexBuffers; b++ {
		if src.stepRates[b] != metadata.StepPerVertex {
			d.stepRates[b] = src.stepRates[b]
		}
		if src.vertexTypes[b] != metadata.VertexTypeUnknown {
			d.vertexTypes[b] = src.vertexTypes[b]
		}
	}
}
