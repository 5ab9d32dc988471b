package mesh

import (
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/math"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

/**
 * @brief Readiness of a mesh buffer for drawing.
 */
type State uint8

const (
	/** @brief No vertex buffer bound. */
	StateEmpty State = iota
	/** @brief Buffers are compatible but hold less than one primitive. */
	StateAssembling
	/** @brief Buffers match the descriptor and hold at least one primitive. */
	StateCompatible
	/** @brief A bound buffer does not match the descriptor. */
	StateIncompatible
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAssembling:
		return "assembling"
	case StateCompatible:
		return "compatible"
	case StateIncompatible:
		return "incompatible"
	}
	return "unknown"
}

/**
 * @brief A drawable unit: a vertex descriptor, the vertex buffers it reads
 * (by slot) and one index buffer. Vertex buffers and the descriptor are
 * shared, the index buffer belongs to the mesh buffer.
 */
type MeshBuffer struct {
	descriptor    *descriptor.VertexDescriptor
	vertexBuffers []buffer.VertexBuffer
	indexBuffer   *buffer.IndexBuffer

	primitiveType metadata.PrimitiveType
	material      *metadata.Material

	boundingBox                  math.Extents3D
	boundingBoxNeedsRecalculated bool
	vertexBufferCompatible       bool
}

// New creates a mesh buffer without vertex buffers.
func New(desc *descriptor.VertexDescriptor, indexType metadata.IndexType) *MeshBuffer {
	return &MeshBuffer{
		descriptor:    desc,
		indexBuffer:   buffer.NewIndexBuffer(indexType),
		primitiveType: metadata.PrimitiveTriangles,
	}
}

// NewWithVertexBuffer creates a mesh buffer with vb bound to slot 0.
func NewWithVertexBuffer(desc *descriptor.VertexDescriptor, vb buffer.VertexBuffer, indexType metadata.IndexType) *MeshBuffer {
	mb := New(desc, indexType)
	mb.AddVertexBuffer(vb)
	return mb
}

func (mb *MeshBuffer) VertexDescriptor() *descriptor.VertexDescriptor {
	return mb.descriptor
}

func (mb *MeshBuffer) SetVertexDescriptor(desc *descriptor.VertexDescriptor) {
	mb.descriptor = desc
	mb.UpdateCompatibility()
}

func (mb *MeshBuffer) VertexBufferCount() int {
	return len(mb.vertexBuffers)
}

// VertexBuffer returns the buffer bound to slot, or nil.
func (mb *MeshBuffer) VertexBuffer(slot int) buffer.VertexBuffer {
	if slot < 0 || slot >= len(mb.vertexBuffers) {
		return nil
	}
	return mb.vertexBuffers[slot]
}

// AddVertexBuffer binds vb to the next free slot.
func (mb *MeshBuffer) AddVertexBuffer(vb buffer.VertexBuffer) {
	if vb == nil {
		return
	}
	mb.vertexBuffers = append(mb.vertexBuffers, vb)
	if len(mb.vertexBuffers) == 1 {
		mb.boundingBoxNeedsRecalculated = true
	}
	mb.UpdateCompatibility()
}

// SetVertexBuffer rebinds an existing slot, or appends when slot is the
// next free one.
func (mb *MeshBuffer) SetVertexBuffer(vb buffer.VertexBuffer, slot int) bool {
	if vb == nil || slot < 0 || slot > len(mb.vertexBuffers) {
		core.LogWarn("mesh buffer: cannot bind vertex buffer to slot %d of %d", slot, len(mb.vertexBuffers))
		return false
	}
	if slot == len(mb.vertexBuffers) {
		mb.AddVertexBuffer(vb)
		return true
	}
	mb.vertexBuffers[slot] = vb
	if slot == 0 {
		mb.boundingBoxNeedsRecalculated = true
	}
	mb.UpdateCompatibility()
	return true
}

// RemoveVertexBuffer unbinds slot. Later slots move down by one.
func (mb *MeshBuffer) RemoveVertexBuffer(slot int) bool {
	if slot < 0 || slot >= len(mb.vertexBuffers) {
		return false
	}
	mb.vertexBuffers = append(mb.vertexBuffers[:slot], mb.vertexBuffers[slot+1:]...)
	if slot == 0 {
		mb.boundingBoxNeedsRecalculated = true
	}
	mb.UpdateCompatibility()
	return true
}

func (mb *MeshBuffer) IndexBuffer() *buffer.IndexBuffer {
	return mb.indexBuffer
}

func (mb *MeshBuffer) SetIndexBuffer(ib *buffer.IndexBuffer) {
	if ib == nil {
		return
	}
	mb.indexBuffer = ib
}

func (mb *MeshBuffer) VertexCount() int {
	if len(mb.vertexBuffers) == 0 {
		return 0
	}
	return mb.vertexBuffers[0].ElementCount()
}

func (mb *MeshBuffer) IndexCount() int {
	return mb.indexBuffer.ElementCount()
}

func (mb *MeshBuffer) PrimitiveType() metadata.PrimitiveType {
	return mb.primitiveType
}

func (mb *MeshBuffer) SetPrimitiveType(pt metadata.PrimitiveType) {
	mb.primitiveType = pt
}

// PrimitiveCount derives the primitive count from the index count and the
// topology. It is 0 for incompatible buffers. Callers must not ask before
// the topology's MinIndexCount is reached: the count is not clamped.
func (mb *MeshBuffer) PrimitiveCount() uint32 {
	if !mb.vertexBufferCompatible {
		return 0
	}
	return mb.primitiveType.PrimitiveCount(uint32(mb.IndexCount()))
}

func (mb *MeshBuffer) Material() *metadata.Material {
	return mb.material
}

func (mb *MeshBuffer) SetMaterial(m *metadata.Material) {
	mb.material = m
}

// VertexBufferCompatible reports whether every bound vertex buffer matches
// the descriptor's expectation for its slot.
func (mb *MeshBuffer) VertexBufferCompatible() bool {
	return mb.vertexBufferCompatible
}

func (mb *MeshBuffer) State() State {
	switch {
	case len(mb.vertexBuffers) == 0:
		return StateEmpty
	case !mb.vertexBufferCompatible:
		return StateIncompatible
	case mb.VertexCount() == 0 || uint32(mb.IndexCount()) < mb.primitiveType.MinIndexCount():
		return StateAssembling
	}
	return StateCompatible
}

// Drawable reports whether the mesh buffer can be handed to a backend.
func (mb *MeshBuffer) Drawable() bool {
	return mb.State() == StateCompatible && mb.PrimitiveCount() > 0
}

// SetHardwareMappingHint applies hint to the vertex buffers, the index
// buffer or both.
func (mb *MeshBuffer) SetHardwareMappingHint(hint metadata.HardwareMappingHint, bt metadata.BufferType) {
	if bt.HasVertex() {
		for _, vb := range mb.vertexBuffers {
			vb.SetHardwareMappingHint(hint)
		}
	}
	if bt.HasIndex() {
		mb.indexBuffer.SetHardwareMappingHint(hint)
	}
}

// SetDirty marks vertex buffer slot, the index buffer or both as changed.
// Dirtying slot 0 invalidates the bounding box.
func (mb *MeshBuffer) SetDirty(bt metadata.BufferType, slot int) {
	if bt.HasVertex() {
		if vb := mb.VertexBuffer(slot); vb != nil {
			vb.SetDirty()
			if slot == 0 {
				mb.boundingBoxNeedsRecalculated = true
			}
		}
	}
	if bt.HasIndex() {
		mb.indexBuffer.SetDirty()
	}
}

// BoundingBox returns the box around the positions of slot 0, recalculating
// it first when vertices changed.
func (mb *MeshBuffer) BoundingBox() math.Extents3D {
	if mb.boundingBoxNeedsRecalculated {
		mb.RecalculateBoundingBox()
	}
	return mb.boundingBox
}

// SetBoundingBox overrides the box until the next vertex change.
func (mb *MeshBuffer) SetBoundingBox(box math.Extents3D) {
	mb.boundingBox = box
	mb.boundingBoxNeedsRecalculated = false
}

func (mb *MeshBuffer) BoundingBoxNeedsRecalculated() bool {
	return mb.boundingBoxNeedsRecalculated
}

func (mb *MeshBuffer) RecalculateBoundingBox() {
	mb.boundingBoxNeedsRecalculated = false
	mb.boundingBox = math.Extents3D{}

	vb := mb.VertexBuffer(0)
	if vb == nil {
		return
	}
	first := true
	for i := 0; i < vb.ElementCount(); i++ {
		p, ok := vb.Position(i)
		if !ok {
			return
		}
		if first {
			mb.boundingBox.Reset(p)
			first = false
			continue
		}
		mb.boundingBox.AddInternalPoint(p)
	}
}

// Append concatenates vb and ib into the buffer bound to slot and the index
// buffer. Appended indices are offset by the previous vertex count of slot.
func (mb *MeshBuffer) Append(vb buffer.VertexBuffer, slot int, ib *buffer.IndexBuffer) bool {
	target := mb.VertexBuffer(slot)
	if target == nil || vb == nil {
		core.LogWarn("mesh buffer: append to unbound slot %d", slot)
		return false
	}
	if target.VertexType() != vb.VertexType() || target.ElementSize() != vb.ElementSize() {
		core.LogWarn("mesh buffer: cannot append %s vertices to %s buffer", vb.VertexType(), target.VertexType())
		return false
	}

	offset := uint32(target.ElementCount())
	if !target.AppendFrom(vb) {
		core.LogWarn("mesh buffer: vertex element types differ, append refused")
		return false
	}
	mb.SetDirty(metadata.BufferTypeVertex, slot)

	if ib == nil {
		return true
	}
	// ib may be mb's own index buffer; its count is read once.
	if n := ib.ElementCount(); n > 0 {
		mb.indexBuffer.Reallocate(mb.indexBuffer.ElementCount() + n)
		for i := 0; i < n; i++ {
			mb.indexBuffer.AddIndex(ib.Index(i) + offset)
		}
		mb.indexBuffer.SetDirty()
	}
	return true
}

// AppendMeshBuffer concatenates the geometry of other. Both must use the
// same vertex layout in slot 0.
func (mb *MeshBuffer) AppendMeshBuffer(other *MeshBuffer) bool {
	if other == nil || other == mb {
		return false
	}
	if !sameLayout(mb.descriptor, other.descriptor) {
		core.LogWarn("mesh buffer: descriptors differ, append refused")
		return false
	}
	return mb.Append(other.VertexBuffer(0), 0, other.indexBuffer)
}

func sameLayout(a, b *descriptor.VertexDescriptor) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	return a.VertexSize(0) == b.VertexSize(0) && a.VertexType(0) == b.VertexType(0)
}

// UpdateCompatibility re-evaluates the buffers against the descriptor. Bind
// operations call it; call it after rebuilding a shared descriptor.
func (mb *MeshBuffer) UpdateCompatibility() {
	mb.vertexBufferCompatible = mb.compatible()
}

func (mb *MeshBuffer) compatible() bool {
	d := mb.descriptor
	if d == nil || len(mb.vertexBuffers) == 0 {
		return false
	}
	if len(mb.vertexBuffers) > descriptor.MaxVertexBuffers || uint32(len(mb.vertexBuffers)) < d.BufferCount() {
		return false
	}
	for slot, vb := range mb.vertexBuffers {
		s := uint32(slot)
		if uint32(vb.ElementSize()) != d.VertexSize(s) {
			return false
		}
		if expected := d.VertexType(s); expected != metadata.VertexTypeUnknown && expected != vb.VertexType() {
			return false
		}
	}
	return true
}
