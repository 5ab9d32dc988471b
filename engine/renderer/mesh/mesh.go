package mesh

import (
	"github.com/spaghettifunk/anima-buffers/engine/math"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

/**
 * @brief An ordered list of mesh buffers drawn together, e.g. the primitives
 * of an imported model.
 */
type Mesh struct {
	Name string

	buffers     []*MeshBuffer
	boundingBox math.Extents3D
}

func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

func (m *Mesh) AddMeshBuffer(mb *MeshBuffer) {
	if mb == nil {
		return
	}
	m.buffers = append(m.buffers, mb)
}

func (m *Mesh) MeshBufferCount() int {
	return len(m.buffers)
}

func (m *Mesh) MeshBuffer(i int) *MeshBuffer {
	if i < 0 || i >= len(m.buffers) {
		return nil
	}
	return m.buffers[i]
}

func (m *Mesh) MeshBuffers() []*MeshBuffer {
	return m.buffers
}

// RecalculateBoundingBox unions the boxes of every mesh buffer.
func (m *Mesh) RecalculateBoundingBox() {
	m.boundingBox = math.Extents3D{}
	for i, mb := range m.buffers {
		if i == 0 {
			m.boundingBox = mb.BoundingBox()
			continue
		}
		m.boundingBox.AddInternalBox(mb.BoundingBox())
	}
}

func (m *Mesh) BoundingBox() math.Extents3D {
	return m.boundingBox
}

func (m *Mesh) SetHardwareMappingHint(hint metadata.HardwareMappingHint, bt metadata.BufferType) {
	for _, mb := range m.buffers {
		mb.SetHardwareMappingHint(hint, bt)
	}
}

// SetDirty marks slot 0 and/or the indices of every mesh buffer as changed.
func (m *Mesh) SetDirty(bt metadata.BufferType) {
	for _, mb := range m.buffers {
		mb.SetDirty(bt, 0)
	}
}

func (m *Mesh) SetMaterial(mat *metadata.Material) {
	for _, mb := range m.buffers {
		mb.SetMaterial(mat)
	}
}
