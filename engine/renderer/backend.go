package renderer

import (
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// RendererBackend is what a graphics API implementation offers the
// renderer front end.
type RendererBackend interface {
	Name() string
	Initialize() error
	Shutdown() error
	BeginScene() error
	EndScene() error
	// CreateHardwareBuffer allocates the GPU side of b. The returned buffer
	// holds one reference owned by the caller.
	CreateHardwareBuffer(b buffer.Buffer, bt metadata.BufferType) buffer.HardwareBuffer
	// DrawMeshBuffer uploads whatever changed and draws instanceCount
	// instances of mb.
	DrawMeshBuffer(mb *mesh.MeshBuffer, instanceCount uint32) error
}
