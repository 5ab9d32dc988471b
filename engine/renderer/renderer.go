package renderer

import (
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// Renderer is the front end the engine draws through. It gates draws on
// mesh buffer readiness and attaches hardware buffers on first use.
type Renderer struct {
	backend RendererBackend

	initialized  bool
	sceneStarted bool
	frameNumber  uint64
	skippedDraws uint64
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) Initialize() error {
	if err := r.backend.Initialize(); err != nil {
		core.LogError("renderer backend %s failed to initialize: %s", r.backend.Name(), err)
		return err
	}
	r.initialized = true
	core.LogInfo("renderer backend %s initialized", r.backend.Name())
	return nil
}

func (r *Renderer) Shutdown() error {
	if !r.initialized {
		return nil
	}
	r.initialized = false
	return r.backend.Shutdown()
}

func (r *Renderer) BeginScene() error {
	if !r.initialized {
		return core.ErrBackendNotReady
	}
	if r.sceneStarted {
		return core.ErrSceneAlreadyStarted
	}
	if err := r.backend.BeginScene(); err != nil {
		return err
	}
	r.sceneStarted = true
	return nil
}

func (r *Renderer) EndScene() error {
	if !r.sceneStarted {
		return core.ErrSceneNotStarted
	}
	r.sceneStarted = false
	r.frameNumber++
	return r.backend.EndScene()
}

// FrameNumber counts completed scenes.
func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

// SkippedDraws counts draws refused because the mesh buffer was not ready.
func (r *Renderer) SkippedDraws() uint64 {
	return r.skippedDraws
}

func (r *Renderer) DrawMeshBuffer(mb *mesh.MeshBuffer) error {
	return r.DrawInstanced(mb, 1)
}

// DrawInstanced draws instanceCount instances of mb. A mesh buffer that is
// not drawable is skipped with a warning; the frame goes on.
func (r *Renderer) DrawInstanced(mb *mesh.MeshBuffer, instanceCount uint32) error {
	if !r.sceneStarted {
		return core.ErrSceneNotStarted
	}
	if mb == nil || instanceCount == 0 {
		return nil
	}
	if !mb.Drawable() {
		r.skippedDraws++
		name := "<none>"
		if d := mb.VertexDescriptor(); d != nil {
			name = d.Name()
		}
		core.LogWarn("skipping draw of %s mesh buffer (descriptor %s)", mb.State(), name)
		return nil
	}

	for slot := 0; slot < mb.VertexBufferCount(); slot++ {
		r.ensureHardwareBuffer(mb.VertexBuffer(slot), metadata.BufferTypeVertex)
	}
	r.ensureHardwareBuffer(mb.IndexBuffer(), metadata.BufferTypeIndex)

	return r.backend.DrawMeshBuffer(mb, instanceCount)
}

// ensureHardwareBuffer gives b a GPU copy unless it is drawn from client
// memory.
func (r *Renderer) ensureHardwareBuffer(b buffer.Buffer, bt metadata.BufferType) {
	if b.HardwareBuffer() != nil || b.HardwareMappingHint() == metadata.HardwareMappingNever {
		return
	}
	hw := r.backend.CreateHardwareBuffer(b, bt)
	if hw == nil {
		return
	}
	b.SetHardwareBuffer(hw)
	// The buffer now holds its own reference.
	hw.Release()
}
