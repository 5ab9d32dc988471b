package null

import (
	"errors"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima-buffers/engine/containers"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/mesh"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

const defaultQueueSize = 256

// Stats are the counters of one frame.
type Stats struct {
	Frame         uint64
	Uploads       uint64
	UploadedBytes uint64
	ClientBytes   uint64
	Draws         uint64
	Primitives    uint64
	Instances     uint64
	LiveBuffers   int
}

func (s *Stats) add(o Stats) {
	s.Uploads += o.Uploads
	s.UploadedBytes += o.UploadedBytes
	s.ClientBytes += o.ClientBytes
	s.Draws += o.Draws
	s.Primitives += o.Primitives
	s.Instances += o.Instances
}

// Backend renders nothing. It keeps the bookkeeping of a real backend:
// reference counted hardware buffers, uploads driven by change IDs, and
// per-frame statistics.
type Backend struct {
	ids     *core.IdentifierPool
	buffers map[uint32]*hardwareBuffer
	pending *containers.RingQueue[uint32]

	initialized bool
	inScene     bool
	frame       Stats
	last        Stats
	totals      Stats
}

func New() *Backend {
	return NewWithQueueSize(defaultQueueSize)
}

// NewWithQueueSize sets how many update requests are queued between frames.
// When the queue overflows the remaining requests are served at draw time.
func NewWithQueueSize(size int) *Backend {
	if size < 1 {
		size = 1
	}
	return &Backend{
		ids:     core.NewIdentifierPool(64),
		buffers: make(map[uint32]*hardwareBuffer),
		pending: containers.NewRingQueue[uint32](size),
	}
}

func (b *Backend) Name() string {
	return "null"
}

func (b *Backend) Initialize() error {
	b.initialized = true
	return nil
}

func (b *Backend) Shutdown() error {
	if len(b.buffers) > 0 {
		core.LogWarn("null backend: %d hardware buffers still alive at shutdown", len(b.buffers))
	}
	for _, h := range b.buffers {
		if h.source != nil && h.source.HardwareBuffer() == buffer.HardwareBuffer(h) {
			h.source.Release()
		}
	}
	b.initialized = false
	return nil
}

// BeginScene uploads the buffers that asked for it since the last frame.
func (b *Backend) BeginScene() error {
	if !b.initialized {
		return core.ErrBackendNotReady
	}
	if b.inScene {
		return core.ErrSceneAlreadyStarted
	}
	b.inScene = true
	b.frame = Stats{Frame: b.totals.Frame}

	for !b.pending.IsEmpty() {
		id, err := b.pending.Dequeue()
		if err != nil {
			break
		}
		if h, ok := b.buffers[id]; ok {
			b.count(h.upload())
		}
	}
	return nil
}

func (b *Backend) EndScene() error {
	if !b.inScene {
		return core.ErrSceneNotStarted
	}
	b.inScene = false
	b.frame.LiveBuffers = len(b.buffers)
	b.last = b.frame
	b.totals.add(b.frame)
	b.totals.Frame++
	b.totals.LiveBuffers = len(b.buffers)
	core.LogDebug("frame %d: %d draws, %d primitives, %d instances, %d uploads (%d bytes)",
		b.frame.Frame, b.frame.Draws, b.frame.Primitives, b.frame.Instances, b.frame.Uploads, b.frame.UploadedBytes)
	return nil
}

func (b *Backend) CreateHardwareBuffer(src buffer.Buffer, bt metadata.BufferType) buffer.HardwareBuffer {
	h := &hardwareBuffer{
		backend: b,
		label:   uuid.New(),
		kind:    bt,
		source:  src,
		refs:    1,
	}
	h.id = b.ids.Acquire(h)
	b.buffers[h.id] = h
	core.LogDebug("null backend: hardware buffer %d (%s) created for %d bytes", h.id, h.label, len(src.Bytes()))
	return h
}

func (b *Backend) DrawMeshBuffer(mb *mesh.MeshBuffer, instanceCount uint32) error {
	if !b.inScene {
		return core.ErrSceneNotStarted
	}
	if mb == nil {
		return errors.New("null backend: nil mesh buffer")
	}
	for slot := 0; slot < mb.VertexBufferCount(); slot++ {
		b.sync(mb.VertexBuffer(slot))
	}
	b.sync(mb.IndexBuffer())

	b.frame.Draws++
	b.frame.Instances += uint64(instanceCount)
	b.frame.Primitives += uint64(mb.PrimitiveCount()) * uint64(instanceCount)
	return nil
}

// sync uploads a buffer owned by this backend, or accounts a client memory
// draw for buffers without a GPU copy.
func (b *Backend) sync(src buffer.Buffer) {
	h, ok := src.HardwareBuffer().(*hardwareBuffer)
	if !ok || h.backend != b {
		b.frame.ClientBytes += uint64(len(src.Bytes()))
		return
	}
	b.count(h.upload())
}

func (b *Backend) count(n int) {
	if n == 0 {
		return
	}
	b.frame.Uploads++
	b.frame.UploadedBytes += uint64(n)
}

func (b *Backend) queueUpdate(h *hardwareBuffer) {
	if err := b.pending.Enqueue(h.id); err != nil {
		// Served by the next draw that uses the buffer.
		h.pending = false
	}
}

func (b *Backend) destroy(h *hardwareBuffer) {
	if err := b.ids.Release(h.id); err != nil {
		core.LogError("null backend: %s", err)
	}
	delete(b.buffers, h.id)
	h.source = nil
	h.data = nil
}

// Stats returns the counters of the last completed frame.
func (b *Backend) Stats() Stats {
	return b.last
}

// Totals returns the counters accumulated over every frame.
func (b *Backend) Totals() Stats {
	return b.totals
}

// LiveBuffers is the number of hardware buffers still referenced.
func (b *Backend) LiveBuffers() int {
	return len(b.buffers)
}
