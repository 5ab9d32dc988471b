package null

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/buffer"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// hardwareBuffer is a GPU buffer simulated in system memory.
type hardwareBuffer struct {
	backend *Backend

	id     uint32
	label  uuid.UUID
	kind   metadata.BufferType
	source buffer.Buffer

	refs       int
	pending    bool
	uploadedID uint32
	data       []byte
}

func (h *hardwareBuffer) RequestUpdate() {
	if h.pending || h.refs == 0 {
		return
	}
	h.pending = true
	h.backend.queueUpdate(h)
}

func (h *hardwareBuffer) Acquire() {
	h.refs++
}

func (h *hardwareBuffer) Release() {
	if h.refs == 0 {
		return
	}
	h.refs--
	if h.refs == 0 {
		h.backend.destroy(h)
	}
}

// ID is the backend handle of the buffer.
func (h *hardwareBuffer) ID() uint32 {
	return h.id
}

func (h *hardwareBuffer) Label() string {
	return h.label.String()
}

// Data is the last uploaded content.
func (h *hardwareBuffer) Data() []byte {
	return h.data
}

// upload copies the source content when it changed since the last upload.
// It reports the number of bytes copied.
func (h *hardwareBuffer) upload() int {
	h.pending = false
	if h.source == nil {
		return 0
	}
	changed := h.source.ChangedID()
	if changed == h.uploadedID && !h.source.IsDirty() {
		return 0
	}
	h.data = append(h.data[:0], h.source.Bytes()...)
	h.uploadedID = changed
	h.source.MarkSynced(changed)
	return len(h.data)
}
