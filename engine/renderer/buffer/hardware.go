package buffer

import (
	"unsafe"

	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// HardwareBuffer is the backend side of a buffer. The backend owns it; a
// Buffer only holds one counted reference.
type HardwareBuffer interface {
	// RequestUpdate asks for a re-upload before the next use.
	RequestUpdate()
	Acquire()
	// Release drops one reference. The last release destroys the GPU resource.
	Release()
}

// Buffer is the surface shared by vertex and index buffers.
type Buffer interface {
	ElementSize() int
	ElementCount() int
	Capacity() int
	Reallocate(capacity int)
	SetUsed(n int)
	Clear()

	// Bytes and Pointer give the backend the raw storage to upload from.
	Bytes() []byte
	Pointer() unsafe.Pointer

	HardwareMappingHint() metadata.HardwareMappingHint
	SetHardwareMappingHint(hint metadata.HardwareMappingHint)

	SetDirty()
	ChangedID() uint32
	IsDirty() bool
	MarkSynced(changedID uint32)

	HardwareBuffer() HardwareBuffer
	SetHardwareBuffer(hw HardwareBuffer)
	Release()
}

// bufferState carries the change tracking common to every buffer.
type bufferState struct {
	hint      metadata.HardwareMappingHint
	changedID uint32
	syncedID  uint32
	hardware  HardwareBuffer
}

func newBufferState() bufferState {
	return bufferState{
		hint:      metadata.HardwareMappingNever,
		changedID: 1,
	}
}

func (s *bufferState) HardwareMappingHint() metadata.HardwareMappingHint {
	return s.hint
}

func (s *bufferState) SetHardwareMappingHint(hint metadata.HardwareMappingHint) {
	s.hint = hint
}

// SetDirty bumps the change counter and asks the hardware buffer, if any, to
// re-upload. Calls are never merged.
func (s *bufferState) SetDirty() {
	s.changedID++
	if s.hardware != nil {
		s.hardware.RequestUpdate()
	}
}

func (s *bufferState) ChangedID() uint32 {
	return s.changedID
}

// IsDirty reports whether the content changed since the backend last synced.
func (s *bufferState) IsDirty() bool {
	return s.changedID != s.syncedID
}

// MarkSynced is called by the backend after uploading the given revision.
func (s *bufferState) MarkSynced(changedID uint32) {
	s.syncedID = changedID
}

func (s *bufferState) HardwareBuffer() HardwareBuffer {
	return s.hardware
}

// SetHardwareBuffer swaps the referenced hardware buffer, taking a reference
// on the new one and dropping the old one.
func (s *bufferState) SetHardwareBuffer(hw HardwareBuffer) {
	if s.hardware == hw {
		return
	}
	if hw != nil {
		hw.Acquire()
	}
	if s.hardware != nil {
		s.hardware.Release()
	}
	s.hardware = hw
	// The new GPU copy has never seen this content.
	s.syncedID = 0
}

// Release drops the hardware reference.
func (s *bufferState) Release() {
	if s.hardware != nil {
		s.hardware.Release()
		s.hardware = nil
	}
	s.syncedID = 0
}
