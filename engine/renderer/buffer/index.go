package buffer

import (
	"unsafe"

	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

type indexValue interface {
	~uint16 | ~uint32
}

// indexStore hides the concrete index width.
type indexStore interface {
	size() int
	capacity() int
	elementSize() int
	reallocate(capacity int)
	setUsed(n int)
	clear()
	get(i int) (uint32, bool)
	set(i int, v uint32) bool
	add(v uint32)
	bytes() []byte
	pointer() unsafe.Pointer
	values() []uint32
}

type indexList[T indexValue] struct {
	TypedElementList[T]
}

func (l *indexList[T]) size() int                { return l.Size() }
func (l *indexList[T]) capacity() int            { return l.Capacity() }
func (l *indexList[T]) elementSize() int         { return l.ElementSize() }
func (l *indexList[T]) reallocate(capacity int)  { l.Reallocate(capacity) }
func (l *indexList[T]) setUsed(n int)            { l.SetUsed(n) }
func (l *indexList[T]) clear()                   { l.Clear() }
func (l *indexList[T]) bytes() []byte            { return l.Bytes() }
func (l *indexList[T]) pointer() unsafe.Pointer  { return l.Pointer() }
func (l *indexList[T]) add(v uint32)             { l.Add(T(v)) }
func (l *indexList[T]) set(i int, v uint32) bool { return l.Set(i, T(v)) }

func (l *indexList[T]) get(i int) (uint32, bool) {
	v, ok := l.Get(i)
	return uint32(v), ok
}

func (l *indexList[T]) values() []uint32 {
	out := make([]uint32, l.Size())
	for i, v := range l.data {
		out[i] = uint32(v)
	}
	return out
}

func newIndexStore(it metadata.IndexType, capacity int) indexStore {
	if it == metadata.IndexType32Bit {
		return &indexList[uint32]{TypedElementList: *NewTypedElementList[uint32](capacity)}
	}
	return &indexList[uint16]{TypedElementList: *NewTypedElementList[uint16](capacity)}
}

// IndexBuffer stores 16 or 32 bit indices. A 16 bit buffer is widened to 32
// bit the first time a value above 0xFFFF is stored.
type IndexBuffer struct {
	bufferState
	indexType metadata.IndexType
	store     indexStore
}

func NewIndexBuffer(it metadata.IndexType) *IndexBuffer {
	return &IndexBuffer{
		bufferState: newBufferState(),
		indexType:   it,
		store:       newIndexStore(it, 0),
	}
}

func (b *IndexBuffer) IndexType() metadata.IndexType {
	return b.indexType
}

// SetIndexType converts the stored indices to the new width. Values that do
// not fit in 16 bits are truncated, so callers narrowing a buffer must know
// the range. The buffer is marked dirty when the width changes.
func (b *IndexBuffer) SetIndexType(it metadata.IndexType) {
	if it == b.indexType {
		return
	}
	old := b.store.values()
	b.store = newIndexStore(it, cap(old))
	for _, v := range old {
		b.store.add(v)
	}
	b.indexType = it
	b.SetDirty()
}

func (b *IndexBuffer) ElementSize() int {
	return b.store.elementSize()
}

func (b *IndexBuffer) ElementCount() int {
	return b.store.size()
}

func (b *IndexBuffer) Capacity() int {
	return b.store.capacity()
}

func (b *IndexBuffer) Reallocate(capacity int) {
	b.store.reallocate(capacity)
}

func (b *IndexBuffer) SetUsed(n int) {
	b.store.setUsed(n)
}

func (b *IndexBuffer) Clear() {
	b.store.clear()
}

func (b *IndexBuffer) Bytes() []byte {
	return b.store.bytes()
}

func (b *IndexBuffer) Pointer() unsafe.Pointer {
	return b.store.pointer()
}

// Index returns index i, or 0 when i is out of range.
func (b *IndexBuffer) Index(i int) uint32 {
	v, _ := b.store.get(i)
	return v
}

// SetIndex overwrites index i. Out of range writes are dropped.
func (b *IndexBuffer) SetIndex(i int, v uint32) {
	if i < 0 || i >= b.store.size() {
		return
	}
	b.widenFor(v)
	b.store.set(i, v)
}

func (b *IndexBuffer) AddIndex(v uint32) {
	b.widenFor(v)
	b.store.add(v)
}

// SetIndices replaces the content with indices and marks the buffer dirty.
func (b *IndexBuffer) SetIndices(indices []uint32) {
	b.store.clear()
	b.store.reallocate(len(indices))
	for _, v := range indices {
		b.AddIndex(v)
	}
	b.SetDirty()
}

// Indices copies the content out as 32 bit values.
func (b *IndexBuffer) Indices() []uint32 {
	return b.store.values()
}

func (b *IndexBuffer) widenFor(v uint32) {
	if b.indexType == metadata.IndexType16Bit && v > 0xFFFF {
		core.LogDebug("index %d does not fit in 16 bits, widening buffer", v)
		b.SetIndexType(metadata.IndexType32Bit)
	}
}

// logOutOfRange reports a dropped access. Debug builds panic instead.
func logOutOfRange(kind string, i, size int) {
	if core.AssertionsEnabled {
		core.Assert(false, "%s index %d out of range [0,%d)", kind, i, size)
	}
	core.LogDebug("%s index %d out of range [0,%d), access dropped", kind, i, size)
}
