package buffer

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// VertexBuffer is the type-erased view of a vertex buffer that mesh buffers
// and backends work with.
type VertexBuffer interface {
	Buffer

	// VertexType is the shape stored, VertexTypeCustom for plain payloads.
	VertexType() metadata.VertexType
	// Position returns the position of vertex i when the shape has one.
	Position(i int) (mgl32.Vec3, bool)
	// AppendFrom appends every element of other. Both buffers must store the
	// same element type.
	AppendFrom(other VertexBuffer) bool
}

// TypedVertexBuffer stores elements of one concrete type T.
type TypedVertexBuffer[T comparable] struct {
	bufferState
	vertexType metadata.VertexType
	list       TypedElementList[T]
}

func NewTypedVertexBuffer[T comparable](vt metadata.VertexType) *TypedVertexBuffer[T] {
	return &TypedVertexBuffer[T]{
		bufferState: newBufferState(),
		vertexType:  vt,
	}
}

func (b *TypedVertexBuffer[T]) VertexType() metadata.VertexType {
	return b.vertexType
}

func (b *TypedVertexBuffer[T]) ElementSize() int {
	return b.list.ElementSize()
}

func (b *TypedVertexBuffer[T]) ElementCount() int {
	return b.list.Size()
}

func (b *TypedVertexBuffer[T]) Capacity() int {
	return b.list.Capacity()
}

func (b *TypedVertexBuffer[T]) Reallocate(capacity int) {
	b.list.Reallocate(capacity)
}

func (b *TypedVertexBuffer[T]) SetUsed(n int) {
	b.list.SetUsed(n)
}

func (b *TypedVertexBuffer[T]) Clear() {
	b.list.Clear()
}

func (b *TypedVertexBuffer[T]) Bytes() []byte {
	return b.list.Bytes()
}

func (b *TypedVertexBuffer[T]) Pointer() unsafe.Pointer {
	return b.list.Pointer()
}

func (b *TypedVertexBuffer[T]) Add(v T) {
	b.list.Add(v)
}

// Get returns element i, or the zero value when out of range.
func (b *TypedVertexBuffer[T]) Get(i int) T {
	v, _ := b.list.Get(i)
	return v
}

// Set overwrites element i. Out of range writes are dropped.
func (b *TypedVertexBuffer[T]) Set(i int, v T) {
	if !b.list.Set(i, v) {
		logOutOfRange("vertex", i, b.list.Size())
	}
}

func (b *TypedVertexBuffer[T]) Erase(i int) bool {
	return b.list.Erase(i)
}

func (b *TypedVertexBuffer[T]) LinearReverseSearch(v T) int {
	return b.list.LinearReverseSearch(v)
}

// Elements aliases the live storage for bulk fills. Callers call SetDirty
// once they are done.
func (b *TypedVertexBuffer[T]) Elements() []T {
	return b.list.Slice()
}

func (b *TypedVertexBuffer[T]) Position(i int) (mgl32.Vec3, bool) {
	if i < 0 || i >= b.list.Size() {
		return mgl32.Vec3{}, false
	}
	p, ok := any(&b.list.data[i]).(positioned)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return p.VertexPosition(), true
}

func (b *TypedVertexBuffer[T]) AppendFrom(other VertexBuffer) bool {
	src, ok := other.(*TypedVertexBuffer[T])
	if !ok {
		return false
	}
	b.list.Reallocate(b.list.Size() + src.list.Size())
	b.list.data = append(b.list.data, src.list.data...)
	return true
}

type fullSource interface {
	convertible() bool
	fullAt(i int) (fullVertex, bool)
}

type fullSink interface {
	addFull(f fullVertex) bool
}

// convertible reports whether T is one of the built-in vertex shapes.
func (b *TypedVertexBuffer[T]) convertible() bool {
	var v T
	_, ok := any(&v).(convertible)
	return ok
}

func (b *TypedVertexBuffer[T]) fullAt(i int) (fullVertex, bool) {
	if i < 0 || i >= b.list.Size() {
		return fullVertex{}, false
	}
	c, ok := any(&b.list.data[i]).(convertible)
	if !ok {
		return fullVertex{}, false
	}
	return c.toFull(), true
}

func (b *TypedVertexBuffer[T]) addFull(f fullVertex) bool {
	var v T
	c, ok := any(&v).(convertible)
	if !ok {
		return false
	}
	c.fromFull(f)
	b.list.Add(v)
	return true
}
