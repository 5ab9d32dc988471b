package buffer

import "unsafe"

// TypedElementList is a growable homogeneous array of fixed size elements.
// It knows nothing about GPU state; the owning buffer is responsible for
// signalling changes.
type TypedElementList[T comparable] struct {
	data []T
}

func NewTypedElementList[T comparable](capacity int) *TypedElementList[T] {
	return &TypedElementList[T]{data: make([]T, 0, capacity)}
}

// Size returns the logical element count.
func (l *TypedElementList[T]) Size() int {
	return len(l.data)
}

// Capacity returns how many elements fit before the next reallocation.
func (l *TypedElementList[T]) Capacity() int {
	return cap(l.data)
}

// ElementSize returns the size of one element in bytes.
func (l *TypedElementList[T]) ElementSize() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Reallocate grows the backing storage to hold at least capacity elements.
// The logical size is unchanged and storage never shrinks.
func (l *TypedElementList[T]) Reallocate(capacity int) {
	if capacity <= cap(l.data) {
		return
	}
	data := make([]T, len(l.data), capacity)
	copy(data, l.data)
	l.data = data
}

// SetUsed sets the logical size to n. Elements past the old size hold the
// zero value.
func (l *TypedElementList[T]) SetUsed(n int) {
	if n < 0 {
		n = 0
	}
	if n > cap(l.data) {
		l.Reallocate(n)
	}
	old := len(l.data)
	l.data = l.data[:n]
	if n > old {
		clear(l.data[old:n])
	}
}

func (l *TypedElementList[T]) Add(v T) {
	l.data = append(l.data, v)
}

// Get returns the element at i, or the zero value and false when i is out of
// range.
func (l *TypedElementList[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(l.data) {
		var zero T
		return zero, false
	}
	return l.data[i], true
}

// Set overwrites the element at i. Out of range writes are dropped.
func (l *TypedElementList[T]) Set(i int, v T) bool {
	if i < 0 || i >= len(l.data) {
		return false
	}
	l.data[i] = v
	return true
}

// Erase removes the element at i keeping order.
func (l *TypedElementList[T]) Erase(i int) bool {
	if i < 0 || i >= len(l.data) {
		return false
	}
	l.data = append(l.data[:i], l.data[i+1:]...)
	return true
}

// Clear drops every element but keeps the capacity.
func (l *TypedElementList[T]) Clear() {
	l.data = l.data[:0]
}

// LinearReverseSearch returns the index of the last element equal to v, or -1.
func (l *TypedElementList[T]) LinearReverseSearch(v T) int {
	for i := len(l.data) - 1; i >= 0; i-- {
		if l.data[i] == v {
			return i
		}
	}
	return -1
}

// Slice exposes the live elements for bulk fills. It aliases the storage.
func (l *TypedElementList[T]) Slice() []T {
	return l.data
}

// Pointer returns the start of the backing storage, valid until the next
// reallocation.
func (l *TypedElementList[T]) Pointer() unsafe.Pointer {
	if cap(l.data) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(l.data))
}

// Bytes views the live elements as raw bytes for uploads.
func (l *TypedElementList[T]) Bytes() []byte {
	if len(l.data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(l.Pointer()), len(l.data)*l.ElementSize())
}
