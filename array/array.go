package array

import (
	. "github.com/stevegt/goadapt"
)

// BlockSize is the number of slots an Array grows by.
const BlockSize = 10

// Named is implemented by elements that can be looked up with Find.
type Named interface {
	Name() string
}

// Array is a growable ordered collection. Removal always compacts, and
// capacity grows one block at a time but never shrinks.
type Array[T comparable] struct {
	elements []T
}

// New returns an empty array with room for one block of elements.
func New[T comparable]() (a *Array[T]) {
	a = &Array[T]{elements: make([]T, 0, BlockSize)}
	return
}

// Len returns the number of elements.
func (a *Array[T]) Len() int {
	return len(a.elements)
}

// Cap returns the number of slots currently allocated.
func (a *Array[T]) Cap() int {
	return cap(a.elements)
}

// At returns the i'th element.
func (a *Array[T]) At(i int) T {
	Assert(i >= 0 && i < len(a.elements), "index %d out of range [0:%d]", i, len(a.elements))
	return a.elements[i]
}

// Elements returns the backing slice. Callers must not append to it.
func (a *Array[T]) Elements() []T {
	return a.elements
}

// Add appends e, growing the array by one block first if it is full.
func (a *Array[T]) Add(e T) {
	if len(a.elements) == cap(a.elements) {
		grown := make([]T, len(a.elements), cap(a.elements)+BlockSize)
		copy(grown, a.elements)
		a.elements = grown
	}
	a.elements = append(a.elements, e)
}

// Index returns the position of e, or -1.
func (a *Array[T]) Index(e T) int {
	for i, x := range a.elements {
		if x == e {
			return i
		}
	}
	return -1
}

// Contains reports whether e is in the array.
func (a *Array[T]) Contains(e T) bool {
	return a.Index(e) >= 0
}

// Remove removes the first element identical to e, shifting the
// elements after it one slot to the left. It returns false if e is
// not present.
func (a *Array[T]) Remove(e T) (ok bool) {
	i := a.Index(e)
	if i < 0 {
		return false
	}
	n := len(a.elements)
	copy(a.elements[i:], a.elements[i+1:])
	var zero T
	a.elements[n-1] = zero
	a.elements = a.elements[:n-1]
	return true
}

// Find returns the first element whose name is name. Elements that do
// not implement Named are skipped.
func (a *Array[T]) Find(name string) (e T, ok bool) {
	for _, x := range a.elements {
		named, isNamed := any(x).(Named)
		if !isNamed {
			continue
		}
		if named.Name() == name {
			return x, true
		}
	}
	return
}

// Dispose empties the array. If fn is not nil it is called on every
// element first, in order.
func (a *Array[T]) Dispose(fn func(T)) {
	if fn != nil {
		for _, x := range a.elements {
			fn(x)
		}
	}
	a.elements = nil
}
