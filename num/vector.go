package num

import (
	"strconv"
	"strings"

	. "github.com/stevegt/goadapt"
	"gonum.org/v1/gonum/floats"
)

// Vector is a fixed-length sequence of reals.
type Vector struct {
	data []float64
}

// NewVector returns a zeroed vector of length n.
func NewVector(n int) *Vector {
	Assert(n >= 0, "negative vector length %d", n)
	return &Vector{data: make([]float64, n)}
}

// VectorFrom returns a vector holding a copy of xs.
func VectorFrom(xs []float64) (v *Vector) {
	v = NewVector(len(xs))
	copy(v.data, xs)
	return
}

// Len returns the length of the vector.
func (v *Vector) Len() int {
	return len(v.data)
}

// At returns element i.
func (v *Vector) At(i int) float64 {
	return v.data[i]
}

// Set sets element i.
func (v *Vector) Set(i int, x float64) {
	v.data[i] = x
}

// Data returns the backing slice.
func (v *Vector) Data() []float64 {
	return v.data
}

// CopyFrom copies src into v. Lengths must match.
func (v *Vector) CopyFrom(src *Vector) {
	Assert(len(src.data) == len(v.data), "vector length mismatch: %d != %d", len(src.data), len(v.data))
	copy(v.data, src.data)
}

// Fill sets every element to x.
func (v *Vector) Fill(x float64) {
	for i := range v.data {
		v.data[i] = x
	}
}

// Zero sets every element to zero.
func (v *Vector) Zero() {
	v.Fill(0)
}

// Sum returns the sum of the elements.
func (v *Vector) Sum() float64 {
	return floats.Sum(v.data)
}

// Norm returns the Euclidean length.
func (v *Vector) Norm() float64 {
	return floats.Norm(v.data, 2)
}

// Mul multiplies v elementwise by o in place.
func (v *Vector) Mul(o *Vector) {
	Assert(len(o.data) == len(v.data), "vector length mismatch: %d != %d", len(o.data), len(v.data))
	For(len(v.data), 1, func(lo, hi int) {
		floats.Mul(v.data[lo:hi], o.data[lo:hi])
	})
}

// Equal reports whether v and o hold identical values.
func (v *Vector) Equal(o *Vector) bool {
	return floats.Equal(v.data, o.data)
}

// String formats the vector as space-separated values.
func (v *Vector) String() string {
	parts := make([]string, len(v.data))
	for i, x := range v.data {
		parts[i] = strconv.FormatFloat(x, 'f', 6, 64)
	}
	return strings.Join(parts, " ")
}
