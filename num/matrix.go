package num

import (
	"fmt"

	. "github.com/stevegt/goadapt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a fixed-shape dense rows x cols array of reals.
type Matrix struct {
	dense *mat.Dense
}

// NewMatrix returns a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	Assert(rows > 0 && cols > 0, "bad matrix shape %dx%d", rows, cols)
	return &Matrix{dense: mat.NewDense(rows, cols, nil)}
}

// Dims returns the shape of the matrix.
func (m *Matrix) Dims() (rows, cols int) {
	return m.dense.Dims()
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.dense.At(i, j)
}

// Set sets element (i, j).
func (m *Matrix) Set(i, j int, x float64) {
	m.dense.Set(i, j, x)
}

// Row returns a view of row i.
func (m *Matrix) Row(i int) []float64 {
	return m.dense.RawRowView(i)
}

// Raw returns the backing row-major slice.
func (m *Matrix) Raw() []float64 {
	return m.dense.RawMatrix().Data
}

func (m *Matrix) sameShape(o *Matrix) {
	r1, c1 := m.Dims()
	r2, c2 := o.Dims()
	Assert(r1 == r2 && c1 == c2, "matrix shape mismatch: %dx%d != %dx%d", r1, c1, r2, c2)
}

// CopyFrom copies src into m. Shapes must match.
func (m *Matrix) CopyFrom(src *Matrix) {
	m.sameShape(src)
	m.dense.Copy(src.dense)
}

// Fill sets every element to x.
func (m *Matrix) Fill(x float64) {
	raw := m.Raw()
	for i := range raw {
		raw[i] = x
	}
}

// Zero sets every element to zero.
func (m *Matrix) Zero() {
	m.dense.Zero()
}

// Add adds o to m elementwise.
func (m *Matrix) Add(o *Matrix) {
	m.sameShape(o)
	rows, cols := m.Dims()
	For(rows, cols, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			floats.Add(m.Row(i), o.Row(i))
		}
	})
}

// AddOuter accumulates the outer product of x and y into m:
//
//	m_ij += x_i * y_j
func (m *Matrix) AddOuter(x, y []float64) {
	rows, cols := m.Dims()
	Assert(len(x) == rows && len(y) == cols, "outer product shape mismatch")
	For(rows, cols, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			floats.AddScaled(m.Row(i), x[i], y)
		}
	})
}

// MulVecAdd accumulates the product of row vector x and m into y:
//
//	y_j += sum_i x_i * m_ij
func (m *Matrix) MulVecAdd(x, y []float64) {
	rows, cols := m.Dims()
	Assert(len(x) == rows && len(y) == cols, "vector-matrix shape mismatch")
	For(cols, rows, func(lo, hi int) {
		for i := 0; i < rows; i++ {
			floats.AddScaled(y[lo:hi], x[i], m.Row(i)[lo:hi])
		}
	})
}

// MulTransVecAdd accumulates the product of m and column vector d
// into e:
//
//	e_i += sum_j m_ij * d_j
func (m *Matrix) MulTransVecAdd(d, e []float64) {
	rows, cols := m.Dims()
	Assert(len(d) == cols && len(e) == rows, "matrix-vector shape mismatch")
	For(rows, cols, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			e[i] += floats.Dot(m.Row(i), d)
		}
	})
}

// SumSquares returns the sum of the squared elements.
func (m *Matrix) SumSquares() float64 {
	raw := m.Raw()
	return floats.Dot(raw, raw)
}

// Equal reports whether m and o have the same shape and identical
// values.
func (m *Matrix) Equal(o *Matrix) bool {
	return mat.Equal(m.dense, o.dense)
}

// String returns a formatted view of the matrix.
func (m *Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(m.dense, mat.Squeeze()))
}
