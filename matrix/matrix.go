// Package matrix provides a small fixed-shape dense matrix of float64 values.
//
// Every operation returns a freshly allocated matrix. Operands are never
// aliased by results, so a matrix that is only read may be shared between
// goroutines.
package matrix

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

var (
	// ErrShape is the cause of every error raised by mismatched operand shapes.
	ErrShape = errors.New("shape mismatch")

	// ErrIndex is the cause of every error raised by an out of range row, column or element.
	ErrIndex = errors.New("index out of range")
)

// Dense is a row-major R×C matrix. The dimensions are immutable; the contents
// may be changed through Set.
type Dense struct {
	r, c int
	t    *tensor.Dense
}

// New returns a zero filled r×c matrix. It panics if either dimension is not positive.
func New(r, c int) *Dense {
	return fromBacking(r, c, make([]float64, checkDims(r, c)))
}

// NewFilled returns a r×c matrix with every element set to v.
func NewFilled(r, c int, v float64) *Dense {
	m := New(r, c)
	if err := m.t.Memset(v); err != nil {
		panic(err)
	}
	return m
}

// NewFromSlice returns a r×c matrix holding a copy of data, which is read in row-major order.
func NewFromSlice(r, c int, data []float64) (*Dense, error) {
	if r <= 0 || c <= 0 {
		return nil, errors.Wrapf(ErrShape, "invalid dimensions %d×%d", r, c)
	}
	size := r * c
	if len(data) != size {
		return nil, errors.Wrapf(ErrShape, "%d values cannot fill a %d×%d matrix", len(data), r, c)
	}
	backing := make([]float64, size)
	copy(backing, data)
	return fromBacking(r, c, backing), nil
}

// NewColumn returns a len(data)×1 column vector holding a copy of data.
func NewColumn(data ...float64) *Dense {
	m, err := NewFromSlice(len(data), 1, data)
	if err != nil {
		panic(err)
	}
	return m
}

func checkDims(r, c int) int {
	if r <= 0 || c <= 0 {
		panic(errors.Wrapf(ErrShape, "invalid dimensions %d×%d", r, c))
	}
	return r * c
}

func fromBacking(r, c int, backing []float64) *Dense {
	return &Dense{
		r: r,
		c: c,
		t: tensor.New(tensor.WithShape(r, c), tensor.WithBacking(backing)),
	}
}

func fromTensor(r, c int, t tensor.Tensor) *Dense {
	d, ok := t.(*tensor.Dense)
	if !ok {
		panic(fmt.Sprintf("unexpected tensor type %T", t))
	}
	return &Dense{r: r, c: c, t: d}
}

func (m *Dense) data() []float64 { return m.t.Data().([]float64) }

// Dims returns the number of rows and columns.
func (m *Dense) Dims() (r, c int) { return m.r, m.c }

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

// SameShape reports whether m and other have identical dimensions.
func (m *Dense) SameShape(other *Dense) bool { return m.r == other.r && m.c == other.c }

func (m *Dense) checkIndex(i, j int) error {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return errors.Wrapf(ErrIndex, "(%d, %d) is outside a %d×%d matrix", i, j, m.r, m.c)
	}
	return nil
}

// At returns the element at row i, column j.
func (m *Dense) At(i, j int) (float64, error) {
	if err := m.checkIndex(i, j); err != nil {
		return 0, err
	}
	return m.data()[i*m.c+j], nil
}

// Set writes v to row i, column j.
func (m *Dense) Set(i, j int, v float64) error {
	if err := m.checkIndex(i, j); err != nil {
		return err
	}
	m.data()[i*m.c+j] = v
	return nil
}

// Clone returns a deep copy of m.
func (m *Dense) Clone() *Dense {
	backing := make([]float64, len(m.data()))
	copy(backing, m.data())
	return fromBacking(m.r, m.c, backing)
}

// Equal reports whether m and other have the same shape and identical elements.
func (m *Dense) Equal(other *Dense) bool {
	return m.SameShape(other) && floats.Equal(m.data(), other.data())
}

// EqualApprox reports whether m and other have the same shape and every pair
// of elements is within tol of each other.
func (m *Dense) EqualApprox(other *Dense, tol float64) bool {
	return m.SameShape(other) && floats.EqualApprox(m.data(), other.data(), tol)
}

// String prints one row per line.
func (m *Dense) String() string {
	var buf bytes.Buffer
	data := m.data()
	for i := 0; i < m.r; i++ {
		buf.WriteString("⎢")
		for j := 0; j < m.c; j++ {
			if j > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%8.4f", data[i*m.c+j])
		}
		buf.WriteString("⎥\n")
	}
	return buf.String()
}
