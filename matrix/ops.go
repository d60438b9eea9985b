package matrix

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// Multiply returns the matrix product a·b.
func Multiply(a, b *Dense) (*Dense, error) {
	if a.c != b.r {
		return nil, errors.Wrapf(ErrShape, "cannot multiply %d×%d by %d×%d", a.r, a.c, b.r, b.c)
	}
	prod, err := a.t.MatMul(b.t)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Dense{r: a.r, c: b.c, t: prod}, nil
}

// Transpose returns aᵗ.
func Transpose(a *Dense) *Dense {
	t, err := tensor.Transpose(a.t)
	if err != nil {
		panic(err) // every 2-D tensor can be transposed
	}
	return fromTensor(a.c, a.r, t)
}

// Scale returns k·a.
func Scale(a *Dense, k float64) *Dense {
	scaled, err := tensor.Mul(a.t, k)
	if err != nil {
		panic(err) // a float64 scalar always applies to a float64 tensor
	}
	return fromTensor(a.r, a.c, scaled)
}

type binop func(a, b interface{}, opts ...tensor.FuncOpt) (tensor.Tensor, error)

func elementwise(name string, op binop, a, b *Dense) (*Dense, error) {
	if !a.SameShape(b) {
		return nil, errors.Wrapf(ErrShape, "cannot %s %d×%d and %d×%d", name, a.r, a.c, b.r, b.c)
	}
	res, err := op(a.t, b.t)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return fromTensor(a.r, a.c, res), nil
}

// Add returns a+b.
func Add(a, b *Dense) (*Dense, error) { return elementwise("add", tensor.Add, a, b) }

// Subtract returns a-b.
func Subtract(a, b *Dense) (*Dense, error) { return elementwise("subtract", tensor.Sub, a, b) }

// Hadamard returns the element-wise product of a and b.
func Hadamard(a, b *Dense) (*Dense, error) { return elementwise("multiply element-wise", tensor.Mul, a, b) }

// Apply returns a new matrix with f applied to every element of a.
func Apply(a *Dense, f func(float64) float64) *Dense {
	res, err := a.t.Apply(f)
	if err != nil {
		panic(err) // the standard engine maps float64 functions over float64 tensors
	}
	return fromTensor(a.r, a.c, res)
}

// Sum returns the total of all elements of a.
func Sum(a *Dense) float64 { return floats.Sum(a.data()) }

// Flatten returns the elements of a in row-major order.
func Flatten(a *Dense) []float64 {
	retVal := make([]float64, len(a.data()))
	copy(retVal, a.data())
	return retVal
}

// Row returns a copy of row i.
func Row(a *Dense, i int) ([]float64, error) {
	if i < 0 || i >= a.r {
		return nil, errors.Wrapf(ErrIndex, "row %d of a %d×%d matrix", i, a.r, a.c)
	}
	retVal := make([]float64, a.c)
	copy(retVal, a.data()[i*a.c:(i+1)*a.c])
	return retVal, nil
}

// Column returns a copy of column j.
func Column(a *Dense, j int) ([]float64, error) {
	if j < 0 || j >= a.c {
		return nil, errors.Wrapf(ErrIndex, "column %d of a %d×%d matrix", j, a.r, a.c)
	}
	data := a.data()
	retVal := make([]float64, a.r)
	for i := range retVal {
		retVal[i] = data[i*a.c+j]
	}
	return retVal, nil
}

// ArgMax returns the row-major index of the largest element. The first index wins on ties.
func ArgMax(a *Dense) int { return floats.MaxIdx(a.data()) }
