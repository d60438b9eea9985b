package bpnet

import (
	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// meanSquaredError is sum((desired - actual)^2) / outputWidth.
func meanSquaredError(desired, actual *matrix.Dense) (float64, error) {
	gap, err := matrix.Subtract(desired, actual)
	if err != nil {
		return 0, errors.WithMessage(err, "loss")
	}
	sq, _ := matrix.Hadamard(gap, gap)
	return matrix.Sum(sq) / float64(actual.Rows()), nil
}

// backward propagates the error of the forward pass held in ctx and adds
// lr * delta[i+1] · activation[i]ᵗ into grads[i] for every weight layer.
func backward(m Model, ctx *fcn.Context, desired *matrix.Dense, lr float64, grads [][]float64) error {
	layout := ctx.Layout()
	last := len(layout) - 1
	df := m.Activation().Derivative()

	out := ctx.Output()
	gap, err := matrix.Subtract(desired, out)
	if err != nil {
		return errors.WithMessage(err, "output delta")
	}
	delta, err := matrix.Hadamard(gap, matrix.Apply(out, df))
	if err != nil {
		return errors.WithMessage(err, "output delta")
	}
	if err = ctx.SetDelta(last, delta); err != nil {
		return err
	}

	for l := last - 1; l > 0; l-- {
		w, err := m.Weight(l)
		if err != nil {
			return err
		}
		next, _ := ctx.Delta(l + 1)
		act, _ := ctx.Activation(l)
		weighted, err := matrix.Multiply(matrix.Transpose(w), next)
		if err != nil {
			return errors.WithMessagef(err, "hidden delta %d", l)
		}
		if delta, err = matrix.Hadamard(weighted, matrix.Apply(act, df)); err != nil {
			return errors.WithMessagef(err, "hidden delta %d", l)
		}
		if err = ctx.SetDelta(l, delta); err != nil {
			return err
		}
	}

	for i := 0; i < last; i++ {
		act, _ := ctx.Activation(i)
		next, _ := ctx.Delta(i + 1)
		g, err := matrix.Multiply(next, matrix.Transpose(act))
		if err != nil {
			return errors.WithMessagef(err, "gradient %d", i)
		}
		floats.AddScaled(grads[i], lr, matrix.Flatten(g))
	}
	return nil
}
