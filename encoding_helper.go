package bpnet

import (
	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/pkg/errors"
)

// MaxLabels is the largest label set OneHot accepts.
const MaxLabels = 10

// OneHot encodes label as a (len(labels), 1) column holding 1 at the label's
// position and 0 everywhere else.
func OneHot(label int, labels []int) (*matrix.Dense, error) {
	switch {
	case len(labels) == 0:
		return nil, errors.Wrap(ErrConfig, "empty label set")
	case len(labels) > MaxLabels:
		return nil, errors.Wrapf(ErrConfig, "%d labels, at most %d are supported", len(labels), MaxLabels)
	}
	for i, l := range labels {
		if l == label {
			retVal := matrix.New(len(labels), 1)
			retVal.Set(i, 0, 1)
			return retVal, nil
		}
	}
	return nil, errors.Wrapf(ErrConfig, "unknown label %d", label)
}

// OneHots encodes every label in ls.
func OneHots(ls []int, labels []int) ([]*matrix.Dense, error) {
	retVal := make([]*matrix.Dense, len(ls))
	for i, l := range ls {
		m, err := OneHot(l, labels)
		if err != nil {
			return nil, errors.WithMessagef(err, "sample %d", i)
		}
		retVal[i] = m
	}
	return retVal, nil
}

// Label decodes a network output back into a label. The largest output
// wins; on ties the first one does.
func Label(output *matrix.Dense, labels []int) (int, error) {
	r, c := output.Dims()
	if r*c != len(labels) {
		return 0, errors.Wrapf(matrix.ErrShape, "%d outputs for %d labels", r*c, len(labels))
	}
	return labels[matrix.ArgMax(output)], nil
}

// Accuracy returns the fraction of samples whose output decodes to the same
// label as the desired output.
func Accuracy(net Model, inputs, desired []*matrix.Dense, labels []int) (float64, error) {
	if len(inputs) != len(desired) {
		return 0, errors.Wrapf(ErrCountMismatch, "%d inputs, %d desired outputs", len(inputs), len(desired))
	}
	if len(inputs) == 0 {
		return 0, errors.Wrap(ErrConfig, "no samples")
	}
	ctx := fcn.NewContext(net.Layout())
	var correct int
	for i, in := range inputs {
		if err := net.Forward(in, ctx); err != nil {
			return 0, errors.WithMessagef(err, "sample %d", i)
		}
		got, err := Label(ctx.Output(), labels)
		if err != nil {
			return 0, errors.WithMessagef(err, "sample %d", i)
		}
		want, err := Label(desired[i], labels)
		if err != nil {
			return 0, errors.WithMessagef(err, "sample %d", i)
		}
		if got == want {
			correct++
		}
	}
	return float64(correct) / float64(len(inputs)), nil
}

// Binarize maps every value above 128 to 1 and everything else to 0.
func Binarize(m *matrix.Dense) *matrix.Dense {
	return matrix.Apply(m, func(v float64) float64 {
		if v > 128 {
			return 1
		}
		return 0
	})
}
