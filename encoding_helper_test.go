package bpnet

import (
	"testing"

	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestOneHot(t *testing.T) {
	assert := assert.New(t)
	labels := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	m, err := OneHot(7, labels)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal([]float64{0, 0, 0, 0, 0, 0, 0, 1, 0, 0}, matrix.Flatten(m))
	assert.Equal(10, m.Rows())
	assert.Equal(1, m.Cols())

	_, err = OneHot(1, nil)
	assert.Equal(ErrConfig, errors.Cause(err))
	_, err = OneHot(1, append(labels, 10))
	assert.Equal(ErrConfig, errors.Cause(err))
	_, err = OneHot(11, labels)
	assert.Equal(ErrConfig, errors.Cause(err))

	ms, err := OneHots([]int{3, 5}, []int{3, 5})
	assert.NoError(err)
	assert.Equal([]float64{1, 0}, matrix.Flatten(ms[0]))
	assert.Equal([]float64{0, 1}, matrix.Flatten(ms[1]))
	_, err = OneHots([]int{3, 4}, []int{3, 5})
	assert.Error(err)
}

func TestLabel(t *testing.T) {
	assert := assert.New(t)
	labels := []int{4, 2, 9}

	l, err := Label(matrix.NewColumn(0.1, 0.9, 0.3), labels)
	assert.NoError(err)
	assert.Equal(2, l)

	// ties go to the first
	l, err = Label(matrix.NewColumn(0.5, 0.5, 0.5), labels)
	assert.NoError(err)
	assert.Equal(4, l)

	_, err = Label(matrix.NewColumn(0.5, 0.5), labels)
	assert.Equal(matrix.ErrShape, errors.Cause(err))
}

func TestBinarize(t *testing.T) {
	m, _ := matrix.NewFromSlice(2, 2, []float64{0, 128, 129, 255})
	assert.Equal(t, []float64{0, 0, 1, 1}, matrix.Flatten(Binarize(m)))
}

func TestAccuracy(t *testing.T) {
	assert := assert.New(t)
	labels := []int{0, 1}
	w, _ := matrix.NewFromSlice(2, 1, []float64{1, -1})
	net, err := fcn.New(fcn.Layout{1, 2}, fcn.WithWeights([]*matrix.Dense{w}))
	if err != nil {
		t.Fatal(err)
	}

	// positive inputs light up the first output, negative ones the second
	inputs := []*matrix.Dense{matrix.NewColumn(1), matrix.NewColumn(-1), matrix.NewColumn(2), matrix.NewColumn(-2)}
	desired, err := OneHots([]int{0, 1, 1, 1}, labels)
	if err != nil {
		t.Fatal(err)
	}
	acc, err := Accuracy(net, inputs, desired, labels)
	assert.NoError(err)
	assert.Equal(0.75, acc)

	_, err = Accuracy(net, inputs, desired[:3], labels)
	assert.Equal(ErrCountMismatch, errors.Cause(err))
	_, err = Accuracy(net, nil, nil, labels)
	assert.Equal(ErrConfig, errors.Cause(err))
	_, err = Accuracy(net, inputs, desired, []int{0, 1, 2})
	assert.Equal(matrix.ErrShape, errors.Cause(err))
}
