package fcn

import (
	"github.com/gorgonia/bpnet/matrix"
	"github.com/pkg/errors"
)

var (
	ErrShape = matrix.ErrShape
	ErrIndex = matrix.ErrIndex

	// ErrCountMismatch is the cause of errors raised when two collections that must pair up differ in length.
	ErrCountMismatch = errors.New("count mismatch")

	// ErrLayout is the cause of errors raised by an unusable network layout.
	ErrLayout = errors.New("invalid layout")

	// ErrActivation is the cause of errors raised by an unsupported activation.
	ErrActivation = errors.New("unsupported activation")
)

// Layout is the number of nodes in each layer, input layer first.
type Layout []int

// Validate checks that the layout has at least two layers and that every layer has at least one node.
func (l Layout) Validate() error {
	if len(l) < 2 {
		return errors.Wrapf(ErrLayout, "%v has %d layers, at least 2 are required", l, len(l))
	}
	for i, n := range l {
		if n <= 0 {
			return errors.Wrapf(ErrLayout, "layer %d of %v has %d nodes", i, l, n)
		}
	}
	return nil
}

// Clone returns a copy of l.
func (l Layout) Clone() Layout {
	retVal := make(Layout, len(l))
	copy(retVal, l)
	return retVal
}

// Equal reports whether l and other describe the same network shape.
func (l Layout) Equal(other Layout) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Inputs is the width of the input layer.
func (l Layout) Inputs() int { return l[0] }

// Outputs is the width of the output layer.
func (l Layout) Outputs() int { return l[len(l)-1] }

// WeightLayers is the number of weight matrices a network of this layout holds.
func (l Layout) WeightLayers() int { return len(l) - 1 }

// WeightShape returns the shape of weight matrix i: (l[i+1], l[i]).
func (l Layout) WeightShape(i int) (rows, cols int) { return l[i+1], l[i] }

// ZeroWeights allocates one zero matrix per weight layer.
func (l Layout) ZeroWeights() []*matrix.Dense {
	retVal := make([]*matrix.Dense, l.WeightLayers())
	for i := range retVal {
		retVal[i] = matrix.New(l.WeightShape(i))
	}
	return retVal
}
