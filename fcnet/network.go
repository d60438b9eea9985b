// Package fcn implements a fully connected feed-forward network.
//
// The network holds only weights. All per-pass state lives in a *Context, so
// Forward may be called concurrently with distinct contexts as long as no
// weight update runs at the same time.
package fcn

import (
	"math/rand"
	"time"

	"github.com/gorgonia/bpnet/matrix"
	"github.com/pkg/errors"
)

// PerturbAmount is added to every weight by PerturbWeight.
const PerturbAmount = 0.2

// Network is a fully connected feed-forward network without biases.
type Network struct {
	layout  Layout
	weights []*matrix.Dense
	act     Activation

	rand *rand.Rand
}

// Opt configures a Network at construction.
type Opt func(n *Network)

// WithActivation selects the activation used by every layer. Sigmoid is the default.
func WithActivation(a Activation) Opt {
	return func(n *Network) { n.act = a }
}

// WithRand uses r to draw the initial weights.
func WithRand(r *rand.Rand) Opt {
	return func(n *Network) { n.rand = r }
}

// WithWeights uses copies of ws instead of random weights.
func WithWeights(ws []*matrix.Dense) Opt {
	return func(n *Network) {
		n.weights = make([]*matrix.Dense, len(ws))
		for i, w := range ws {
			n.weights[i] = w.Clone()
		}
	}
}

// New creates a network for layout. Unless WithWeights is given, every weight
// is drawn uniformly from [-1, 1].
func New(layout Layout, opts ...Opt) (*Network, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	retVal := &Network{
		layout: layout.Clone(),
		act:    Sigmoid,
	}
	for _, opt := range opts {
		opt(retVal)
	}
	if !retVal.act.IsValid() {
		return nil, errors.Wrapf(ErrActivation, "%v", retVal.act)
	}

	if retVal.weights != nil {
		if err := retVal.checkWeights(retVal.weights); err != nil {
			return nil, err
		}
		return retVal, nil
	}

	if retVal.rand == nil {
		retVal.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	retVal.weights = make([]*matrix.Dense, layout.WeightLayers())
	for i := range retVal.weights {
		r, c := layout.WeightShape(i)
		backing := make([]float64, r*c)
		for j := range backing {
			backing[j] = retVal.rand.Float64()*2 - 1
		}
		w, err := matrix.NewFromSlice(r, c, backing)
		if err != nil {
			return nil, err
		}
		retVal.weights[i] = w
	}
	return retVal, nil
}

func (n *Network) checkWeights(ws []*matrix.Dense) error {
	if len(ws) != n.layout.WeightLayers() {
		return errors.Wrapf(ErrCountMismatch, "%d weight matrices for %d weight layers", len(ws), n.layout.WeightLayers())
	}
	for i, w := range ws {
		if err := n.checkWeight(i, w); err != nil {
			return err
		}
	}
	return nil
}

func (n *Network) checkLayer(layer int) error {
	if layer < 0 || layer >= len(n.weights) {
		return errors.Wrapf(ErrIndex, "weight layer %d of %d", layer, len(n.weights))
	}
	return nil
}

func (n *Network) checkWeight(layer int, w *matrix.Dense) error {
	er, ec := n.layout.WeightShape(layer)
	if r, c := w.Dims(); r != er || c != ec {
		return errors.Wrapf(ErrShape, "weight layer %d expects %d×%d, got %d×%d", layer, er, ec, r, c)
	}
	return nil
}

// Layout returns a copy of the network layout.
func (n *Network) Layout() Layout { return n.layout.Clone() }

// Activation returns the activation used by every layer.
func (n *Network) Activation() Activation { return n.act }

// Forward runs input through the network, writing every layer's activation into ctx.
func (n *Network) Forward(input *matrix.Dense, ctx *Context) error {
	if r, c := input.Dims(); r != n.layout.Inputs() || c != 1 {
		return errors.Wrapf(ErrShape, "input must be %d×1, got %d×%d", n.layout.Inputs(), r, c)
	}
	if !ctx.layout.Equal(n.layout) {
		return errors.Wrapf(ErrLayout, "context built for %v, network is %v", ctx.layout, n.layout)
	}

	f := n.act.Func()
	ctx.activations[0] = input
	for i, w := range n.weights {
		z, err := matrix.Multiply(w, ctx.activations[i])
		if err != nil {
			return errors.Wrapf(err, "forward layer %d", i)
		}
		ctx.activations[i+1] = matrix.Apply(z, f)
	}
	return nil
}

// Predict runs Forward and returns the index of the largest output. The first index wins on ties.
func (n *Network) Predict(input *matrix.Dense, ctx *Context) (int, error) {
	if err := n.Forward(input, ctx); err != nil {
		return -1, err
	}
	return matrix.ArgMax(ctx.Output()), nil
}

// Weight returns weight matrix i, shaped (layout[i+1], layout[i]).
//
// The matrix is shared with the network and must be treated as read-only.
func (n *Network) Weight(layer int) (*matrix.Dense, error) {
	if err := n.checkLayer(layer); err != nil {
		return nil, err
	}
	return n.weights[layer], nil
}

// Weights returns copies of all weight matrices.
func (n *Network) Weights() []*matrix.Dense {
	retVal := make([]*matrix.Dense, len(n.weights))
	for i, w := range n.weights {
		retVal[i] = w.Clone()
	}
	return retVal
}

// SetWeight replaces weight matrix i with a copy of w.
func (n *Network) SetWeight(layer int, w *matrix.Dense) error {
	if err := n.checkLayer(layer); err != nil {
		return err
	}
	if err := n.checkWeight(layer, w); err != nil {
		return err
	}
	n.weights[layer] = w.Clone()
	return nil
}

// UpdateWeight adds delta to weight matrix i.
func (n *Network) UpdateWeight(layer int, delta *matrix.Dense) error {
	if err := n.checkLayer(layer); err != nil {
		return err
	}
	updated, err := matrix.Add(n.weights[layer], delta)
	if err != nil {
		return errors.Wrapf(err, "update weight layer %d", layer)
	}
	n.weights[layer] = updated
	return nil
}

// UpdateWeights adds one delta matrix per weight layer. Either every layer
// is updated or none is.
//
// UpdateWeights must not run concurrently with Forward.
func (n *Network) UpdateWeights(deltas []*matrix.Dense) error {
	if len(deltas) != len(n.weights) {
		return errors.Wrapf(ErrCountMismatch, "%d deltas for %d weight layers", len(deltas), len(n.weights))
	}
	updated := make([]*matrix.Dense, len(n.weights))
	for i, w := range n.weights {
		var err error
		if updated[i], err = matrix.Add(w, deltas[i]); err != nil {
			return errors.Wrapf(err, "update weight layer %d", i)
		}
	}
	n.weights = updated
	return nil
}

// PerturbWeight adds PerturbAmount to every weight. It is a blunt way to push
// training off a plateau and has nothing to do with the gradient.
func (n *Network) PerturbWeight() {
	for i, w := range n.weights {
		r, c := w.Dims()
		shifted, err := matrix.Add(w, matrix.NewFilled(r, c, PerturbAmount))
		if err != nil {
			panic(err) // the shift is built from w's own shape
		}
		n.weights[i] = shifted
	}
}
