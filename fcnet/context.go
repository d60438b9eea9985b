package fcn

import (
	"github.com/gorgonia/bpnet/matrix"
	"github.com/pkg/errors"
)

// Context is the scratch space of one forward/backward pass: an activation
// and a node delta column vector per layer.
//
// A Context must never be shared between goroutines. Giving every concurrent
// task its own Context is what lets a single Network be read by many passes
// at once.
type Context struct {
	layout      Layout
	activations []*matrix.Dense
	deltas      []*matrix.Dense
}

// NewContext allocates zero activations and deltas for every layer of layout.
func NewContext(layout Layout) *Context {
	retVal := &Context{
		layout:      layout.Clone(),
		activations: make([]*matrix.Dense, len(layout)),
		deltas:      make([]*matrix.Dense, len(layout)),
	}
	for i, n := range layout {
		retVal.activations[i] = matrix.New(n, 1)
		retVal.deltas[i] = matrix.New(n, 1)
	}
	return retVal
}

// Layout returns the layout the context was built for.
func (c *Context) Layout() Layout { return c.layout }

func (c *Context) check(layer int, m *matrix.Dense) error {
	if layer < 0 || layer >= len(c.layout) {
		return errors.Wrapf(ErrIndex, "layer %d of a %d layer context", layer, len(c.layout))
	}
	if m == nil {
		return nil
	}
	if r, col := m.Dims(); r != c.layout[layer] || col != 1 {
		return errors.Wrapf(ErrShape, "layer %d expects %d×1, got %d×%d", layer, c.layout[layer], r, col)
	}
	return nil
}

// Activation returns the activation of a layer.
func (c *Context) Activation(layer int) (*matrix.Dense, error) {
	if err := c.check(layer, nil); err != nil {
		return nil, err
	}
	return c.activations[layer], nil
}

// SetActivation replaces the activation of a layer.
func (c *Context) SetActivation(layer int, m *matrix.Dense) error {
	if err := c.check(layer, m); err != nil {
		return err
	}
	c.activations[layer] = m
	return nil
}

// Delta returns the node delta of a layer.
func (c *Context) Delta(layer int) (*matrix.Dense, error) {
	if err := c.check(layer, nil); err != nil {
		return nil, err
	}
	return c.deltas[layer], nil
}

// SetDelta replaces the node delta of a layer.
func (c *Context) SetDelta(layer int, m *matrix.Dense) error {
	if err := c.check(layer, m); err != nil {
		return err
	}
	c.deltas[layer] = m
	return nil
}

// Output is the activation of the last layer.
func (c *Context) Output() *matrix.Dense { return c.activations[len(c.activations)-1] }
