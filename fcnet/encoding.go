package fcn

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/gorgonia/bpnet/matrix"
	"github.com/pkg/errors"
)

// GobEncode writes the layout, the activation and every weight matrix in row-major order.
func (n *Network) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode([]int(n.layout)); err != nil {
		return nil, err
	}
	if err := enc.Encode(byte(n.act)); err != nil {
		return nil, err
	}
	for _, w := range n.weights {
		if err := enc.Encode(matrix.Flatten(w)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// GobDecode replaces n with the network held in p.
func (n *Network) GobDecode(p []byte) error {
	dec := gob.NewDecoder(bytes.NewBuffer(p))
	var layout []int
	if err := dec.Decode(&layout); err != nil {
		return errors.Wrap(err, "decoding layout")
	}
	if err := Layout(layout).Validate(); err != nil {
		return err
	}
	var act byte
	if err := dec.Decode(&act); err != nil {
		return errors.Wrap(err, "decoding activation")
	}
	if !Activation(act).IsValid() {
		return errors.Wrapf(ErrActivation, "%v", Activation(act))
	}

	l := Layout(layout)
	weights := make([]*matrix.Dense, l.WeightLayers())
	for i := range weights {
		var data []float64
		if err := dec.Decode(&data); err != nil {
			return errors.Wrapf(err, "decoding weight layer %d", i)
		}
		r, c := l.WeightShape(i)
		w, err := matrix.NewFromSlice(r, c, data)
		if err != nil {
			return errors.Wrapf(err, "weight layer %d", i)
		}
		weights[i] = w
	}

	n.layout = l
	n.act = Activation(act)
	n.weights = weights
	return nil
}

// Save writes n to w.
func Save(w io.Writer, n *Network) error {
	return errors.WithStack(gob.NewEncoder(w).Encode(n))
}

// Load reads a network written by Save.
func Load(r io.Reader) (*Network, error) {
	n := new(Network)
	if err := gob.NewDecoder(r).Decode(n); err != nil {
		return nil, errors.WithStack(err)
	}
	return n, nil
}
