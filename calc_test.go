package bpnet

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/stretchr/testify/assert"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestMeanSquaredError(t *testing.T) {
	l, err := meanSquaredError(matrix.NewColumn(1, 0, 0, 1), matrix.NewColumn(0.5, 0.5, 0, 1))
	assert.NoError(t, err)
	assert.InDelta(t, 0.125, l, 1e-12)

	_, err = meanSquaredError(matrix.NewColumn(1), matrix.NewColumn(1, 2))
	assert.Error(t, err)
}

// The backward pass must agree with symbolic differentiation of
// 0.5 * sum((desired - output)^2) up to the sign: it produces the descent step.
func TestBackwardMatchesAutodiff(t *testing.T) {
	layout := fcn.Layout{2, 3, 1}
	w0 := []float64{0.1, -0.2, 0.4, 0.3, -0.5, 0.25}
	w1 := []float64{0.7, -0.6, 0.2}
	x := []float64{0.9, -0.4}
	d := []float64{1}

	// hand written
	m0, _ := matrix.NewFromSlice(3, 2, w0)
	m1, _ := matrix.NewFromSlice(1, 3, w1)
	net, err := fcn.New(layout, fcn.WithWeights([]*matrix.Dense{m0, m1}))
	if err != nil {
		t.Fatal(err)
	}
	ctx := fcn.NewContext(layout)
	if err := net.Forward(matrix.NewColumn(x...), ctx); err != nil {
		t.Fatal(err)
	}
	grads := makeGradients(layout)
	if err := backward(net, ctx, matrix.NewColumn(d...), 1, grads); err != nil {
		t.Fatalf("%+v", err)
	}

	// symbolic
	g := G.NewGraph()
	mat := func(name string, r, c int, data []float64) *G.Node {
		backing := make([]float64, len(data))
		copy(backing, data)
		return G.NewMatrix(g, G.Float64, G.WithShape(r, c), G.WithName(name),
			G.WithValue(tensor.New(tensor.WithShape(r, c), tensor.WithBacking(backing))))
	}
	gw0 := mat("w0", 3, 2, w0)
	gw1 := mat("w1", 1, 3, w1)
	gx := mat("x", 2, 1, x)
	gd := mat("d", 1, 1, d)

	hidden := G.Must(G.Sigmoid(G.Must(G.Mul(gw0, gx))))
	out := G.Must(G.Sigmoid(G.Must(G.Mul(gw1, hidden))))
	diff := G.Must(G.Sub(gd, out))
	cost := G.Must(G.Mul(G.Must(G.Sum(G.Must(G.Square(diff)))), G.NewConstant(0.5)))
	if _, err := G.Grad(cost, gw0, gw1); err != nil {
		t.Fatal(err)
	}
	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}

	want := make([][]float64, 2)
	for i, n := range []*G.Node{gw0, gw1} {
		gv, err := n.Grad()
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range gv.Data().([]float64) {
			want[i] = append(want[i], -v)
		}
	}
	if !cmp.Equal(want, grads, cmpopts.EquateApprox(0, 1e-9)) {
		t.Errorf("backward differs from autodiff:\n%v", cmp.Diff(want, grads, cmpopts.EquateApprox(0, 1e-9)))
	}
}

func TestGradientAccumulationCommutes(t *testing.T) {
	layout := fcn.Layout{4, 5, 3}
	net, _ := fcn.New(layout, fcn.WithRand(rand.New(rand.NewSource(21))))
	inputs, desired := randomSamples(rand.New(rand.NewSource(22)), layout, 9)

	accumulate := func(order []int) [][]float64 {
		grads := makeGradients(layout)
		ctx := fcn.NewContext(layout)
		for _, i := range order {
			if err := net.Forward(inputs[i], ctx); err != nil {
				t.Fatal(err)
			}
			if err := backward(net, ctx, desired[i], 0.3, grads); err != nil {
				t.Fatal(err)
			}
		}
		return grads
	}

	forward := accumulate([]int{0, 1, 2, 3, 4, 5, 6, 7, 8})
	shuffled := accumulate(rand.New(rand.NewSource(23)).Perm(9))
	if !cmp.Equal(forward, shuffled, cmpopts.EquateApprox(0, 1e-12)) {
		t.Errorf("accumulation depends on order:\n%v", cmp.Diff(forward, shuffled, cmpopts.EquateApprox(0, 1e-12)))
	}
}

func TestGradientPool(t *testing.T) {
	layout := fcn.Layout{3, 2}
	g := borrowGradients(layout)
	assert.Len(t, g, 1)
	assert.Len(t, g[0], 6)
	g[0][3] = 42
	returnGradients(layout, g)

	// whatever comes back is zeroed
	g2 := borrowGradients(layout)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, g2[0])
}
