package encoding

import (
	"testing"
	"time"

	"github.com/gorgonia/bpnet"
	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/stretchr/testify/assert"
)

func report(epoch int, perturbed bool) bpnet.EpochReport {
	w0, _ := matrix.NewFromSlice(2, 2, []float64{1, -1, 0.5, 0})
	w1, _ := matrix.NewFromSlice(1, 2, []float64{-2, 2})
	return bpnet.EpochReport{
		Epoch:     epoch,
		Loss:      0.25,
		StdDev:    0.01,
		HasStdDev: epoch > 1,
		Elapsed:   3 * time.Millisecond,
		Perturbed: perturbed,
		Updates:   4,
		Layout:    fcn.Layout{2, 2, 1},
		Weights:   []*matrix.Dense{w0, w1},
	}
}

func TestHeatIndex(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint8(2), HeatIndex(-1))
	assert.Equal(uint8(2+rampSteps/2), HeatIndex(0))
	assert.Equal(uint8(2+rampSteps-1), HeatIndex(1))
	assert.Equal(HeatIndex(1), HeatIndex(7), "clamped")
	assert.Len(Palette, 2+rampSteps)
}

func TestNormalise(t *testing.T) {
	w, _ := matrix.NewFromSlice(1, 4, []float64{2, -4, 1, 0})
	assert.Equal(t, []float32{0.5, -1, 0.25, 0}, Normalise(w))
	assert.Equal(t, []float32{0, 0}, Normalise(matrix.New(2, 1)))
}

func TestLines(t *testing.T) {
	assert := assert.New(t)
	lines := Lines(report(1, false))
	assert.Len(lines, 3)
	assert.Equal("stddev n/a", lines[1])
	lines = Lines(report(2, true))
	assert.Len(lines, 4)
	assert.Equal("*shake*", lines[3])
}

func TestRender(t *testing.T) {
	assert := assert.New(t)
	r := NewRenderer(600, 800)
	im := r.Render(report(1, false))
	assert.Equal(r.W, im.Bounds().Dx())
	assert.Equal(r.H, im.Bounds().Dy())
	assert.True(r.W <= 800 && r.H <= 600)

	// the first weight cell is the largest positive weight of layer 0
	x, y := r.padW, r.heatTop()
	assert.Equal(HeatIndex(1), im.ColorIndexAt(x, y))
	assert.Equal(HeatIndex(-1), im.ColorIndexAt(x+r.cell, y))

	// later frames keep the size of the first
	im2 := r.Render(report(2, true))
	assert.Equal(im.Bounds(), im2.Bounds())

	small := NewRenderer(40, 50)
	im3 := small.Render(report(1, false))
	assert.Equal(50, im3.Bounds().Dx())
	assert.Equal(40, im3.Bounds().Dy())
}
