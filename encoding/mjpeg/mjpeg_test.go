package mjpeg

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/gorgonia/bpnet"
	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/stretchr/testify/assert"
)

func TestEncoder(t *testing.T) {
	assert := assert.New(t)
	enc := NewEncoder(200, 300)
	w, _ := matrix.NewFromSlice(2, 2, []float64{1, 0, 0, -1})

	assert.Nil(enc.Last())
	r := bpnet.EpochReport{Epoch: 1, Loss: 0.5, Layout: fcn.Layout{2, 2}, Weights: []*matrix.Dense{w}}
	if err := enc.Encode(r); err != nil {
		t.Fatalf("%+v", err)
	}
	im, err := jpeg.Decode(bytes.NewReader(enc.Last()))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(enc.W, im.Bounds().Dx())
	assert.Equal(enc.H, im.Bounds().Dy())
	assert.NoError(enc.Flush())
}
