// Package encoding draws epoch reports into images. The gif and mjpeg
// subpackages turn those images into bpnet.ProgressEncoders.
package encoding

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/chewxy/math32"
	"github.com/golang/freetype/truetype"
	"github.com/gorgonia/bpnet"
	"github.com/gorgonia/bpnet/matrix"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
	"gorgonia.org/vecf32"
)

var regular *truetype.Font

const (
	dpi             = 144.0
	fontsize        = 12.0
	lineheight      = 1.2
	dummyLongString = `Epoch 100000, loss 0.000000000000`
	textLines       = 4

	maxCell   = 6
	layerGap  = 4
	rampSteps = 33
)

func init() {
	var err error
	if regular, err = truetype.Parse(gomono.TTF); err != nil {
		panic(err)
	}
}

// Palette holds black, off-white and a blue-white-red ramp. Negative
// weights are blue and positive ones red.
var Palette = func() color.Palette {
	p := color.Palette{color.Gray{0}, color.Gray{253}}
	for i := 0; i < rampSteps; i++ {
		v := 2*float64(i)/(rampSteps-1) - 1
		if v < 0 {
			c := uint8(255 * (1 + v))
			p = append(p, color.RGBA{c, c, 255, 255})
			continue
		}
		c := uint8(255 * (1 - v))
		p = append(p, color.RGBA{255, c, c, 255})
	}
	return p
}()

// HeatIndex is the palette index of a weight normalised into [-1, 1].
func HeatIndex(v float32) uint8 {
	v = math32.Max(-1, math32.Min(1, v))
	return uint8(2 + int((v+1)/2*(rampSteps-1)+0.5))
}

// Normalise returns the weights of w as float32s scaled into [-1, 1] by the largest magnitude.
func Normalise(w *matrix.Dense) []float32 {
	flat := matrix.Flatten(w)
	retVal := make([]float32, len(flat))
	var max float32
	for i, v := range flat {
		retVal[i] = float32(v)
		max = math32.Max(max, math32.Abs(retVal[i]))
	}
	if max > 0 {
		vecf32.Scale(retVal, 1/max)
	}
	return retVal
}

// Lines is the text drawn above the heat maps.
func Lines(r bpnet.EpochReport) []string {
	lines := make([]string, 0, textLines)
	lines = append(lines, fmt.Sprintf("Epoch %d, loss %.12f", r.Epoch, r.Loss))
	if r.HasStdDev {
		lines = append(lines, fmt.Sprintf("stddev %g", r.StdDev))
	} else {
		lines = append(lines, "stddev n/a")
	}
	lines = append(lines, fmt.Sprintf("%v, %d updates", r.Elapsed, r.Updates))
	if r.Perturbed {
		lines = append(lines, "*shake*")
	}
	return lines
}

// Renderer draws one frame per epoch report. The frame size is fixed by the first report.
type Renderer struct {
	H, W int
	font.Drawer

	face font.Face
	cell int

	maxH, maxW  int // maxHeight and maxWidth
	padH, padW  int // padding so everything don't start at the topleft
	initialized bool
}

// NewRenderer creates a Renderer whose frames are at most h by w pixels.
func NewRenderer(h, w int) *Renderer {
	return &Renderer{
		H:    -1,
		W:    -1,
		maxH: h,
		maxW: w,
		padH: 10,
		padW: 10,

		Drawer: font.Drawer{
			Src: image.Black,
		},
	}
}

func lineHeight() int { return int(math.Ceil(fontsize * lineheight * dpi / 72)) }

// heatTop is where the first heat map starts, below the descenders of the last text line.
func (enc *Renderer) heatTop() int { return enc.padH + textLines*lineHeight() + lineHeight()/2 }

func (enc *Renderer) init(r bpnet.EpochReport) {
	enc.face = truetype.NewFace(regular, &truetype.Options{
		Size:    fontsize,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	enc.Drawer.Src = image.Black
	enc.Drawer.Face = enc.face

	// pick the largest cell that still lets the widest layer fit
	enc.cell = maxCell
	var widest, tall int
	for i := 0; i < r.Layout.WeightLayers(); i++ {
		rows, cols := r.Layout.WeightShape(i)
		widest = maxInt(widest, cols)
		tall += rows
	}
	if widest > 0 {
		enc.cell = maxInt(1, minInt(maxCell, (enc.maxW-2*enc.padW)/widest))
	}

	textW := font.MeasureString(enc.face, dummyLongString).Ceil()
	w := maxInt(textW, widest*enc.cell) + 2*enc.padW
	h := textLines*lineHeight() + lineHeight()/2 + tall*enc.cell + r.Layout.WeightLayers()*layerGap + 2*enc.padH

	w = minInt(w, enc.maxW)
	h = minInt(h, enc.maxH)
	if w == enc.maxW {
		enc.padW = 0
	}
	if h == enc.maxH {
		enc.padH = 0
	}
	enc.H = h
	enc.W = w
	enc.initialized = true
}

// Render draws r.
func (enc *Renderer) Render(r bpnet.EpochReport) *image.Paletted {
	if !enc.initialized {
		enc.init(r)
	}
	im := image.NewPaletted(image.Rect(0, 0, enc.W, enc.H), Palette)
	draw.Draw(im, im.Bounds(), image.NewUniform(Palette[1]), image.Point{}, draw.Src)

	dy := lineHeight()
	y := enc.padH + dy
	enc.Dst = im
	for _, s := range Lines(r) {
		enc.Dot = fixed.P(enc.padW, y)
		enc.DrawString(s)
		y += dy
	}

	y = enc.heatTop()
	for _, w := range r.Weights {
		rows, cols := w.Dims()
		vals := Normalise(w)
		for j := 0; j < rows; j++ {
			for k := 0; k < cols; k++ {
				idx := HeatIndex(vals[j*cols+k])
				x0, y0 := enc.padW+k*enc.cell, y+j*enc.cell
				for py := y0; py < y0+enc.cell; py++ {
					for px := x0; px < x0+enc.cell; px++ {
						im.SetColorIndex(px, py, idx)
					}
				}
			}
		}
		y += rows*enc.cell + layerGap
	}
	return im
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
