package gif

import (
	"image/gif"
	"io"

	"github.com/gorgonia/bpnet"
	"github.com/gorgonia/bpnet/encoding"
	"github.com/pkg/errors"
)

const (
	delay      = 10  // hundredths of a second per epoch
	shakeDelay = 100 // epochs that shook the weights are held longer
)

// Encoder collects one frame per epoch and writes an animated GIF on Flush.
// It implements bpnet.ProgressEncoder.
type Encoder struct {
	*encoding.Renderer
	io.Writer

	out *gif.GIF
}

// NewGifEncoder with height and width
func NewGifEncoder(h, w int) *Encoder {
	return &Encoder{
		Renderer: encoding.NewRenderer(h, w),
		out:      &gif.GIF{LoopCount: -1},
	}
}

// Encode an epoch
func (enc *Encoder) Encode(r bpnet.EpochReport) error {
	d := delay
	if r.Perturbed {
		d = shakeDelay
	}
	enc.out.Image = append(enc.out.Image, enc.Render(r))
	enc.out.Delay = append(enc.out.Delay, d)
	return nil
}

// Frames is the number of epochs encoded so far.
func (enc *Encoder) Frames() int { return len(enc.out.Image) }

// Flush writes the gif into the writer
func (enc *Encoder) Flush() error {
	if enc.Writer == nil {
		return errors.New("gif encoder has no writer")
	}
	if len(enc.out.Image) == 0 {
		return nil
	}
	return errors.WithStack(gif.EncodeAll(enc.Writer, enc.out))
}
