package mjpeg

import (
	"bytes"
	"image/jpeg"
	"log"
	"net/http"

	"github.com/gorgonia/bpnet"
	"github.com/gorgonia/bpnet/encoding"
	"github.com/mattn/go-mjpeg"
	"github.com/pkg/errors"
)

// Encoder publishes one JPEG frame per epoch on an MJPEG stream. It
// implements bpnet.ProgressEncoder and http.Handler.
type Encoder struct {
	*encoding.Renderer

	stream *mjpeg.Stream
	last   []byte
}

func (e *Encoder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.stream.ServeHTTP(w, r)
}

// NewEncoder with height and width
func NewEncoder(h, w int) *Encoder {
	return &Encoder{
		Renderer: encoding.NewRenderer(h, w),
		stream:   mjpeg.NewStream(),
	}
}

// Encode an epoch
func (enc *Encoder) Encode(r bpnet.EpochReport) error {
	var b bytes.Buffer
	if err := jpeg.Encode(&b, enc.Render(r), nil); err != nil {
		log.Println(err)
		return errors.WithStack(err)
	}
	enc.last = b.Bytes()
	if err := enc.stream.Update(enc.last); err != nil {
		log.Println(err)
		return errors.WithStack(err)
	}
	return nil
}

// Last returns the most recent JPEG frame.
func (enc *Encoder) Last() []byte { return enc.last }

func (enc *Encoder) Flush() error { return nil }
