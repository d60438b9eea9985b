package main

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorgonia/bpnet"
	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestEncoderStreams(t *testing.T) {
	assert := assert.New(t)
	enc := NewEncoder(4)
	srv := httptest.NewServer(enc)
	defer srv.Close()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	assert.NoError(enc.Encode(bpnet.EpochReport{Epoch: 3, Loss: 0.25, StdDev: 0.1, HasStdDev: true, Elapsed: time.Second, Updates: 2}))
	c.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := c.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var p progress
	if err := json.Unmarshal(msg, &p); err != nil {
		t.Fatal(err)
	}
	assert.Equal(progress{Epoch: 3, Loss: 0.25, StdDev: 0.1, Elapsed: "1s", Updates: 2}, p)
}

func TestEncoderNeverBlocks(t *testing.T) {
	enc := NewEncoder(1)
	for i := 0; i < 10; i++ {
		assert.NoError(t, enc.Encode(bpnet.EpochReport{Epoch: i}))
	}
	assert.Len(t, enc.info, 1)
}

type counting struct {
	n   int
	err error
}

func (c *counting) Encode(bpnet.EpochReport) error { c.n++; return c.err }
func (c *counting) Flush() error                   { return c.err }

func TestEncodersFanOut(t *testing.T) {
	assert := assert.New(t)
	ok, bad := new(counting), &counting{err: errors.New("boom")}
	es := encoders{ok, bad}

	err := es.Encode(bpnet.EpochReport{})
	assert.EqualError(err, "boom")
	assert.Equal(1, ok.n)
	assert.Equal(1, bad.n)
	assert.EqualError(es.Flush(), "boom")

	assert.NoError(encoders{ok}.Encode(bpnet.EpochReport{}))
	assert.EqualError(manyErr{errors.New("a"), errors.New("b")}, "2 encoders failed, first: a")
}

func TestDataset(t *testing.T) {
	inputs, desired, err := dataset()
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, inputs, 4)
	assert.Equal(t, []float64{0, 1}, matrix.Flatten(inputs[1]))
	assert.Equal(t, []float64{1, 1}, matrix.Flatten(inputs[3]))
	assert.Equal(t, []float64{1, 0}, matrix.Flatten(desired[0]))
	assert.Equal(t, []float64{0, 1}, matrix.Flatten(desired[1]))
}

func TestActivationFlag(t *testing.T) {
	a, err := activation("TanH")
	assert.NoError(t, err)
	assert.Equal(t, fcn.Tanh, a)
	_, err = activation("softmax")
	assert.Equal(t, fcn.ErrActivation, errors.Cause(err))
}
