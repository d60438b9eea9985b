package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorgonia/bpnet"
	"github.com/gorilla/websocket"
)

// progress is what the browser receives for every epoch.
type progress struct {
	Epoch     int     `json:"epoch"`
	Loss      float64 `json:"loss"`
	StdDev    float64 `json:"stddev,omitempty"`
	Elapsed   string  `json:"elapsed"`
	Perturbed bool    `json:"perturbed,omitempty"`
	Updates   int     `json:"updates"`
}

// Encoder pushes every epoch report as JSON to the websocket clients. Reports
// are dropped while nobody listens, so training never waits on the browser.
type Encoder struct {
	info chan progress
}

var upgrader = websocket.Upgrader{} // use default options

func (enc *Encoder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer c.Close()
	for {
		var p progress
		select {
		case p = <-enc.info:
		case <-r.Context().Done():
			return
		}
		b, err := json.Marshal(p)
		if err != nil {
			log.Println("marshal:", err)
			return
		}
		c.SetWriteDeadline(time.Now().Add(time.Second))
		if err = c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Println("write:", err)
			return
		}
	}
}

// NewEncoder creates an Encoder buffering up to n reports.
func NewEncoder(n int) *Encoder {
	return &Encoder{info: make(chan progress, n)}
}

// Encode an epoch
func (enc *Encoder) Encode(r bpnet.EpochReport) error {
	p := progress{
		Epoch:     r.Epoch,
		Loss:      r.Loss,
		Elapsed:   r.Elapsed.String(),
		Perturbed: r.Perturbed,
		Updates:   r.Updates,
	}
	if r.HasStdDev {
		p.StdDev = r.StdDev
	}
	select {
	case enc.info <- p:
	default:
	}
	return nil
}

// Flush ...
func (enc *Encoder) Flush() error { return nil }

// encoders fans every report out to all of its members.
type encoders []bpnet.ProgressEncoder

func (es encoders) Encode(r bpnet.EpochReport) error {
	var errs manyErr
	for _, e := range es {
		if err := e.Encode(r); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (es encoders) Flush() error {
	var errs manyErr
	for _, e := range es {
		if err := e.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type manyErr []error

func (err manyErr) Error() string {
	if len(err) == 1 {
		return err[0].Error()
	}
	return fmt.Sprintf("%d encoders failed, first: %v", len(err), err[0])
}
