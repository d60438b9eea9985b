package bpnet

import (
	"time"

	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/matrix"
)

// Model is the network being trained. *fcn.Network implements it.
//
// Forward, Weight and Activation are called concurrently from the sub-batch
// tasks of one batch. UpdateWeights and PerturbWeight are only called between
// batches, when no task is running.
type Model interface {
	Layout() fcn.Layout
	Activation() fcn.Activation
	Forward(input *matrix.Dense, ctx *fcn.Context) error
	Weight(layer int) (*matrix.Dense, error)
	UpdateWeights(deltas []*matrix.Dense) error
	PerturbWeight()
}

// Result summarises one call to Train.
type Result struct {
	Epochs  int     // epochs run
	Loss    float64 // average loss of the last epoch
	Reached bool    // training stopped because Loss fell below the target loss
	Updates int     // weight updates applied
}

// EpochReport describes one finished epoch.
type EpochReport struct {
	Epoch     int
	Loss      float64
	StdDev    float64 // rolling standard deviation of the loss history
	HasStdDev bool    // false while the history is too short
	Elapsed   time.Duration
	Perturbed bool // the weights were shaken after this epoch
	Samples   int
	Updates   int

	Layout  fcn.Layout
	Weights []*matrix.Dense // snapshot taken after the epoch
}

// ProgressEncoder encodes every epoch report as whatever.
//
// The GIF and MJPEG encoders are examples. Another example would be a logger.
type ProgressEncoder interface {
	Encode(r EpochReport) error
	Flush() error
}
