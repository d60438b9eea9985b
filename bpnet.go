// Package bpnet trains fully connected feed-forward networks by mini-batch
// back-propagation.
//
// Every batch is split into one contiguous sub-batch per worker. Each
// sub-batch task runs forward and backward passes against its own
// fcn.Context and its own gradient buffer, then hands the buffer back to the
// trainer. Once all tasks of the batch are done, the trainer sums the buffers,
// averages them over the batch and applies them to the network. No task of
// the next batch starts before that update is applied.
package bpnet

import (
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/gorgonia/bpnet/internal/entropy"
	"github.com/gorgonia/bpnet/matrix"
	"github.com/gorgonia/bpnet/workers"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Backpropagator trains a Model.
type Backpropagator struct {
	Config

	net    Model
	layout fcn.Layout
	pool   *workers.Pool
	rand   *rand.Rand
	logger *log.Logger
	enc    ProgressEncoder
	stats  Statistics
}

// New creates a Backpropagator for net and starts its worker pool. Close it when done.
func New(net Model, conf Config) (*Backpropagator, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	layout := net.Layout()
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	retVal := &Backpropagator{
		Config: conf,
		net:    net,
		layout: layout,
		pool:   workers.New(conf.Workers),
		logger: log.New(os.Stderr, "", log.Ltime),
		stats:  makeStatistics(),
	}
	if conf.Seed != 0 {
		retVal.rand = rand.New(rand.NewSource(conf.Seed))
	}
	return retVal, nil
}

// SetRand sets the source of the per-epoch shuffle.
func (b *Backpropagator) SetRand(r *rand.Rand) { b.rand = r }

func (b *Backpropagator) SetLogger(l *log.Logger) { b.logger = l }

// SetEncoder registers an encoder that receives a report after every epoch.
func (b *Backpropagator) SetEncoder(enc ProgressEncoder) { b.enc = enc }

// Statistics returns the record of every epoch trained so far.
func (b *Backpropagator) Statistics() *Statistics { return &b.stats }

// resizePool restarts the worker pool when Workers was changed after New.
func (b *Backpropagator) resizePool() {
	want := b.Workers
	if want <= 0 {
		want = runtime.NumCPU()
	}
	if want == b.pool.Workers() {
		return
	}
	if err := b.pool.Close(); err != nil {
		b.logger.Printf("closing the old worker pool: %v", err)
	}
	b.pool = workers.New(want)
}

// Close stops the worker pool.
func (b *Backpropagator) Close() error { return b.pool.Close() }

// Train runs epochs over inputs until the configured number of epochs is
// exhausted or the average epoch loss falls below the target loss.
// inputs[i] is a (layout[0], 1) column and desired[i] a (layout[last], 1) column.
func (b *Backpropagator) Train(inputs, desired []*matrix.Dense) (Result, error) {
	var res Result
	if len(inputs) != len(desired) {
		return res, errors.Wrapf(ErrCountMismatch, "%d inputs, %d desired outputs", len(inputs), len(desired))
	}
	if err := b.Config.Validate(); err != nil {
		return res, err
	}
	b.resizePool()
	batch := b.batchSize()
	if batch > len(inputs) {
		return res, errors.Wrapf(ErrConfig, "batch size %d exceeds the %d samples", batch, len(inputs))
	}
	if b.rand == nil {
		r, err := entropy.New()
		if err != nil {
			return res, errors.WithMessage(ErrRNG, err.Error())
		}
		b.rand = r
	}

	b.logParams(len(inputs))
	history := NewLossHistory(b.HistorySize)
	for epoch := 1; epoch <= b.Epochs; epoch++ {
		start := time.Now()
		loss, updates, err := b.epoch(inputs, desired, batch)
		if err != nil {
			return res, errors.WithMessagef(err, "epoch %d", epoch)
		}
		res.Epochs = epoch
		res.Loss = loss
		res.Updates += updates

		report := EpochReport{
			Epoch:   epoch,
			Loss:    loss,
			Elapsed: time.Since(start),
			Samples: len(inputs),
			Updates: updates,
		}
		if loss < b.TargetLoss {
			res.Reached = true
			b.logger.Printf("Epoch %d: loss %v, %v elapsed. Target loss %v reached", epoch, loss, report.Elapsed, b.TargetLoss)
			b.report(report)
			break
		}

		history.Push(loss)
		if history.Len() >= 2 {
			sd, err := history.StdDev()
			if err != nil {
				b.logger.Printf("Epoch %d: %v", epoch, err)
			} else {
				report.StdDev, report.HasStdDev = sd, true
			}
		}
		b.logger.Printf("Epoch %d: loss %v, stddev %v, %v elapsed", epoch, loss, report.StdDev, report.Elapsed)

		// a stddev of exactly 0 says nothing about a plateau
		if report.HasStdDev && report.StdDev > 0 && report.StdDev < b.ShakeThreshold {
			b.net.PerturbWeight()
			report.Perturbed = true
			b.logger.Printf("*shake*")
		}
		b.report(report)
	}
	if !res.Reached {
		b.logger.Printf("Ran out of epochs after %d. Loss %v", res.Epochs, res.Loss)
	}
	if b.enc != nil {
		if err := b.enc.Flush(); err != nil {
			b.logger.Printf("Flushing progress encoder: %v", err)
		}
	}
	return res, nil
}

func (b *Backpropagator) logParams(samples int) {
	b.logger.Printf("Training %v on %d samples", b.layout, samples)
	b.logger.Printf("\tLearning rate:  %v", b.LearningRate)
	b.logger.Printf("\tEpochs:         %d", b.Epochs)
	b.logger.Printf("\tTarget loss:    %v", b.TargetLoss)
	b.logger.Printf("\tTraining mode:  %v", b.Mode)
	b.logger.Printf("\tBatch size:     %d", b.batchSize())
	b.logger.Printf("\tWorkers:        %d", b.pool.Workers())
}

func (b *Backpropagator) report(r EpochReport) {
	b.stats.update(r)
	if b.enc == nil {
		return
	}
	r.Layout = b.layout.Clone()
	r.Weights = make([]*matrix.Dense, b.layout.WeightLayers())
	for i := range r.Weights {
		w, err := b.net.Weight(i)
		if err != nil {
			b.logger.Printf("Snapshot of weight layer %d: %v", i, err)
			return
		}
		r.Weights[i] = w.Clone()
	}
	if err := b.enc.Encode(r); err != nil {
		b.logger.Printf("Encoding epoch %d: %v", r.Epoch, err)
	}
}

// epoch shuffles the samples, trains on every batch and returns the average
// sample loss together with the number of updates applied.
func (b *Backpropagator) epoch(inputs, desired []*matrix.Dense, batch int) (loss float64, updates int, err error) {
	order := b.rand.Perm(len(inputs))
	var total float64
	for start := 0; start < len(order); start += batch {
		end := start + batch
		if end > len(order) {
			end = len(order)
		}
		grads, batchLoss, n, err := b.batch(order[start:end], inputs, desired)
		if err != nil {
			return 0, updates, err
		}
		total += batchLoss
		err = b.apply(grads, n)
		returnGradients(b.layout, grads)
		if err != nil {
			return 0, updates, err
		}
		updates++
	}
	return total / float64(len(inputs)), updates, nil
}

// subResult is what a sub-batch task hands back.
type subResult struct {
	grads [][]float64
	loss  float64
	n     int
}

// batch runs one task per non-empty sub-batch of idx and sums their results
// once all of them are done. The returned buffer must be given back with returnGradients.
func (b *Backpropagator) batch(idx []int, inputs, desired []*matrix.Dense) (grads [][]float64, loss float64, n int, err error) {
	spans := partition(len(idx), b.pool.Workers())
	results := make(chan subResult, len(spans))
	for _, s := range spans {
		if s.len() == 0 {
			continue
		}
		sub := idx[s.start:s.end]
		if err = b.pool.Enqueue(func() error {
			res, err := b.subBatch(sub, inputs, desired)
			if err != nil {
				returnGradients(b.layout, res.grads)
				return err
			}
			results <- res
			return nil
		}); err != nil {
			break
		}
	}
	// the barrier. Nothing may touch the weights before every task is done.
	if errs := workers.Errors(b.pool.Wait()); len(errs) > 0 {
		if len(errs) > 1 {
			b.logger.Printf("%d sub-batch tasks failed", len(errs))
		}
		if err == nil {
			err = errs[0]
		}
	}
	close(results)

	if err != nil {
		for res := range results {
			returnGradients(b.layout, res.grads)
		}
		return nil, 0, 0, err
	}

	grads = borrowGradients(b.layout)
	for res := range results {
		for i := range grads {
			floats.Add(grads[i], res.grads[i])
		}
		loss += res.loss
		n += res.n
		returnGradients(b.layout, res.grads)
	}
	return grads, loss, n, nil
}

// subBatch trains on the samples in idx using its own context and gradient buffer.
func (b *Backpropagator) subBatch(idx []int, inputs, desired []*matrix.Dense) (subResult, error) {
	res := subResult{grads: borrowGradients(b.layout)}
	ctx := fcn.NewContext(b.layout)
	for _, i := range idx {
		if err := b.net.Forward(inputs[i], ctx); err != nil {
			return res, errors.WithMessagef(err, "sample %d", i)
		}
		l, err := meanSquaredError(desired[i], ctx.Output())
		if err != nil {
			return res, errors.WithMessagef(err, "sample %d", i)
		}
		if err := backward(b.net, ctx, desired[i], b.LearningRate, res.grads); err != nil {
			return res, errors.WithMessagef(err, "sample %d", i)
		}
		res.loss += l
		res.n++
	}
	return res, nil
}

// apply averages grads over n samples and adds them to the weights.
func (b *Backpropagator) apply(grads [][]float64, n int) error {
	deltas := make([]*matrix.Dense, len(grads))
	for i, g := range grads {
		if n > 1 {
			floats.Scale(1/float64(n), g)
		}
		r, c := b.layout.WeightShape(i)
		d, err := matrix.NewFromSlice(r, c, g)
		if err != nil {
			return err
		}
		deltas[i] = d
	}
	return b.net.UpdateWeights(deltas)
}
