package bpnet

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// StandardDeviation returns the population standard deviation of values.
// It fails with ErrStatistics on fewer than two values or on NaN/Inf input.
func StandardDeviation(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, errors.Wrapf(ErrStatistics, "need at least 2 values, got %d", len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errors.Wrapf(ErrStatistics, "value %d is %v", i, v)
		}
	}
	sd := math.Sqrt(stat.Moment(2, values, nil))
	if math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0, errors.Wrapf(ErrStatistics, "standard deviation overflowed")
	}
	return sd, nil
}

// LossHistory is a bounded FIFO of epoch losses. Pushing beyond the capacity evicts the oldest entry.
type LossHistory struct {
	vals []float64
	cap  int
}

func NewLossHistory(capacity int) *LossHistory {
	return &LossHistory{vals: make([]float64, 0, capacity), cap: capacity}
}

func (h *LossHistory) Push(loss float64) {
	if len(h.vals) == h.cap {
		copy(h.vals, h.vals[1:])
		h.vals = h.vals[:len(h.vals)-1]
	}
	h.vals = append(h.vals, loss)
}

func (h *LossHistory) Len() int { return len(h.vals) }

// Values returns a copy of the history, oldest first.
func (h *LossHistory) Values() []float64 {
	retVal := make([]float64, len(h.vals))
	copy(retVal, h.vals)
	return retVal
}

// StdDev is StandardDeviation over the current history.
func (h *LossHistory) StdDev() (float64, error) { return StandardDeviation(h.vals) }

// Statistics records every epoch of every training session run by a Backpropagator.
type Statistics struct {
	Epochs    []int
	Losses    []float64
	StdDevs   []float64 // NaN when the history was too short
	Elapsed   []time.Duration
	Perturbed []bool
}

func makeStatistics() Statistics {
	return Statistics{
		Epochs:    make([]int, 0, 64),
		Losses:    make([]float64, 0, 64),
		StdDevs:   make([]float64, 0, 64),
		Elapsed:   make([]time.Duration, 0, 64),
		Perturbed: make([]bool, 0, 64),
	}
}

func (s *Statistics) update(r EpochReport) {
	sd := math.NaN()
	if r.HasStdDev {
		sd = r.StdDev
	}
	s.Epochs = append(s.Epochs, r.Epoch)
	s.Losses = append(s.Losses, r.Loss)
	s.StdDevs = append(s.StdDevs, sd)
	s.Elapsed = append(s.Elapsed, r.Elapsed)
	s.Perturbed = append(s.Perturbed, r.Perturbed)
}

// Len is the number of recorded epochs.
func (s *Statistics) Len() int { return len(s.Epochs) }

// WriteCSV writes one header line followed by one record per epoch.
func (s *Statistics) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"epoch", "loss", "stddev", "elapsed_ms", "perturbed"}); err != nil {
		return errors.WithStack(err)
	}
	records := make([][]string, 0, len(s.Epochs))
	for i := range s.Epochs {
		var sd string
		if !math.IsNaN(s.StdDevs[i]) {
			sd = strconv.FormatFloat(s.StdDevs[i], 'g', -1, 64)
		}
		records = append(records, []string{
			strconv.Itoa(s.Epochs[i]),
			strconv.FormatFloat(s.Losses[i], 'g', -1, 64),
			sd,
			strconv.FormatInt(s.Elapsed[i].Milliseconds(), 10),
			strconv.FormatBool(s.Perturbed[i]),
		})
	}
	// WriteAll flushes
	return errors.WithStack(cw.WriteAll(records))
}

// Dump writes the statistics as CSV into filename.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.WriteCSV(f)
}
