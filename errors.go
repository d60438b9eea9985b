package bpnet

import (
	fcn "github.com/gorgonia/bpnet/fcnet"
	"github.com/pkg/errors"
)

var (
	// ErrConfig is the cause of every invalid hyperparameter or training setup.
	ErrConfig = errors.New("invalid configuration")

	// ErrCountMismatch is returned when the number of inputs and desired outputs differ.
	ErrCountMismatch = fcn.ErrCountMismatch

	// ErrRNG is returned when no random source could be seeded.
	ErrRNG = errors.New("no random source")

	// ErrStatistics is returned by StandardDeviation on unusable data.
	ErrStatistics = errors.New("statistics argument error")
)
