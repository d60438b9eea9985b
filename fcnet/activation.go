package fcn

import (
	"fmt"
	"math"
)

// Activation enumerates the supported nonlinearities.
type Activation byte

const (
	Sigmoid Activation = iota
	Tanh
	ReLU
	MAXACTIVATION
)

// IsValid reports whether a is one of the supported activations.
func (a Activation) IsValid() bool { return a < MAXACTIVATION }

func (a Activation) String() string {
	switch a {
	case Sigmoid:
		return "sigmoid"
	case Tanh:
		return "tanh"
	case ReLU:
		return "relu"
	}
	return fmt.Sprintf("Activation(%d)", byte(a))
}

// Func returns the activation function f.
func (a Activation) Func() func(float64) float64 {
	switch a {
	case Sigmoid:
		return sigmoid
	case Tanh:
		return math.Tanh
	case ReLU:
		return relu
	}
	panic(fmt.Sprintf("unsupported activation %v", a))
}

// Derivative returns f' expressed in terms of the activation output y = f(x),
// which is what a computation context holds.
func (a Activation) Derivative() func(float64) float64 {
	switch a {
	case Sigmoid:
		return sigmoidPrime
	case Tanh:
		return tanhPrime
	case ReLU:
		return reluPrime
	}
	panic(fmt.Sprintf("unsupported activation %v", a))
}

func sigmoid(x float64) float64      { return 1 / (1 + math.Exp(-x)) }
func sigmoidPrime(y float64) float64 { return y * (1 - y) }
func tanhPrime(y float64) float64    { return 1 - y*y }

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func reluPrime(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}
