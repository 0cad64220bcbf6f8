// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/mlp/internal/nn"
)

// Network is a fully-connected multi-layer perceptron.
type Network = nn.Network

// Config describes a network to build.
type Config = nn.Config

// New builds a network with weights and biases drawn uniformly from
// [-0.5, 0.5).
//
// Example:
//
//	net, err := nn.New(nn.Config{Topology: []int{2, 3, 1}, Bias: true})
func New(cfg Config) (*Network, error) {
	return nn.New(cfg)
}

// Errors

var (
	// ErrShapeMismatch reports an input, target or parameter of the wrong width.
	ErrShapeMismatch = nn.ErrShapeMismatch
	// ErrInvalidTopology reports fewer than two layers or a non-positive width.
	ErrInvalidTopology = nn.ErrInvalidTopology
)

// Activations

// ActivationKind enumerates the supported activations.
type ActivationKind = nn.ActivationKind

// Activation is a resolved activation function, its derivative and an
// optional output-layer vector function.
type Activation = nn.Activation

// Supported activations.
const (
	Sigmoid   = nn.Sigmoid
	ReLU      = nn.ReLU
	Tanh      = nn.Tanh
	LeakyReLU = nn.LeakyReLU
	ELU       = nn.ELU
	Swish     = nn.Swish
	Softmax   = nn.Softmax
)

// ParseActivation maps a configuration name to its kind, falling back to
// Sigmoid.
func ParseActivation(name string) ActivationKind {
	return nn.ParseActivation(name)
}

// SoftmaxVector computes a numerically stable softmax.
func SoftmaxVector(v []float64) []float64 {
	return nn.SoftmaxVector(v)
}

// Loss functions

// LossKind enumerates the supported loss functions.
type LossKind = nn.LossKind

// Loss is a resolved loss and its derivative.
type Loss = nn.Loss

// Supported losses.
const (
	MeanSquaredError = nn.MeanSquaredError
	CrossEntropy     = nn.CrossEntropy
)

// ParseLoss maps a configuration name to its kind, falling back to MSE.
func ParseLoss(name string) LossKind {
	return nn.ParseLoss(name)
}

// MSE computes the mean squared error.
func MSE(predicted, actual []float64) float64 {
	return nn.MSE(predicted, actual)
}

// CrossEntropyLoss computes the clamped cross-entropy.
func CrossEntropyLoss(predicted, actual []float64) float64 {
	return nn.CrossEntropyLoss(predicted, actual)
}
