// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/mlp/internal/optim"
)

// Optimizer applies per-sample parameter updates.
type Optimizer = optim.Optimizer

// Parameters is the view of a network an optimizer updates.
type Parameters = optim.Parameters

// SGD implements stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// Adam implements the Adam optimizer.
type Adam = optim.Adam

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// ErrStateMismatch reports moments that no longer match the parameters.
var ErrStateMismatch = optim.ErrStateMismatch

// NewAdam creates a new Adam optimizer.
//
// Example:
//
//	optimizer := optim.NewAdam(net, optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
func NewAdam(params Parameters, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(net, optim.SGDConfig{LR: 0.01, Momentum: 0.9})
func NewSGD(params Parameters, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}
