// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the Adam and SGD optimizers for nn.Network.
//
// # Overview
//
// This package contains:
//   - Adam: Adaptive Moment Estimation with bias correction
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mlp/nn"
//	    "github.com/born-ml/mlp/optim"
//	)
//
//	func main() {
//	    net, _ := nn.New(nn.Config{Topology: []int{2, 3, 1}, Bias: true})
//	    adam := optim.NewAdam(net, optim.AdamConfig{LR: 0.05})
//
//	    for epoch := range 1000 {
//	        for i := range inputs {
//	            trace, _ := net.Trace(inputs[i])
//	            deltas, _ := net.Backpropagate(trace, targets[i])
//	            _ = adam.Step(trace, deltas)
//	        }
//	    }
//	}
//
// # Adam
//
// Every Step is one sample's update and advances a single timestep shared by
// all layers. Reset zeroes the moments and the timestep; call it whenever the
// network's parameters are replaced.
//
// # SGD
//
// SGD applies lr * gradient per sample, or accumulates a velocity when
// Momentum is non-zero. Pass it to the trainer to replace Adam:
//
//	sgd := optim.NewSGD(net, optim.SGDConfig{LR: 0.5, Momentum: 0.9})
//	trainer, _ := mlp.NewTrainer(net, cfg, mlp.WithOptimizer(sgd))
package optim
