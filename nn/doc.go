// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a fully-connected multi-layer perceptron.
//
// # Overview
//
// This package contains:
//   - Network: forward pass, per-layer trace and backpropagation
//   - Activations: Sigmoid, ReLU, Tanh, LeakyReLU, ELU, Swish, Softmax
//   - Loss functions: MSE, CrossEntropy
//
// # Basic Usage
//
//	import "github.com/born-ml/mlp/nn"
//
//	func main() {
//	    net, err := nn.New(nn.Config{
//	        Topology:   []int{2, 3, 1},
//	        Bias:       true,
//	        Activation: nn.Sigmoid,
//	        Loss:       nn.MeanSquaredError,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    out, err := net.Forward([]float64{0, 1})
//	}
//
// # Activations
//
// Derivatives are expressed in terms of the activation output y, not the
// pre-activation. Softmax applies Sigmoid per neuron and then a softmax over
// the output layer.
//
//	act := nn.ParseActivation("Tanh").Resolve()
//	y := act.Activate(0.3)
//	dy := act.Derive(y)
//
// # Loss Functions
//
// MSE: mean((actual - predicted)²), for regression.
//
// CrossEntropy: mean(-actual * log(predicted)), clamped away from 0 and 1.
// Combined with Softmax, the output delta is predicted - actual.
//
// # Backpropagation
//
//	trace, _ := net.Trace(input)
//	deltas, _ := net.Backpropagate(trace, target)
//
// deltas[l] has the width of layer l+1 and feeds optim.Adam.Step.
package nn
