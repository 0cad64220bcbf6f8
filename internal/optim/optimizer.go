// Package optim implements the parameter update rule used by the trainer.
//
// Updates are applied per training sample: the trainer calls Step once with
// the layer outputs of a Trace and the deltas of Backpropagate for that same
// sample. Gradients are never averaged across samples.
//
// Example usage:
//
//	optimizer := optim.NewAdam(network, optim.AdamConfig{LR: 0.01})
//
//	trace, _ := network.Trace(input)
//	deltas, _ := network.Backpropagate(trace, target)
//	if err := optimizer.Step(trace, deltas); err != nil {
//	    return err
//	}
package optim

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/parallel"
)

// ErrStateMismatch is returned when gradients or parameters no longer match
// the optimizer state.
var ErrStateMismatch = errors.New("optimizer state does not match parameters")

// Optimizer is the interface the trainer drives.
type Optimizer interface {
	// Step applies one update from a single sample's layer outputs
	// (trace[0] is the input) and per-layer deltas.
	Step(trace, deltas [][]float64) error

	// Reset discards accumulated state. It must be called whenever the
	// parameters are replaced.
	Reset()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Parameters exposes the live, in-place mutable parameters of a network.
// *nn.Network satisfies it.
type Parameters interface {
	Weights() []*mat.Dense
	Biases() [][]float64
	Parallel() parallel.Config
}
