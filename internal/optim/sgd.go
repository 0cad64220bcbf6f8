package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/parallel"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(network, optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
//	trainer, _ := train.New(network, cfg, train.WithOptimizer(optimizer))
type SGD struct {
	params   Parameters
	lr       float64
	momentum float64

	vWeights []*mat.Dense // nil without momentum
	vBiases  [][]float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD(params Parameters, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	s := &SGD{
		params:   params,
		lr:       config.LR,
		momentum: config.Momentum,
	}
	s.Reset()
	return s
}

// Reset zeroes the velocity buffers.
func (s *SGD) Reset() {
	s.vWeights, s.vBiases = nil, nil
	if s.momentum == 0 {
		return
	}
	weights := s.params.Weights()
	biases := s.params.Biases()
	s.vWeights = make([]*mat.Dense, len(weights))
	s.vBiases = make([][]float64, len(biases))
	for i, w := range weights {
		rows, cols := w.Dims()
		s.vWeights[i] = mat.NewDense(rows, cols, nil)
		s.vBiases[i] = make([]float64, len(biases[i]))
	}
}

// Step applies one sample's update.
func (s *SGD) Step(trace, deltas [][]float64) error {
	weights := s.params.Weights()
	biases := s.params.Biases()
	if len(deltas) != len(weights) || len(trace) != len(weights)+1 {
		return fmt.Errorf("%w: got %d deltas and %d trace layers for %d layers",
			ErrStateMismatch, len(deltas), len(trace), len(weights))
	}
	if s.momentum != 0 && len(s.vWeights) != len(weights) {
		return fmt.Errorf("%w: %d velocity layers for %d layers", ErrStateMismatch, len(s.vWeights), len(weights))
	}
	cfg := s.params.Parallel()

	for layer, w := range weights {
		rows, cols := w.Dims()
		if len(deltas[layer]) != rows || len(trace[layer]) != cols {
			return fmt.Errorf("%w: layer %d got %d deltas and %d inputs, want %d and %d",
				ErrStateMismatch, layer, len(deltas[layer]), len(trace[layer]), rows, cols)
		}
		input := trace[layer]
		delta := deltas[layer]
		bias := biases[layer]

		if s.momentum == 0 {
			parallel.For(rows, func(neuron int) {
				wRow := w.RawRowView(neuron)
				d := delta[neuron]
				for k := range wRow {
					wRow[k] -= s.lr * d * input[k]
				}
				bias[neuron] -= s.lr * d
			}, cfg)
			continue
		}

		vW, vB := s.vWeights[layer], s.vBiases[layer]
		parallel.For(rows, func(neuron int) {
			wRow := w.RawRowView(neuron)
			vRow := vW.RawRowView(neuron)
			d := delta[neuron]
			for k := range wRow {
				vRow[k] = s.momentum*vRow[k] + d*input[k]
				wRow[k] -= s.lr * vRow[k]
			}
			vB[neuron] = s.momentum*vB[neuron] + d
			bias[neuron] -= s.lr * vB[neuron]
		}, cfg)
	}
	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
