package nn

import (
	"fmt"

	"github.com/born-ml/mlp/internal/parallel"
)

// Backpropagate computes one delta vector per layer transition from a Trace
// result and the target output. deltas[l] has the width of layer l+1.
//
// The output delta is output - target when cross-entropy loss is combined with
// a vector activation (the fused softmax and cross-entropy gradient). Otherwise
// it is lossDerivative(output, target) multiplied elementwise by the
// activation derivative of the output.
func (n *Network) Backpropagate(trace [][]float64, target []float64) ([][]float64, error) {
	if len(trace) != len(n.topology) {
		return nil, fmt.Errorf("%w: trace has %d layers, want %d", ErrShapeMismatch, len(trace), len(n.topology))
	}
	for i, out := range trace {
		if len(out) != n.topology[i] {
			return nil, fmt.Errorf("%w: trace layer %d has %d values, want %d",
				ErrShapeMismatch, i, len(out), n.topology[i])
		}
	}
	if len(target) != n.OutputSize() {
		return nil, fmt.Errorf("%w: target has %d values, want %d", ErrShapeMismatch, len(target), n.OutputSize())
	}
	return n.backpropagate(trace, target), nil
}

func (n *Network) backpropagate(trace [][]float64, target []float64) [][]float64 {
	layers := len(n.weights)
	deltas := make([][]float64, layers)
	output := trace[len(trace)-1]
	derive := n.activation.Derive

	deltaOut := make([]float64, len(output))
	if n.loss.Kind == CrossEntropy && n.activation.Vector != nil {
		parallel.For(len(output), func(i int) {
			deltaOut[i] = output[i] - target[i]
		}, n.parallel)
	} else {
		lossGrad := n.loss.Derivative(output, target)
		parallel.For(len(output), func(i int) {
			deltaOut[i] = lossGrad[i] * derive(output[i])
		}, n.parallel)
	}
	deltas[layers-1] = deltaOut

	for layer := layers - 2; layer >= 0; layer-- {
		next := n.weights[layer+1]
		nextDelta := deltas[layer+1]
		nextRows, _ := next.Dims()
		layerOut := trace[layer+1]
		delta := make([]float64, len(layerOut))

		parallel.For(len(delta), func(i int) {
			var sum float64
			for j := 0; j < nextRows; j++ {
				sum += next.At(j, i) * nextDelta[j]
			}
			delta[i] = sum * derive(layerOut[i])
		}, n.parallel)

		deltas[layer] = delta
	}

	return deltas
}
