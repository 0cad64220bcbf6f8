package nn

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/mlp/internal/parallel"
)

// Common errors.
var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrInvalidTopology = errors.New("invalid topology")
)

// initRange is the half-width of the uniform weight and bias initialization.
const initRange = 0.5

// Config describes a network to build.
type Config struct {
	// Topology lists layer widths: input, hidden layers, output.
	Topology   []int
	Bias       bool
	Activation ActivationKind
	Loss       LossKind
	// Source seeds initialization. Nil uses a time-seeded source.
	Source rand.Source
	// Parallel controls the per-neuron fan-out. The zero value runs
	// sequentially.
	Parallel parallel.Config
}

// Network is a fully-connected multi-layer perceptron.
//
// Layer transition i maps width Topology[i] to Topology[i+1] through a
// [Topology[i+1] × Topology[i]] weight matrix and a bias vector of length
// Topology[i+1]. The network exclusively owns these buffers; optimizers update
// them in place through Weights and Biases.
type Network struct {
	topology   []int
	weights    []*mat.Dense
	biases     [][]float64
	activation Activation
	loss       Loss
	parallel   parallel.Config
}

// New builds a network with weights and biases drawn uniformly from
// [-0.5, 0.5). Biases are zero when cfg.Bias is false.
//
// Example:
//
//	net, err := nn.New(nn.Config{
//	    Topology:   []int{2, 3, 1},
//	    Bias:       true,
//	    Activation: nn.Sigmoid,
//	    Loss:       nn.MeanSquaredError,
//	})
func New(cfg Config) (*Network, error) {
	if err := validateTopology(cfg.Topology); err != nil {
		return nil, err
	}

	src := cfg.Source
	if src == nil {
		//nolint:gosec // G115: timestamps are positive.
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	dist := distuv.Uniform{Min: -initRange, Max: initRange, Src: src}

	n := &Network{
		topology:   append([]int(nil), cfg.Topology...),
		weights:    make([]*mat.Dense, len(cfg.Topology)-1),
		biases:     make([][]float64, len(cfg.Topology)-1),
		activation: cfg.Activation.Resolve(),
		loss:       cfg.Loss.Resolve(),
		parallel:   cfg.Parallel,
	}

	for i := range n.weights {
		rows, cols := cfg.Topology[i+1], cfg.Topology[i]
		w := mat.NewDense(rows, cols, nil)
		b := make([]float64, rows)
		for r := 0; r < rows; r++ {
			row := w.RawRowView(r)
			for c := range row {
				row[c] = dist.Rand()
			}
			if cfg.Bias {
				b[r] = dist.Rand()
			}
		}
		n.weights[i] = w
		n.biases[i] = b
	}

	return n, nil
}

func validateTopology(topology []int) error {
	if len(topology) < 2 {
		return fmt.Errorf("%w: need at least input and output widths, got %v", ErrInvalidTopology, topology)
	}
	for i, width := range topology {
		if width < 1 {
			return fmt.Errorf("%w: layer %d has width %d", ErrInvalidTopology, i, width)
		}
	}
	return nil
}

// Topology returns a copy of the layer widths.
func (n *Network) Topology() []int {
	return append([]int(nil), n.topology...)
}

// NumLayers returns the number of layer transitions.
func (n *Network) NumLayers() int {
	return len(n.weights)
}

// InputSize returns the input width.
func (n *Network) InputSize() int {
	return n.topology[0]
}

// OutputSize returns the output width.
func (n *Network) OutputSize() int {
	return n.topology[len(n.topology)-1]
}

// Activation returns the resolved activation.
func (n *Network) Activation() Activation {
	return n.activation
}

// Loss returns the resolved loss.
func (n *Network) Loss() Loss {
	return n.loss
}

// Parallel returns the fan-out configuration shared with the optimizer.
func (n *Network) Parallel() parallel.Config {
	return n.parallel
}

// Weights returns the live weight matrices, one per layer transition.
// Callers that mutate them must keep their shapes.
func (n *Network) Weights() []*mat.Dense {
	return n.weights
}

// Biases returns the live bias vectors, one per layer transition.
func (n *Network) Biases() [][]float64 {
	return n.biases
}

// SetParameters replaces weights and biases after validating that every shape
// matches the topology. The network keeps its own copies.
func (n *Network) SetParameters(weights []*mat.Dense, biases [][]float64) error {
	if len(weights) != len(n.weights) || len(biases) != len(n.biases) {
		return fmt.Errorf("%w: got %d weight and %d bias layers, want %d",
			ErrShapeMismatch, len(weights), len(biases), len(n.weights))
	}
	for i := range weights {
		rows, cols := weights[i].Dims()
		if rows != n.topology[i+1] || cols != n.topology[i] {
			return fmt.Errorf("%w: layer %d weights are %dx%d, want %dx%d",
				ErrShapeMismatch, i, rows, cols, n.topology[i+1], n.topology[i])
		}
		if len(biases[i]) != n.topology[i+1] {
			return fmt.Errorf("%w: layer %d has %d biases, want %d",
				ErrShapeMismatch, i, len(biases[i]), n.topology[i+1])
		}
	}
	for i := range weights {
		n.weights[i] = mat.DenseCopyOf(weights[i])
		n.biases[i] = append([]float64(nil), biases[i]...)
	}
	return nil
}

// Forward evaluates the network and returns the output layer.
func (n *Network) Forward(input []float64) ([]float64, error) {
	trace, err := n.Trace(input)
	if err != nil {
		return nil, err
	}
	return trace[len(trace)-1], nil
}

// Trace evaluates the network and returns every layer's output, starting with
// the input itself as layer 0. Backpropagate consumes the result.
func (n *Network) Trace(input []float64) ([][]float64, error) {
	if len(input) != n.InputSize() {
		return nil, fmt.Errorf("%w: input has %d values, want %d", ErrShapeMismatch, len(input), n.InputSize())
	}
	return n.trace(input), nil
}

func (n *Network) trace(input []float64) [][]float64 {
	outputs := make([][]float64, 0, len(n.weights)+1)
	outputs = append(outputs, input)
	current := input

	last := len(n.weights) - 1
	for layer, w := range n.weights {
		rows, _ := w.Dims()
		bias := n.biases[layer]
		next := make([]float64, rows)

		parallel.For(rows, func(neuron int) {
			sum := floats.Dot(w.RawRowView(neuron), current) + bias[neuron]
			next[neuron] = n.activation.Activate(sum)
		}, n.parallel)

		// Scalar activation first, vector activation second.
		if layer == last && n.activation.Vector != nil {
			next = n.activation.Vector(next)
		}

		outputs = append(outputs, next)
		current = next
	}

	return outputs
}
