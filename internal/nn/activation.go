package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ActivationKind enumerates the supported activations.
type ActivationKind int

// Supported activation kinds.
const (
	Sigmoid ActivationKind = iota
	ReLU
	Tanh
	LeakyReLU
	ELU
	Swish
	// Softmax pairs the Sigmoid scalar activation with a softmax over the
	// output layer.
	Softmax
)

var activationNames = map[ActivationKind]string{
	Sigmoid:   "Sigmoid",
	ReLU:      "ReLU",
	Tanh:      "Tanh",
	LeakyReLU: "LeakyReLU",
	ELU:       "ELU",
	Swish:     "Swish",
	Softmax:   "Softmax",
}

// String returns the configuration name of the activation.
func (k ActivationKind) String() string {
	if name, ok := activationNames[k]; ok {
		return name
	}
	return "Sigmoid"
}

// ParseActivation maps a configuration name to its kind.
// Unrecognized names fall back to Sigmoid.
func ParseActivation(name string) ActivationKind {
	for kind, n := range activationNames {
		if n == name {
			return kind
		}
	}
	return Sigmoid
}

// Activation is a resolved activation: a scalar function, its derivative and an
// optional vector function applied to the output layer only.
//
// Derive takes the activation OUTPUT y = Activate(x), not the pre-activation x.
// For Sigmoid and Tanh this is the closed form of the derivative. For ReLU,
// LeakyReLU, ELU and Swish it is applied the same way, which matches the
// reference numerics rather than the analytic derivative.
type Activation struct {
	Kind     ActivationKind
	Activate func(x float64) float64
	Derive   func(y float64) float64
	// Vector is nil unless the kind carries an output-layer vector function.
	Vector func(v []float64) []float64
}

// Resolve returns the function pair for the kind.
func (k ActivationKind) Resolve() Activation {
	switch k {
	case ReLU:
		return Activation{Kind: k, Activate: relu, Derive: reluDerivative}
	case Tanh:
		return Activation{Kind: k, Activate: math.Tanh, Derive: tanhDerivative}
	case LeakyReLU:
		return Activation{Kind: k, Activate: leakyReLU, Derive: leakyReLUDerivative}
	case ELU:
		return Activation{Kind: k, Activate: elu, Derive: eluDerivative}
	case Swish:
		return Activation{Kind: k, Activate: swish, Derive: swishDerivative}
	case Softmax:
		return Activation{Kind: k, Activate: sigmoid, Derive: sigmoidDerivative, Vector: SoftmaxVector}
	default:
		return Activation{Kind: Sigmoid, Activate: sigmoid, Derive: sigmoidDerivative}
	}
}

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func sigmoidDerivative(y float64) float64 { return y * (1 - y) }

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func reluDerivative(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}

func tanhDerivative(y float64) float64 { return 1 - y*y }

func leakyReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0.01 * x
}

func leakyReLUDerivative(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0.01
}

func elu(x float64) float64 {
	if x >= 0 {
		return x
	}
	return math.Exp(x) - 1
}

func eluDerivative(y float64) float64 {
	if y >= 0 {
		return 1
	}
	return y + 1
}

func swish(x float64) float64 { return x / (1 + math.Exp(-x)) }

func swishDerivative(y float64) float64 { return y + sigmoid(y)*(1-y) }

// SoftmaxVector computes exp(v - max(v)) / sum(exp(v - max(v))).
//
// Subtracting the maximum keeps exp from overflowing and makes the result
// invariant to adding a constant to every element. An empty input yields an
// empty output.
func SoftmaxVector(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) == 0 {
		return out
	}
	m := floats.Max(v)
	for i, x := range v {
		out[i] = math.Exp(x - m)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
