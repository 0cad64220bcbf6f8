package nn

import (
	"math"
)

// LossKind enumerates the supported loss functions.
type LossKind int

// Supported loss kinds.
const (
	MeanSquaredError LossKind = iota
	CrossEntropy
)

// crossEntropyEps clamps predictions away from 0 and 1 before taking logs.
const crossEntropyEps = 1e-15

// String returns the configuration name of the loss.
func (k LossKind) String() string {
	if k == CrossEntropy {
		return "CrossEntropy"
	}
	return "MSE"
}

// ParseLoss maps a configuration name to its kind.
// Only "CrossEntropy" selects cross-entropy; every other name selects MSE.
func ParseLoss(name string) LossKind {
	if name == "CrossEntropy" {
		return CrossEntropy
	}
	return MeanSquaredError
}

// Loss is a resolved pairwise loss and its elementwise derivative with respect
// to the prediction.
type Loss struct {
	Kind       LossKind
	Value      func(predicted, actual []float64) float64
	Derivative func(predicted, actual []float64) []float64
}

// Resolve returns the function pair for the kind.
func (k LossKind) Resolve() Loss {
	if k == CrossEntropy {
		return Loss{Kind: k, Value: CrossEntropyLoss, Derivative: CrossEntropyDerivative}
	}
	return Loss{Kind: MeanSquaredError, Value: MSE, Derivative: MSEDerivative}
}

// MSE computes mean((actual - predicted)²).
func MSE(predicted, actual []float64) float64 {
	var sum float64
	for i, p := range predicted {
		diff := actual[i] - p
		sum += diff * diff
	}
	return sum / float64(len(predicted))
}

// MSEDerivative computes 2 * (predicted - actual) / n per element.
func MSEDerivative(predicted, actual []float64) []float64 {
	n := float64(len(predicted))
	grad := make([]float64, len(predicted))
	for i, p := range predicted {
		grad[i] = 2 * (p - actual[i]) / n
	}
	return grad
}

// CrossEntropyLoss computes mean(-actual * log(clamp(predicted))).
func CrossEntropyLoss(predicted, actual []float64) float64 {
	var loss float64
	for i, p := range predicted {
		loss -= actual[i] * math.Log(clampProbability(p))
	}
	return loss / float64(len(predicted))
}

// CrossEntropyDerivative computes -(actual / clamp(predicted)) per element.
func CrossEntropyDerivative(predicted, actual []float64) []float64 {
	grad := make([]float64, len(predicted))
	for i, p := range predicted {
		grad[i] = -(actual[i] / clampProbability(p))
	}
	return grad
}

func clampProbability(p float64) float64 {
	return math.Min(math.Max(p, crossEntropyEps), 1-crossEntropyEps)
}
