// Package normalize rescales feature vectors.
//
// Two families live here. The per-vector transforms (MinMax, ZScore,
// DecimalScaling, MeanNormalization, L2Normalize, RobustScale) rescale one
// vector using only that vector's own statistics and are not invertible. The
// dataset transform fits per-feature minimum and maximum over a whole training
// set (Fit) and applies or inverts it feature by feature (Apply, Invert); its
// Params are what a persisted model stores.
//
// Degenerate inputs (zero range, zero deviation, zero norm, zero IQR) never
// divide by zero: each transform returns a documented fallback instead.
package normalize

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Kind enumerates the normalization modes.
type Kind int

// Normalization kinds.
const (
	Identity Kind = iota
	MinMaxKind
	ZScoreKind
	DecimalScalingKind
	MeanNormalizationKind
	L2NormalizeKind
	RobustScaleKind
	// Dataset fits min-max parameters over the training set and persists
	// them with the model.
	Dataset
)

var kindNames = map[Kind]string{
	Identity:              "None",
	MinMaxKind:            "MinMax",
	ZScoreKind:            "ZScore",
	DecimalScalingKind:    "DecimalScaling",
	MeanNormalizationKind: "MeanNormalization",
	L2NormalizeKind:       "L2Normalize",
	RobustScaleKind:       "RobustScale",
	Dataset:               "Dataset",
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "None"
}

// Parse maps a configuration name to its kind. Unknown names map to Identity.
func Parse(name string) Kind {
	for kind, n := range kindNames {
		if n == name {
			return kind
		}
	}
	return Identity
}

// Func is a single-vector transform.
type Func func(values []float64) []float64

// Transform returns the per-vector function for the kind. Identity and
// Dataset return a copying identity; Dataset normalization goes through Params.
func (k Kind) Transform() Func {
	switch k {
	case MinMaxKind:
		return MinMax
	case ZScoreKind:
		return ZScore
	case DecimalScalingKind:
		return DecimalScaling
	case MeanNormalizationKind:
		return MeanNormalization
	case L2NormalizeKind:
		return L2Normalize
	case RobustScaleKind:
		return RobustScale
	default:
		return identity
	}
}

func identity(values []float64) []float64 {
	return slices.Clone(values)
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// MinMax maps values to (v - min) / (max - min). A constant vector maps to 0.5.
func MinMax(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if hi == lo {
		return constant(len(values), 0.5)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// ZScore maps values to (v - mean) / stddev using the population standard
// deviation. A constant vector maps to zeros.
func ZScore(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	if floats.Max(values) == floats.Min(values) {
		return make([]float64, len(values))
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 {
		return make([]float64, len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// DecimalScaling divides by 10^j with j = ceil(log10(max|v| + 1)). When j is 0
// the values are returned unchanged.
func DecimalScaling(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	var maxAbs float64
	for _, v := range values {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	j := int(math.Ceil(math.Log10(maxAbs + 1)))
	if j == 0 {
		return slices.Clone(values)
	}
	scale := math.Pow(10, float64(j))
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / scale
	}
	return out
}

// MeanNormalization maps values to (v - mean) / (max - min). A constant vector
// maps to zeros.
func MeanNormalization(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if hi-lo == 0 {
		return make([]float64, len(values))
	}
	mean := stat.Mean(values, nil)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / (hi - lo)
	}
	return out
}

// L2Normalize divides by the Euclidean norm. A zero vector is returned
// unchanged.
func L2Normalize(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	norm := floats.Norm(values, 2)
	if norm == 0 {
		return slices.Clone(values)
	}
	out := slices.Clone(values)
	floats.Scale(1/norm, out)
	return out
}

// RobustScale maps values to (v - median) / IQR. Quartiles are the medians of
// the sorted lower half [0, n/2) and upper half [(n+1)/2, n). A zero IQR
// returns the values unchanged.
func RobustScale(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)

	median := sortedMedian(sorted)
	q1 := sortedMedian(sorted[:n/2])
	q3 := sortedMedian(sorted[(n+1)/2:])

	iqr := q3 - q1
	if iqr == 0 {
		return slices.Clone(values)
	}
	out := make([]float64, n)
	for i, v := range values {
		out[i] = (v - median) / iqr
	}
	return out
}

// sortedMedian returns the median of an ascending slice, 0 when empty.
func sortedMedian(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n%2 == 0:
		return (sorted[n/2-1] + sorted[n/2]) / 2.0
	default:
		return sorted[n/2]
	}
}
