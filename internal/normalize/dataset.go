package normalize

import (
	"errors"
	"fmt"
	"math"
)

// minRange keeps Apply from dividing by a zero feature range.
const minRange = 1e-12

// ErrEmptyDataset is returned when fitting over no samples.
var ErrEmptyDataset = errors.New("cannot fit normalization over an empty dataset")

// Params holds per-feature bounds fitted over a training set. The JSON field
// names are part of the persisted model format.
type Params struct {
	InMin  []float64 `json:"InMin"`
	InMax  []float64 `json:"InMax"`
	OutMin []float64 `json:"OutMin"`
	OutMax []float64 `json:"OutMax"`
}

// Fit computes per-feature minimum and maximum of inputs and outputs
// independently. Every input row must have the width of the first input row,
// and likewise for outputs.
func Fit(inputs, outputs [][]float64) (Params, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return Params{}, ErrEmptyDataset
	}
	inMin, inMax, err := bounds(inputs)
	if err != nil {
		return Params{}, fmt.Errorf("inputs: %w", err)
	}
	outMin, outMax, err := bounds(outputs)
	if err != nil {
		return Params{}, fmt.Errorf("outputs: %w", err)
	}
	return Params{InMin: inMin, InMax: inMax, OutMin: outMin, OutMax: outMax}, nil
}

func bounds(rows [][]float64) (lo, hi []float64, err error) {
	width := len(rows[0])
	lo = make([]float64, width)
	hi = make([]float64, width)
	for i := range lo {
		lo[i] = math.Inf(1)
		hi[i] = math.Inf(-1)
	}
	for r, row := range rows {
		if len(row) != width {
			return nil, nil, fmt.Errorf("row %d has %d features, want %d", r, len(row), width)
		}
		for i, v := range row {
			lo[i] = math.Min(lo[i], v)
			hi[i] = math.Max(hi[i], v)
		}
	}
	return lo, hi, nil
}

// Apply maps v to (v - min) / max(max - min, 1e-12) per feature.
func Apply(v, lo, hi []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = (x - lo[i]) / math.Max(minRange, hi[i]-lo[i])
	}
	return out
}

// Invert maps a normalized v back to v * max(max - min, 1e-12) + min.
func Invert(v, lo, hi []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x*math.Max(minRange, hi[i]-lo[i]) + lo[i]
	}
	return out
}

// ApplyInput normalizes an input vector.
func (p Params) ApplyInput(v []float64) []float64 { return Apply(v, p.InMin, p.InMax) }

// ApplyOutput normalizes a target vector.
func (p Params) ApplyOutput(v []float64) []float64 { return Apply(v, p.OutMin, p.OutMax) }

// InvertOutput maps a network output back to the raw target scale.
func (p Params) InvertOutput(v []float64) []float64 { return Invert(v, p.OutMin, p.OutMax) }

// Validate checks that the bounds have the given input and output widths.
func (p Params) Validate(inputWidth, outputWidth int) error {
	if len(p.InMin) != inputWidth || len(p.InMax) != inputWidth {
		return fmt.Errorf("input bounds have %d/%d features, want %d", len(p.InMin), len(p.InMax), inputWidth)
	}
	if len(p.OutMin) != outputWidth || len(p.OutMax) != outputWidth {
		return fmt.Errorf("output bounds have %d/%d features, want %d", len(p.OutMin), len(p.OutMax), outputWidth)
	}
	return nil
}
