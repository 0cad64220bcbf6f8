package serialization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/normalize"
)

// Model is the persisted record. Weights are nested rows rather than a flat
// block so the file stays readable and interchangeable.
type Model struct {
	Weights       [][][]float64     `json:"Weights"`
	Biases        [][]float64       `json:"Biases"`
	Normalization *normalize.Params `json:"Normalization,omitempty"`
}

// NewModel converts live parameters into a persisted record. The record holds
// copies; later updates to weights or biases do not affect it.
func NewModel(weights []*mat.Dense, biases [][]float64, norm *normalize.Params) *Model {
	m := &Model{
		Weights: make([][][]float64, len(weights)),
		Biases:  make([][]float64, len(biases)),
	}
	for l, w := range weights {
		rows, _ := w.Dims()
		m.Weights[l] = make([][]float64, rows)
		for r := 0; r < rows; r++ {
			m.Weights[l][r] = mat.Row(nil, r, w)
		}
	}
	for l, b := range biases {
		m.Biases[l] = append([]float64(nil), b...)
	}
	if norm != nil {
		cp := normalize.Params{
			InMin:  append([]float64(nil), norm.InMin...),
			InMax:  append([]float64(nil), norm.InMax...),
			OutMin: append([]float64(nil), norm.OutMin...),
			OutMax: append([]float64(nil), norm.OutMax...),
		}
		m.Normalization = &cp
	}
	return m
}

// Matrices converts the nested weight rows into dense matrices.
func (m *Model) Matrices() []*mat.Dense {
	out := make([]*mat.Dense, len(m.Weights))
	for l, rows := range m.Weights {
		cols := len(rows[0])
		data := make([]float64, 0, len(rows)*cols)
		for _, row := range rows {
			data = append(data, row...)
		}
		out[l] = mat.NewDense(len(rows), cols, data)
	}
	return out
}

// Validate checks that the record is rectangular, consistent and finite.
func (m *Model) Validate() error {
	if len(m.Weights) == 0 {
		return &ValidationError{Field: "Weights", Layer: -1, Details: "no layers"}
	}
	if len(m.Biases) != len(m.Weights) {
		return &ValidationError{Field: "Biases", Layer: -1,
			Details: "layer count differs from Weights"}
	}

	prevRows := -1
	for l, rows := range m.Weights {
		if len(rows) == 0 || len(rows[0]) == 0 {
			return &ValidationError{Field: "Weights", Layer: l, Details: "empty matrix"}
		}
		cols := len(rows[0])
		for r, row := range rows {
			if len(row) != cols {
				return &ValidationError{Field: "Weights", Layer: l, Details: fmt.Sprintf("row %d has %d values, want %d", r, len(row), cols)}
			}
			if !finite(row) {
				return &ValidationError{Field: "Weights", Layer: l, Details: ErrNonFinite.Error()}
			}
		}
		if prevRows >= 0 && cols != prevRows {
			return &ValidationError{Field: "Weights", Layer: l,
				Details: fmt.Sprintf("%d columns do not match previous layer width %d", cols, prevRows)}
		}
		if len(m.Biases[l]) != len(rows) {
			return &ValidationError{Field: "Biases", Layer: l,
				Details: fmt.Sprintf("%d biases do not match %d rows", len(m.Biases[l]), len(rows))}
		}
		if !finite(m.Biases[l]) {
			return &ValidationError{Field: "Biases", Layer: l, Details: ErrNonFinite.Error()}
		}
		prevRows = len(rows)
	}

	if n := m.Normalization; n != nil {
		if len(n.InMin) != len(n.InMax) || len(n.OutMin) != len(n.OutMax) {
			return &ValidationError{Field: "Normalization", Layer: -1,
				Details: fmt.Sprintf("bound lengths differ: InMin %d, InMax %d, OutMin %d, OutMax %d",
					len(n.InMin), len(n.InMax), len(n.OutMin), len(n.OutMax))}
		}
		if !finite(n.InMin) || !finite(n.InMax) || !finite(n.OutMin) || !finite(n.OutMax) {
			return &ValidationError{Field: "Normalization", Layer: -1, Details: ErrNonFinite.Error()}
		}
	}
	return nil
}

func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
