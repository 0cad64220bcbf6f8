package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/optim"
	"github.com/born-ml/mlp/internal/parallel"
)

// params is a minimal optim.Parameters over explicit matrices.
type params struct {
	weights []*mat.Dense
	biases  [][]float64
	cfg     parallel.Config
}

func (p *params) Weights() []*mat.Dense     { return p.weights }
func (p *params) Biases() [][]float64       { return p.biases }
func (p *params) Parallel() parallel.Config { return p.cfg }

// single returns one layer mapping 2 inputs to 1 output.
func single(w0, w1, b float64) *params {
	return &params{
		weights: []*mat.Dense{mat.NewDense(1, 2, []float64{w0, w1})},
		biases:  [][]float64{{b}},
		cfg:     parallel.Sequential(),
	}
}

// TestAdam_FirstStep checks the bias-corrected first update:
// m_hat = g and v_hat = g², so each parameter moves by lr * g / (|g| + eps).
func TestAdam_FirstStep(t *testing.T) {
	p := single(0.5, -0.5, 0.1)
	adam := optim.NewAdam(p, optim.AdamConfig{LR: 0.01})

	trace := [][]float64{{2, 0.5}, {0.7}}
	deltas := [][]float64{{0.3}}
	require.NoError(t, adam.Step(trace, deltas))

	step := func(g float64) float64 { return 0.01 * g / (math.Abs(g) + 1e-8) }
	assert.InDelta(t, 0.5-step(0.6), p.weights[0].At(0, 0), 1e-12)
	assert.InDelta(t, -0.5-step(0.15), p.weights[0].At(0, 1), 1e-12)
	assert.InDelta(t, 0.1-step(0.3), p.biases[0][0], 1e-12)
	assert.Equal(t, 1, adam.GetTimestep())

	mW, vW, mB, vB := adam.Moments(0)
	assert.InDelta(t, 0.1*0.6, mW.At(0, 0), 1e-15)
	assert.InDelta(t, 0.001*0.36, vW.At(0, 0), 1e-15)
	assert.InDelta(t, 0.1*0.3, mB[0], 1e-15)
	assert.InDelta(t, 0.001*0.09, vB[0], 1e-15)
}

func TestAdam_SecondStepUsesSharedTimestep(t *testing.T) {
	p := single(0, 0, 0)
	adam := optim.NewAdam(p, optim.AdamConfig{LR: 0.1})

	trace := [][]float64{{1, 0}, {0}}
	require.NoError(t, adam.Step(trace, [][]float64{{1}}))
	require.NoError(t, adam.Step(trace, [][]float64{{-1}}))
	assert.Equal(t, 2, adam.GetTimestep())

	// After g=1 then g=-1: m = 0.9*0.1 - 0.1 = -0.01, v = 0.999*0.001 + 0.001.
	m := -0.01
	v := 0.999*0.001 + 0.001
	mHat := m / (1 - 0.9*0.9)
	vHat := v / (1 - 0.999*0.999)
	second := 0.1 * mHat / (math.Sqrt(vHat) + 1e-8)
	first := 0.1 * 1 / (1 + 1e-8)

	assert.InDelta(t, -first-second, p.weights[0].At(0, 0), 1e-12)
	// Zero input means zero weight gradient: the second weight never moves.
	assert.Equal(t, 0.0, p.weights[0].At(0, 1))
}

func TestAdam_ZeroGradientLeavesParameters(t *testing.T) {
	p := single(0.25, 0.75, -0.5)
	adam := optim.NewAdam(p, optim.AdamConfig{LR: 0.5})

	require.NoError(t, adam.Step([][]float64{{1, 1}, {0}}, [][]float64{{0}}))
	assert.Equal(t, []float64{0.25, 0.75}, p.weights[0].RawRowView(0))
	assert.Equal(t, -0.5, p.biases[0][0])
}

func TestAdam_Defaults(t *testing.T) {
	adam := optim.NewAdam(single(0, 0, 0), optim.AdamConfig{})
	assert.Equal(t, 0.001, adam.GetLR())

	adam.SetLR(0.02)
	assert.Equal(t, 0.02, adam.GetLR())
}

func TestAdam_Reset(t *testing.T) {
	p := single(0, 0, 0)
	adam := optim.NewAdam(p, optim.AdamConfig{LR: 0.1})
	require.NoError(t, adam.Step([][]float64{{1, 1}, {0}}, [][]float64{{1}}))

	// Replace the parameters with a wider layer, then reset.
	p.weights = []*mat.Dense{mat.NewDense(2, 3, nil)}
	p.biases = [][]float64{{0, 0}}
	err := adam.Step([][]float64{{1, 1, 1}, {0, 0}}, [][]float64{{1, 1}})
	assert.ErrorIs(t, err, optim.ErrStateMismatch)

	adam.Reset()
	assert.Equal(t, 0, adam.GetTimestep())
	mW, vW, mB, vB := adam.Moments(0)
	rows, cols := mW.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Zero(t, mat.Sum(mW))
	assert.Zero(t, mat.Sum(vW))
	assert.Equal(t, []float64{0, 0}, mB)
	assert.Equal(t, []float64{0, 0}, vB)

	require.NoError(t, adam.Step([][]float64{{1, 1, 1}, {0, 0}}, [][]float64{{1, 1}}))
	assert.Equal(t, 1, adam.GetTimestep())
}

func TestAdam_StepShapeMismatch(t *testing.T) {
	adam := optim.NewAdam(single(0, 0, 0), optim.AdamConfig{})

	tests := []struct {
		name   string
		trace  [][]float64
		deltas [][]float64
	}{
		{"missing trace layer", [][]float64{{1, 1}}, [][]float64{{1}}},
		{"wide delta", [][]float64{{1, 1}, {0}}, [][]float64{{1, 2}}},
		{"narrow input", [][]float64{{1}, {0}}, [][]float64{{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, adam.Step(tt.trace, tt.deltas), optim.ErrStateMismatch)
		})
	}
	assert.Equal(t, 0, adam.GetTimestep(), "rejected steps must not advance the timestep")
}

func TestAdam_ParallelMatchesSequential(t *testing.T) {
	build := func(cfg parallel.Config) *params {
		w := mat.NewDense(32, 4, nil)
		for i := range w.RawMatrix().Data {
			w.RawMatrix().Data[i] = float64(i%7) * 0.1
		}
		return &params{weights: []*mat.Dense{w}, biases: [][]float64{make([]float64, 32)}, cfg: cfg}
	}
	seq := build(parallel.Sequential())
	par := build(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})

	trace := [][]float64{{0.1, 0.2, 0.3, 0.4}, make([]float64, 32)}
	deltas := [][]float64{make([]float64, 32)}
	for i := range deltas[0] {
		deltas[0][i] = float64(i) - 16
	}

	a := optim.NewAdam(seq, optim.AdamConfig{LR: 0.01})
	b := optim.NewAdam(par, optim.AdamConfig{LR: 0.01})
	for i := 0; i < 3; i++ {
		require.NoError(t, a.Step(trace, deltas))
		require.NoError(t, b.Step(trace, deltas))
	}

	assert.True(t, mat.Equal(seq.weights[0], par.weights[0]))
	assert.Equal(t, seq.biases[0], par.biases[0])
}

func TestSGD_SimpleUpdate(t *testing.T) {
	p := single(2, 1, 0.5)
	sgd := optim.NewSGD(p, optim.SGDConfig{LR: 0.1})

	require.NoError(t, sgd.Step([][]float64{{1, 2}, {0}}, [][]float64{{1}}))

	assert.InDelta(t, 1.9, p.weights[0].At(0, 0), 1e-12)
	assert.InDelta(t, 0.8, p.weights[0].At(0, 1), 1e-12)
	assert.InDelta(t, 0.4, p.biases[0][0], 1e-12)
}

func TestSGD_WithMomentum(t *testing.T) {
	p := single(1, 0, 0)
	sgd := optim.NewSGD(p, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	trace := [][]float64{{1, 0}, {0}}

	// velocity = 1, x = 1 - 0.1 = 0.9
	require.NoError(t, sgd.Step(trace, [][]float64{{1}}))
	assert.InDelta(t, 0.9, p.weights[0].At(0, 0), 1e-12)

	// velocity = 0.9 + 1 = 1.9, x = 0.9 - 0.19 = 0.71
	require.NoError(t, sgd.Step(trace, [][]float64{{1}}))
	assert.InDelta(t, 0.71, p.weights[0].At(0, 0), 1e-12)

	sgd.Reset()
	require.NoError(t, sgd.Step(trace, [][]float64{{1}}))
	assert.InDelta(t, 0.61, p.weights[0].At(0, 0), 1e-12)
}

func TestSGD_Defaults(t *testing.T) {
	sgd := optim.NewSGD(single(0, 0, 0), optim.SGDConfig{})
	assert.Equal(t, 0.01, sgd.GetLR())

	var _ optim.Optimizer = sgd
	var _ optim.Optimizer = optim.NewAdam(single(0, 0, 0), optim.AdamConfig{})
}
