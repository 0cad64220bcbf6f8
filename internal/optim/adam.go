package optim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/parallel"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule, per weight with gradient g:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * g
//	v_t = beta2 * v_{t-1} + (1-beta2) * g²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// The timestep t is a single counter for the whole network, incremented once
// per Step. Moment buffers mirror the shapes of the weights and biases they
// track.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params Parameters
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int // Timestep for bias correction

	mWeights []*mat.Dense // First moment estimates
	vWeights []*mat.Dense // Second moment estimates
	mBiases  [][]float64
	vBiases  [][]float64
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer over params with zeroed moments and
// timestep 0.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(params Parameters, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	a := &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
	}
	a.Reset()
	return a
}

// Reset re-allocates zeroed moments matching the current parameter shapes and
// sets the timestep back to 0.
func (a *Adam) Reset() {
	weights := a.params.Weights()
	biases := a.params.Biases()

	a.mWeights = make([]*mat.Dense, len(weights))
	a.vWeights = make([]*mat.Dense, len(weights))
	for i, w := range weights {
		rows, cols := w.Dims()
		a.mWeights[i] = mat.NewDense(rows, cols, nil)
		a.vWeights[i] = mat.NewDense(rows, cols, nil)
	}

	a.mBiases = make([][]float64, len(biases))
	a.vBiases = make([][]float64, len(biases))
	for i, b := range biases {
		a.mBiases[i] = make([]float64, len(b))
		a.vBiases[i] = make([]float64, len(b))
	}

	a.t = 0
}

// Step performs a single optimization step for one sample.
//
// The weight gradient is deltas[l][n] * trace[l][k]; the bias gradient is
// deltas[l][n]. Each layer fans out over its neurons; a neuron's task only
// touches that neuron's row of weights, moments and biases.
func (a *Adam) Step(trace, deltas [][]float64) error {
	if err := a.check(trace, deltas); err != nil {
		return err
	}

	a.t++

	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	weights := a.params.Weights()
	biases := a.params.Biases()
	cfg := a.params.Parallel()

	for layer, w := range weights {
		rows, _ := w.Dims()
		input := trace[layer]
		delta := deltas[layer]
		bias := biases[layer]
		mW, vW := a.mWeights[layer], a.vWeights[layer]
		mB, vB := a.mBiases[layer], a.vBiases[layer]

		parallel.For(rows, func(neuron int) {
			wRow := w.RawRowView(neuron)
			mRow := mW.RawRowView(neuron)
			vRow := vW.RawRowView(neuron)
			d := delta[neuron]

			for k := range wRow {
				wRow[k] -= a.update(&mRow[k], &vRow[k], d*input[k], biasCorrection1, biasCorrection2)
			}
			bias[neuron] -= a.update(&mB[neuron], &vB[neuron], d, biasCorrection1, biasCorrection2)
		}, cfg)
	}

	return nil
}

// update advances one moment pair with gradient g and returns the step to
// subtract from the parameter.
func (a *Adam) update(m, v *float64, g, biasCorrection1, biasCorrection2 float64) float64 {
	*m = a.beta1*(*m) + (1.0-a.beta1)*g
	*v = a.beta2*(*v) + (1.0-a.beta2)*g*g

	mHat := *m / biasCorrection1
	vHat := *v / biasCorrection2

	return a.lr * mHat / (math.Sqrt(vHat) + a.eps)
}

func (a *Adam) check(trace, deltas [][]float64) error {
	weights := a.params.Weights()
	biases := a.params.Biases()

	if len(weights) != len(a.mWeights) || len(biases) != len(a.mBiases) {
		return fmt.Errorf("%w: %d layers tracked, parameters have %d", ErrStateMismatch, len(a.mWeights), len(weights))
	}
	if len(deltas) != len(weights) || len(trace) != len(weights)+1 {
		return fmt.Errorf("%w: got %d deltas and %d trace layers for %d layers",
			ErrStateMismatch, len(deltas), len(trace), len(weights))
	}
	for i, w := range weights {
		rows, cols := w.Dims()
		mRows, mCols := a.mWeights[i].Dims()
		if rows != mRows || cols != mCols || len(biases[i]) != len(a.mBiases[i]) {
			return fmt.Errorf("%w: layer %d is %dx%d, moments are %dx%d",
				ErrStateMismatch, i, rows, cols, mRows, mCols)
		}
		if len(deltas[i]) != rows || len(trace[i]) != cols {
			return fmt.Errorf("%w: layer %d got %d deltas and %d inputs, want %d and %d",
				ErrStateMismatch, i, len(deltas[i]), len(trace[i]), rows, cols)
		}
	}
	return nil
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam) GetTimestep() int {
	return a.t
}

// Moments returns the first and second moment buffers of layer l.
func (a *Adam) Moments(l int) (mWeights, vWeights *mat.Dense, mBiases, vBiases []float64) {
	return a.mWeights[l], a.vWeights[l], a.mBiases[l], a.vBiases[l]
}
