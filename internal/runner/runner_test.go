package runner

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/config"
	"github.com/born-ml/mlp/internal/normalize"
	"github.com/born-ml/mlp/internal/serialization"
)

const xorScaled = `[
	{"Input": [0, 0], "Output": [0]},
	{"Input": [0, 1], "Output": [10]},
	{"Input": [1, 0], "Output": [10]},
	{"Input": [1, 1], "Output": [0]}
]`

func testConfig(t *testing.T, hidden ...int) config.Config {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "xor.json")
	require.NoError(t, os.WriteFile(data, []byte(xorScaled), 0o600))

	cfg := config.Default()
	cfg.Input.Count = 2
	cfg.Output.Count = 1
	for _, n := range hidden {
		cfg.HiddenLayers = append(cfg.HiddenLayers, config.HiddenLayer{NeuronCount: n})
	}
	cfg.LearningRate = 0.05
	cfg.Epochs = 3000
	cfg.Bias = true
	cfg.Activation = "Sigmoid"
	cfg.LossFunction = "MSE"
	cfg.EarlyStoppingPatience = 0
	cfg.TrainingDataFile = data
	cfg.ModelFile = filepath.Join(dir, "model.json")
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRunner_TrainThenPredict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping convergence test in short mode")
	}
	cfg := testConfig(t, 3)

	var r *Runner
	for seed := uint64(1); seed <= 5; seed++ {
		r = New(cfg, WithSeed(seed))
		result, err := r.Train()
		require.NoError(t, err)
		if result.BestLoss < 0.05 {
			break
		}
	}

	_, _, norm, err := serialization.LoadWithNormalization(cfg.ModelFile)
	require.NoError(t, err)
	require.NotNil(t, norm)
	assert.Equal(t, []float64{0, 0}, norm.InMin)
	assert.Equal(t, []float64{1, 1}, norm.InMax)
	assert.Equal(t, []float64{0}, norm.OutMin)
	assert.Equal(t, []float64{10}, norm.OutMax)

	high, err := r.Predict([]float64{0, 1})
	require.NoError(t, err)
	low, err := r.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.Greater(t, high[0], 5.0)
	assert.Less(t, low[0], 5.0)
}

func TestRunner_TrainPersistsNormalizationWithEveryCheckpoint(t *testing.T) {
	cfg := testConfig(t, 3)
	cfg.Epochs = 1

	_, err := New(cfg, WithSeed(1)).Train()
	require.NoError(t, err)

	_, _, norm, err := serialization.LoadWithNormalization(cfg.ModelFile)
	require.NoError(t, err)
	assert.NotNil(t, norm)
}

func TestRunner_PerVectorNormalization(t *testing.T) {
	cfg := testConfig(t, 3)
	cfg.Normalization = "MinMax"
	cfg.Epochs = 5

	_, err := New(cfg, WithSeed(1)).Train()
	require.NoError(t, err)

	_, _, norm, err := serialization.LoadWithNormalization(cfg.ModelFile)
	require.NoError(t, err)
	assert.Nil(t, norm)

	out, err := New(cfg).Predict([]float64{0, 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0] > 0 && out[0] < 1, "raw sigmoid output, got %v", out[0])
}

func saveSingleLayer(t *testing.T, cfg config.Config, norm *normalize.Params) {
	t.Helper()
	w := []*mat.Dense{mat.NewDense(1, 2, []float64{1, 2})}
	b := [][]float64{{0.5}}
	require.NoError(t, serialization.SaveWithNormalization(cfg.ModelFile, w, b, norm))
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func TestRunner_PredictDataset(t *testing.T) {
	cfg := testConfig(t)
	saveSingleLayer(t, cfg, &normalize.Params{
		InMin: []float64{0, 0}, InMax: []float64{2, 2},
		OutMin: []float64{10}, OutMax: []float64{20},
	})

	out, err := New(cfg).Predict([]float64{2, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{sigmoid(1.5)*10 + 10}, out, 1e-12)
}

func TestRunner_PredictIdentity(t *testing.T) {
	cfg := testConfig(t)
	cfg.Normalization = "None"
	saveSingleLayer(t, cfg, nil)

	out, err := New(cfg).Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{sigmoid(3.5)}, out, 1e-12)
}

func TestRunner_PredictPerVector(t *testing.T) {
	cfg := testConfig(t)
	cfg.Normalization = "MinMax"
	saveSingleLayer(t, cfg, nil)

	// MinMax([3, 7]) = [0, 1]
	out, err := New(cfg).Predict([]float64{3, 7})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{sigmoid(2.5)}, out, 1e-12)
}

func TestRunner_PredictMissingNormalization(t *testing.T) {
	cfg := testConfig(t)
	saveSingleLayer(t, cfg, nil)

	_, err := New(cfg).Predict([]float64{1, 1})
	assert.ErrorIs(t, err, ErrMissingNormalization)
}

func TestRunner_PredictMissingModel(t *testing.T) {
	cfg := testConfig(t)

	_, err := New(cfg).Predict([]float64{1, 1})
	assert.ErrorIs(t, err, serialization.ErrModelNotFound)
}

func TestRunner_PredictModelShape(t *testing.T) {
	cfg := testConfig(t, 3)
	saveSingleLayer(t, cfg, nil)

	_, err := New(cfg).Predict([]float64{1, 1})
	assert.ErrorIs(t, err, ErrModelShape)
}

func TestRunner_PredictInputWidth(t *testing.T) {
	cfg := testConfig(t)
	cfg.Normalization = "None"
	saveSingleLayer(t, cfg, nil)

	_, err := New(cfg).Predict([]float64{1, 1, 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRunner_TrainWithoutData(t *testing.T) {
	cfg := testConfig(t)
	cfg.TrainingDataFile = ""

	_, err := New(cfg).Train()
	assert.ErrorIs(t, err, ErrNoTrainingData)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRunner_TrainDatasetWidthMismatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.Count = 3

	_, err := New(cfg).Train()
	assert.Error(t, err)
	assert.NoFileExists(t, cfg.ModelFile)
}

func TestParseInput(t *testing.T) {
	values, err := ParseInput("  0.5 -1\t2e3 ", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1, 2000}, values)

	_, err = ParseInput("1 2", 3)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseInput("1 two 3", 3)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseInput("", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRunner_PredictNormalizationWidth(t *testing.T) {
	cfg := testConfig(t)
	saveSingleLayer(t, cfg, &normalize.Params{
		InMin: []float64{0}, InMax: []float64{1},
		OutMin: []float64{0}, OutMax: []float64{1},
	})

	_, err := New(cfg).Predict([]float64{1, 1})
	assert.ErrorIs(t, err, ErrModelShape)
}
