// Package runner wires configuration, datasets, normalization, training and
// the model store into the train and predict operations.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/config"
	"github.com/born-ml/mlp/internal/dataset"
	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/normalize"
	"github.com/born-ml/mlp/internal/parallel"
	"github.com/born-ml/mlp/internal/serialization"
	"github.com/born-ml/mlp/internal/train"
)

// Common errors.
var (
	ErrMissingNormalization = errors.New("model has no normalization parameters; retrain to persist them")
	ErrModelShape           = errors.New("model does not match configured topology")
	ErrInvalidInput         = errors.New("invalid prediction input")
	ErrNoTrainingData       = errors.New("no training data file configured")
)

// Runner executes train and predict runs for one configuration.
type Runner struct {
	cfg      config.Config
	logger   *slog.Logger
	source   rand.Source
	parallel parallel.Config
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for progress and lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithSeed makes weight initialization reproducible.
func WithSeed(seed uint64) Option {
	return func(r *Runner) { r.source = rand.NewSource(seed) }
}

// WithParallel sets the per-neuron fan-out configuration.
func WithParallel(cfg parallel.Config) Option {
	return func(r *Runner) { r.parallel = cfg }
}

// New creates a Runner. The configuration should already be validated.
func New(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the run configuration.
func (r *Runner) Config() config.Config {
	return r.cfg
}

func (r *Runner) network() (*nn.Network, error) {
	return nn.New(nn.Config{
		Topology:   r.cfg.Topology(),
		Bias:       r.cfg.Bias,
		Activation: nn.ParseActivation(r.cfg.Activation),
		Loss:       nn.ParseLoss(r.cfg.LossFunction),
		Source:     r.source,
		Parallel:   r.parallel,
	})
}

// Train loads the dataset, normalizes it, trains a fresh network and persists
// the parameters to the model file at every improving epoch.
//
// With Dataset normalization the fitted bounds are written with every
// checkpoint so that Predict can reproduce raw-scale outputs. Per-vector
// normalization kinds transform inputs only; targets stay raw.
func (r *Runner) Train() (train.Result, error) {
	if r.cfg.TrainingDataFile == "" {
		return train.Result{}, fmt.Errorf("%w: %w", config.ErrInvalidConfig, ErrNoTrainingData)
	}
	ds, err := dataset.Load(r.cfg.TrainingDataFile, r.cfg.Input.Count, r.cfg.Output.Count)
	if err != nil {
		return train.Result{}, err
	}

	inputs, targets, norm, err := r.prepare(ds)
	if err != nil {
		return train.Result{}, err
	}

	net, err := r.network()
	if err != nil {
		return train.Result{}, err
	}

	modelFile := r.cfg.ModelFile
	trainer, err := train.New(net, train.Config{
		LearningRate: r.cfg.LearningRate,
		Epochs:       r.cfg.Epochs,
		BatchSize:    r.cfg.BatchSize,
		Patience:     r.cfg.EarlyStoppingPatience,
	},
		train.WithLogger(r.logger),
		train.WithCheckpointer(train.CheckpointFunc(func(weights []*mat.Dense, biases [][]float64) error {
			return serialization.SaveWithNormalization(modelFile, weights, biases, norm)
		})),
	)
	if err != nil {
		return train.Result{}, err
	}

	r.logger.Info("training started",
		"topology", fmt.Sprint(net.Topology()),
		"samples", ds.Len(),
		"activation", net.Activation().Kind.String(),
		"loss", net.Loss().Kind.String(),
		"normalization", normalize.Parse(r.cfg.Normalization).String())

	result, err := trainer.Train(inputs, targets)
	if err != nil {
		return result, err
	}

	r.logger.Info("training finished",
		"epochs", result.Epochs,
		"best_loss", result.BestLoss,
		"early_stopped", result.Stopped,
		"model", modelFile)
	return result, nil
}

func (r *Runner) prepare(ds *dataset.Dataset) (inputs, targets [][]float64, norm *normalize.Params, err error) {
	kind := normalize.Parse(r.cfg.Normalization)
	inputs = make([][]float64, ds.Len())
	targets = make([][]float64, ds.Len())

	if kind == normalize.Dataset {
		params, err := normalize.Fit(ds.Inputs, ds.Targets)
		if err != nil {
			return nil, nil, nil, err
		}
		for i := range ds.Inputs {
			inputs[i] = params.ApplyInput(ds.Inputs[i])
			targets[i] = params.ApplyOutput(ds.Targets[i])
		}
		return inputs, targets, &params, nil
	}

	transform := kind.Transform()
	for i := range ds.Inputs {
		inputs[i] = transform(ds.Inputs[i])
		targets[i] = ds.Targets[i]
	}
	return inputs, targets, nil, nil
}

// Predict loads the persisted model and evaluates one raw input vector,
// returning the output on the raw target scale.
func (r *Runner) Predict(input []float64) ([]float64, error) {
	weights, biases, norm, err := serialization.LoadWithNormalization(r.cfg.ModelFile)
	if err != nil {
		return nil, err
	}

	net, err := r.network()
	if err != nil {
		return nil, err
	}
	if err := net.SetParameters(weights, biases); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelShape, err)
	}

	kind := normalize.Parse(r.cfg.Normalization)
	if kind == normalize.Dataset {
		if norm == nil {
			return nil, fmt.Errorf("%s: %w", r.cfg.ModelFile, ErrMissingNormalization)
		}
		if err := norm.Validate(net.InputSize(), net.OutputSize()); err != nil {
			return nil, fmt.Errorf("%w: normalization: %w", ErrModelShape, err)
		}
	}
	if len(input) != net.InputSize() {
		return nil, fmt.Errorf("%w: got %d values, want %d: %w",
			ErrInvalidInput, len(input), net.InputSize(), nn.ErrShapeMismatch)
	}

	if kind != normalize.Dataset {
		return net.Forward(kind.Transform()(input))
	}

	out, err := net.Forward(norm.ApplyInput(input))
	if err != nil {
		return nil, err
	}
	return norm.InvertOutput(out), nil
}

// ParseInput parses a whitespace-separated line of exactly width numbers.
func ParseInput(line string, width int) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) != width {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrInvalidInput, len(fields), width)
	}
	values := make([]float64, width)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %w", ErrInvalidInput, i+1, err)
		}
		values[i] = v
	}
	return values, nil
}
