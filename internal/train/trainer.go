// Package train runs the training loop over an nn.Network.
//
// # Batches
//
// BatchSize controls how many samples are forward- and backward-evaluated
// before their updates are flushed. It does NOT average gradients: after a
// chunk's passes complete, the optimizer takes one full Adam step per sample,
// in sample order, each advancing the shared timestep. With BatchSize 1 this is
// plain per-sample Adam; with larger chunks every sample in a chunk sees the
// weights as they were at the start of the chunk.
//
// # Early stopping
//
// The best epoch loss starts at +Inf. A strictly lower epoch loss is
// checkpointed and resets the patience counter; any other epoch increments it,
// and training stops once the counter reaches Patience. Patience <= 0 disables
// early stopping.
package train

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/optim"
)

// Common errors.
var (
	ErrInvalidConfig = errors.New("invalid training configuration")
	ErrDataset       = errors.New("invalid training data")
)

// DefaultLogEvery is the default epoch interval of progress logs.
const DefaultLogEvery = 1000

// Config holds training hyperparameters.
type Config struct {
	LearningRate float64
	Epochs       int
	BatchSize    int // Samples evaluated before updates are flushed (default 1)
	Patience     int // Epochs without improvement before stopping; <= 0 disables
	LogEvery     int // Epoch interval of progress logs (default 1000)
}

// Checkpointer persists parameters whenever the epoch loss improves.
type Checkpointer interface {
	Checkpoint(weights []*mat.Dense, biases [][]float64) error
}

// CheckpointFunc adapts a function to Checkpointer.
type CheckpointFunc func(weights []*mat.Dense, biases [][]float64) error

// Checkpoint calls f.
func (f CheckpointFunc) Checkpoint(weights []*mat.Dense, biases [][]float64) error {
	return f(weights, biases)
}

// Result summarizes a training run.
type Result struct {
	Epochs    int       // Epochs completed
	BestLoss  float64   // Lowest epoch loss seen
	FinalLoss float64   // Loss of the last completed epoch
	Stopped   bool      // Whether early stopping ended the run
	History   []float64 // Loss of every completed epoch
}

// Trainer drives forward passes, backpropagation and optimizer steps.
type Trainer struct {
	net       *nn.Network
	optimizer optim.Optimizer
	cfg       Config
	ckpt      Checkpointer
	logger    *slog.Logger
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithCheckpointer sets where improved parameters are persisted.
func WithCheckpointer(c Checkpointer) Option {
	return func(t *Trainer) { t.ckpt = c }
}

// WithLogger sets the progress logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// WithOptimizer replaces the default Adam optimizer.
func WithOptimizer(o optim.Optimizer) Option {
	return func(t *Trainer) { t.optimizer = o }
}

// New creates a Trainer that owns an Adam optimizer over net.
func New(net *nn.Network, cfg Config, opts ...Option) (*Trainer, error) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 1
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = DefaultLogEvery
	}
	switch {
	case cfg.LearningRate <= 0 || math.IsNaN(cfg.LearningRate) || math.IsInf(cfg.LearningRate, 0):
		return nil, fmt.Errorf("%w: learning rate must be positive, got %v", ErrInvalidConfig, cfg.LearningRate)
	case cfg.BatchSize < 1:
		return nil, fmt.Errorf("%w: batch size must be at least 1, got %d", ErrInvalidConfig, cfg.BatchSize)
	case cfg.Epochs < 0:
		return nil, fmt.Errorf("%w: epochs must not be negative, got %d", ErrInvalidConfig, cfg.Epochs)
	}

	t := &Trainer{
		net:    net,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.optimizer == nil {
		t.optimizer = optim.NewAdam(net, optim.AdamConfig{LR: cfg.LearningRate})
	}
	return t, nil
}

// Network returns the trained network.
func (t *Trainer) Network() *nn.Network {
	return t.net
}

// Optimizer returns the optimizer driving updates.
func (t *Trainer) Optimizer() optim.Optimizer {
	return t.optimizer
}

// SetParameters loads weights and biases into the network and resets the
// optimizer state so its moments match the new parameters.
func (t *Trainer) SetParameters(weights []*mat.Dense, biases [][]float64) error {
	if err := t.net.SetParameters(weights, biases); err != nil {
		return err
	}
	t.optimizer.Reset()
	return nil
}

// sample is one evaluated training example awaiting its update.
type sample struct {
	trace  [][]float64
	deltas [][]float64
}

// Train fits the network to inputs and targets.
func (t *Trainer) Train(inputs, targets [][]float64) (Result, error) {
	if err := t.checkData(inputs, targets); err != nil {
		return Result{}, err
	}

	result := Result{BestLoss: math.Inf(1), FinalLoss: math.NaN()}
	loss := t.net.Loss()
	noImprovement := 0
	pending := make([]sample, 0, t.cfg.BatchSize)

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		var total float64

		for start := 0; start < len(inputs); start += t.cfg.BatchSize {
			end := min(start+t.cfg.BatchSize, len(inputs))
			pending = pending[:0]

			for i := start; i < end; i++ {
				trace, err := t.net.Trace(inputs[i])
				if err != nil {
					return result, fmt.Errorf("sample %d: %w", i, err)
				}
				deltas, err := t.net.Backpropagate(trace, targets[i])
				if err != nil {
					return result, fmt.Errorf("sample %d: %w", i, err)
				}
				pending = append(pending, sample{trace: trace, deltas: deltas})
				total += loss.Value(trace[len(trace)-1], targets[i])
			}

			for _, s := range pending {
				if err := t.optimizer.Step(s.trace, s.deltas); err != nil {
					return result, err
				}
			}
		}

		epochLoss := total / float64(len(inputs))
		result.Epochs = epoch + 1
		result.FinalLoss = epochLoss
		result.History = append(result.History, epochLoss)

		if epoch%t.cfg.LogEvery == 0 {
			t.logger.Info("training progress", "epoch", epoch, "epochs", t.cfg.Epochs, "loss", epochLoss)
		}

		if epochLoss < result.BestLoss {
			result.BestLoss = epochLoss
			noImprovement = 0
			if t.ckpt != nil {
				if err := t.ckpt.Checkpoint(t.net.Weights(), t.net.Biases()); err != nil {
					return result, fmt.Errorf("checkpoint at epoch %d: %w", epoch, err)
				}
				t.logger.Debug("checkpoint saved", "epoch", epoch, "loss", epochLoss)
			}
			continue
		}

		noImprovement++
		if t.cfg.Patience > 0 && noImprovement >= t.cfg.Patience {
			t.logger.Info("early stopping triggered", "epoch", epoch, "patience", t.cfg.Patience, "best_loss", result.BestLoss)
			result.Stopped = true
			break
		}
	}

	return result, nil
}

// Evaluate returns the mean loss over a dataset without updating parameters.
func (t *Trainer) Evaluate(inputs, targets [][]float64) (float64, error) {
	if err := t.checkData(inputs, targets); err != nil {
		return 0, err
	}
	loss := t.net.Loss()
	var total float64
	for i, input := range inputs {
		out, err := t.net.Forward(input)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		total += loss.Value(out, targets[i])
	}
	return total / float64(len(inputs)), nil
}

func (t *Trainer) checkData(inputs, targets [][]float64) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no samples", ErrDataset)
	}
	if len(inputs) != len(targets) {
		return fmt.Errorf("%w: %d inputs but %d targets", ErrDataset, len(inputs), len(targets))
	}
	in, out := t.net.InputSize(), t.net.OutputSize()
	for i := range inputs {
		if len(inputs[i]) != in || len(targets[i]) != out {
			return fmt.Errorf("%w: sample %d has %d inputs and %d targets, want %d and %d: %w",
				ErrDataset, i, len(inputs[i]), len(targets[i]), in, out, nn.ErrShapeMismatch)
		}
	}
	return nil
}
