// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mlp trains multi-layer perceptrons and persists them as JSON.
//
// # Basic Usage
//
//	cfg, err := mlp.LoadConfig("appsettings.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r := mlp.NewRunner(cfg, mlp.WithSeed(1))
//
//	result, err := r.Train()
//	out, err := r.Predict([]float64{0, 1})
//
// The network and optimizer are available separately in the nn and optim
// packages for callers that drive their own loop.
package mlp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/config"
	"github.com/born-ml/mlp/internal/normalize"
	"github.com/born-ml/mlp/internal/runner"
	"github.com/born-ml/mlp/internal/serialization"
	"github.com/born-ml/mlp/internal/train"
	"github.com/born-ml/mlp/nn"
	"github.com/born-ml/mlp/optim"
)

// Configuration

// Config holds every setting of a train or predict run.
type Config = config.Config

// LoadConfig reads and validates a JSON or YAML configuration file.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Training

// Trainer drives forward passes, backpropagation and Adam steps.
type Trainer = train.Trainer

// TrainConfig holds training hyperparameters.
type TrainConfig = train.Config

// TrainOption configures a Trainer.
type TrainOption = train.Option

// Result summarizes a training run.
type Result = train.Result

// CheckpointFunc adapts a function to a checkpoint sink.
type CheckpointFunc = train.CheckpointFunc

// NewTrainer creates a Trainer with an Adam optimizer over net.
func NewTrainer(net *nn.Network, cfg TrainConfig, opts ...TrainOption) (*Trainer, error) {
	return train.New(net, cfg, opts...)
}

// WithCheckpointer sets where improved parameters are persisted.
func WithCheckpointer(c train.Checkpointer) TrainOption {
	return train.WithCheckpointer(c)
}

// WithOptimizer replaces the default Adam optimizer.
func WithOptimizer(o optim.Optimizer) TrainOption {
	return train.WithOptimizer(o)
}

// Model store

// Normalization holds dataset-wide min-max bounds.
type Normalization = normalize.Params

// FitNormalization computes per-feature bounds of inputs and outputs.
func FitNormalization(inputs, outputs [][]float64) (Normalization, error) {
	return normalize.Fit(inputs, outputs)
}

// SaveModel writes parameters and optional normalization bounds to path.
func SaveModel(path string, weights []*mat.Dense, biases [][]float64, norm *Normalization) error {
	return serialization.SaveWithNormalization(path, weights, biases, norm)
}

// LoadModel reads parameters and normalization bounds from path. The bounds
// are nil when the file has none.
func LoadModel(path string) ([]*mat.Dense, [][]float64, *Normalization, error) {
	return serialization.LoadWithNormalization(path)
}

// Runner

// Runner executes train and predict runs for one configuration.
type Runner = runner.Runner

// RunnerOption configures a Runner.
type RunnerOption = runner.Option

// NewRunner creates a Runner.
func NewRunner(cfg Config, opts ...RunnerOption) *Runner {
	return runner.New(cfg, opts...)
}

// WithSeed makes weight initialization reproducible.
func WithSeed(seed uint64) RunnerOption {
	return runner.WithSeed(seed)
}

// Errors
var (
	ErrModelNotFound        = serialization.ErrModelNotFound
	ErrMalformedModel       = serialization.ErrMalformedModel
	ErrMissingNormalization = runner.ErrMissingNormalization
	ErrModelShape           = runner.ErrModelShape
	ErrInvalidConfig        = config.ErrInvalidConfig
)
