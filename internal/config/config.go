// Package config loads the trainer configuration.
//
// The JSON form follows the appsettings.json layout:
//
//	{
//	  "Input": {"Count": 2},
//	  "Output": {"Count": 1},
//	  "HiddenLayers": [{"NeuronCount": 3}],
//	  "LearningRate": 0.05,
//	  "Epochs": 3000,
//	  "Bias": true,
//	  "Normalization": "Dataset",
//	  "Activation": "Sigmoid",
//	  "LossFunction": "MSE",
//	  "TrainingDataFile": "xor.json",
//	  "ModelFile": "model.json",
//	  "BatchSize": 1,
//	  "EarlyStoppingPatience": 10
//	}
//
// Files ending in .yaml or .yml use the same keys.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for malformed or inconsistent configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults for optional settings.
const (
	DefaultBatchSize     = 1
	DefaultPatience      = 10
	DefaultNormalization = "Dataset"
)

// Width describes an input or output layer.
type Width struct {
	Count int `json:"Count" yaml:"Count"`
}

// HiddenLayer describes one hidden layer.
type HiddenLayer struct {
	NeuronCount int `json:"NeuronCount" yaml:"NeuronCount"`
}

// Config holds every setting of a train or predict run.
type Config struct {
	Input                 Width         `json:"Input" yaml:"Input"`
	Output                Width         `json:"Output" yaml:"Output"`
	HiddenLayers          []HiddenLayer `json:"HiddenLayers" yaml:"HiddenLayers"`
	LearningRate          float64       `json:"LearningRate" yaml:"LearningRate"`
	Epochs                int           `json:"Epochs" yaml:"Epochs"`
	Bias                  bool          `json:"Bias" yaml:"Bias"`
	Normalization         string        `json:"Normalization" yaml:"Normalization"`
	Activation            string        `json:"Activation" yaml:"Activation"`
	LossFunction          string        `json:"LossFunction" yaml:"LossFunction"`
	TrainingDataFile      string        `json:"TrainingDataFile" yaml:"TrainingDataFile"`
	ModelFile             string        `json:"ModelFile" yaml:"ModelFile"`
	BatchSize             int           `json:"BatchSize" yaml:"BatchSize"`
	EarlyStoppingPatience int           `json:"EarlyStoppingPatience" yaml:"EarlyStoppingPatience"`
}

// Default returns a Config with optional settings at their defaults.
func Default() Config {
	return Config{
		BatchSize:             DefaultBatchSize,
		EarlyStoppingPatience: DefaultPatience,
		Normalization:         DefaultNormalization,
	}
}

// Load reads, defaults and validates a configuration file. Relative data and
// model paths are resolved against the directory of the file.
func Load(path string) (Config, error) {
	//nolint:gosec // G304: Config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.TrainingDataFile = resolve(dir, cfg.TrainingDataFile)
	cfg.ModelFile = resolve(dir, cfg.ModelFile)
	return cfg, nil
}

// Parse decodes and validates configuration bytes. ext selects the decoder:
// ".yaml" and ".yml" use YAML, anything else JSON.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks the configuration for values the trainer cannot use.
func (c *Config) Validate() error {
	var problems []string
	if c.Input.Count < 1 {
		problems = append(problems, fmt.Sprintf("Input.Count must be positive, got %d", c.Input.Count))
	}
	if c.Output.Count < 1 {
		problems = append(problems, fmt.Sprintf("Output.Count must be positive, got %d", c.Output.Count))
	}
	for i, h := range c.HiddenLayers {
		if h.NeuronCount < 1 {
			problems = append(problems, fmt.Sprintf("HiddenLayers[%d].NeuronCount must be positive, got %d", i, h.NeuronCount))
		}
	}
	if c.LearningRate <= 0 || math.IsNaN(c.LearningRate) || math.IsInf(c.LearningRate, 0) {
		problems = append(problems, fmt.Sprintf("LearningRate must be positive, got %v", c.LearningRate))
	}
	if c.Epochs < 0 {
		problems = append(problems, fmt.Sprintf("Epochs must not be negative, got %d", c.Epochs))
	}
	if c.BatchSize < 1 {
		problems = append(problems, fmt.Sprintf("BatchSize must be at least 1, got %d", c.BatchSize))
	}
	if c.ModelFile == "" {
		problems = append(problems, "ModelFile is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Topology returns the layer widths: input, hidden layers, output.
func (c *Config) Topology() []int {
	topology := make([]int, 0, len(c.HiddenLayers)+2)
	topology = append(topology, c.Input.Count)
	for _, h := range c.HiddenLayers {
		topology = append(topology, h.NeuronCount)
	}
	return append(topology, c.Output.Count)
}
