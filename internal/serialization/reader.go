package serialization

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/normalize"
)

// Load reads weights and biases from path, ignoring any normalization block.
func Load(path string) ([]*mat.Dense, [][]float64, error) {
	model, err := Read(path)
	if err != nil {
		return nil, nil, err
	}
	return model.Matrices(), model.Biases, nil
}

// LoadWithNormalization reads weights, biases and the normalization block
// from path. The returned *normalize.Params is nil when the file predates
// normalization persistence.
func LoadWithNormalization(path string) ([]*mat.Dense, [][]float64, *normalize.Params, error) {
	model, err := Read(path)
	if err != nil {
		return nil, nil, nil, err
	}
	return model.Matrices(), model.Biases, model.Normalization, nil
}

// Read decodes and validates a model record.
func Read(path string) (model *Model, err error) {
	//nolint:gosec // G304: Model path comes from configuration, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	model = &Model{}
	dec := json.NewDecoder(file)
	if err := dec.Decode(model); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedModel, path, err)
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: trailing data after model", ErrMalformedModel, path)
	}
	if model.Weights == nil || model.Biases == nil {
		return nil, fmt.Errorf("%w: %s: missing Weights or Biases", ErrMalformedModel, path)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}
