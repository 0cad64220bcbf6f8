package serialization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlp/internal/normalize"
)

// modelFileMode is the permission of written model files.
const modelFileMode = 0o644

// Save writes weights and biases to path without a normalization block,
// replacing any existing file.
func Save(path string, weights []*mat.Dense, biases [][]float64) error {
	return Write(path, NewModel(weights, biases, nil))
}

// SaveWithNormalization writes weights, biases and normalization bounds to
// path, replacing any existing file. A nil norm behaves like Save.
func SaveWithNormalization(path string, weights []*mat.Dense, biases [][]float64, norm *normalize.Params) error {
	return Write(path, NewModel(weights, biases, norm))
}

// Write validates and atomically writes a model record as indented JSON.
func Write(path string, model *Model) (err error) {
	if err := model.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}

	dir := filepath.Dir(path)
	//nolint:gosec // G304: Model path comes from configuration, which is expected for model saving
	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := file.Name()
	defer func() {
		if err != nil {
			_ = file.Close() // Best effort close on error
			_ = os.Remove(tmpName)
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err = enc.Encode(model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("failed to sync model: %w", err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close model: %w", err)
	}
	if err = os.Chmod(tmpName, modelFileMode); err != nil {
		return fmt.Errorf("failed to set model permissions: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace model: %w", err)
	}
	return nil
}
