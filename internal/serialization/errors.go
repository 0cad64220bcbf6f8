package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrModelNotFound  = errors.New("model file not found")
	ErrMalformedModel = errors.New("malformed model file")
	ErrNonFinite      = errors.New("parameter is NaN or infinite")
)

// ValidationError provides detailed information about a malformed model.
type ValidationError struct {
	Field   string // Field involved (e.g., "Weights", "Biases", "Normalization")
	Layer   int    // Layer index, -1 when not layer specific
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Layer >= 0 {
		return fmt.Sprintf("%s: layer %d: %s", e.Field, e.Layer, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Details)
}

// Unwrap lets errors.Is match ErrMalformedModel.
func (e *ValidationError) Unwrap() error {
	return ErrMalformedModel
}
