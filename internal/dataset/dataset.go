// Package dataset reads training examples.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidRecord is returned when a record cannot be used for training.
var ErrInvalidRecord = errors.New("invalid training record")

// RecordError describes a malformed record.
type RecordError struct {
	Row     int    // 1-based record number
	Field   string // "Input", "Output" or the CSV column
	Details string
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %s: %s", e.Row, e.Field, e.Details)
}

// Unwrap lets errors.Is match ErrInvalidRecord.
func (e *RecordError) Unwrap() error {
	return ErrInvalidRecord
}

// Record is one training example.
type Record struct {
	Input  []float64 `json:"Input"`
	Output []float64 `json:"Output"`
}

// Dataset holds parallel slices of inputs and targets.
type Dataset struct {
	Inputs  [][]float64
	Targets [][]float64
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return len(d.Inputs)
}

// Load reads a dataset file. Files ending in .csv hold one example per row
// with inputWidth input columns followed by outputWidth target columns; any
// other file is a JSON array of {"Input": [...], "Output": [...]} records.
func Load(path string, inputWidth, outputWidth int) (*Dataset, error) {
	//nolint:gosec // G304: Dataset path comes from configuration
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	var ds *Dataset
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		ds, err = ReadCSV(file, inputWidth, outputWidth)
	} else {
		ds, err = ReadJSON(file, inputWidth, outputWidth)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// ReadJSON decodes a JSON array of records and checks their widths.
func ReadJSON(r io.Reader, inputWidth, outputWidth int) (*Dataset, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	ds := &Dataset{
		Inputs:  make([][]float64, 0, len(records)),
		Targets: make([][]float64, 0, len(records)),
	}
	for i, rec := range records {
		if len(rec.Input) != inputWidth {
			return nil, &RecordError{Row: i + 1, Field: "Input",
				Details: fmt.Sprintf("got %d values, want %d", len(rec.Input), inputWidth)}
		}
		if len(rec.Output) != outputWidth {
			return nil, &RecordError{Row: i + 1, Field: "Output",
				Details: fmt.Sprintf("got %d values, want %d", len(rec.Output), outputWidth)}
		}
		ds.Inputs = append(ds.Inputs, rec.Input)
		ds.Targets = append(ds.Targets, rec.Output)
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: no records", ErrInvalidRecord)
	}
	return ds, nil
}

// ReadCSV parses rows of inputWidth inputs followed by outputWidth targets.
// A first row that does not parse as numbers is treated as a header.
func ReadCSV(r io.Reader, inputWidth, outputWidth int) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = inputWidth + outputWidth
	reader.TrimLeadingSpace = true

	ds := &Dataset{}
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}

		values, col, err := parseFloats(record)
		if err != nil {
			if row == 1 {
				continue // header
			}
			return nil, &RecordError{Row: row, Field: fmt.Sprintf("column %d", col+1), Details: err.Error()}
		}
		ds.Inputs = append(ds.Inputs, values[:inputWidth:inputWidth])
		ds.Targets = append(ds.Targets, values[inputWidth:])
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: no records", ErrInvalidRecord)
	}
	return ds, nil
}

func parseFloats(fields []string) ([]float64, int, error) {
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, i, err
		}
		values[i] = v
	}
	return values, 0, nil
}
