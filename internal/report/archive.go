package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
)

// WriteArchive writes the JSON report zstd-compressed, for cheap retention
// as a CI artifact.
func WriteArchive(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return f.Close()
}

// ReadArchive loads a report written by WriteArchive.
func ReadArchive(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	var r Report
	if err := json.NewDecoder(dec).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	return &r, nil
}
