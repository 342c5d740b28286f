// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package sortuniq

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultExtension  = "txt"
	DefaultChunkLines = 1_000_000
)

// Config describes a sort job.
type Config struct {
	// Output is the file the sorted, deduplicated lines are written to.
	Output string `yaml:"output"`
	// Inputs are files or directories to read.
	Inputs []string `yaml:"inputs"`
	// Extension filters the files found in directories (and named
	// directly), without the leading dot.
	Extension string `yaml:"extension"`
	Recursive bool   `yaml:"recursive"`
	// ChunkLines bounds how many lines are held in memory at once.
	ChunkLines int `yaml:"chunk_lines"`
	// TempDir holds scratch files.  When empty, the directory containing
	// Output is used, with the system temporary directory as a fallback.
	TempDir string `yaml:"temp_dir"`
	Quiet   bool   `yaml:"quiet"`
}

// DefaultConfig returns a Config with every optional field at its default.
func DefaultConfig() Config {
	return Config{
		Extension:  DefaultExtension,
		ChunkLines: DefaultChunkLines,
	}
}

// LoadConfig overlays the YAML job file at path onto cfg.  Fields absent
// from the file keep their current values; unknown fields are an error.
func LoadConfig(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config %q: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: parsing %q: %w", ErrInvalidConfig, path, err)
	}
	return nil
}

// Validate reports the first problem that would keep cfg from running.
func (c Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidConfig)
	}
	if len(c.Inputs) == 0 {
		return fmt.Errorf("%w: at least one input path is required", ErrInvalidConfig)
	}
	if c.ChunkLines <= 0 {
		return fmt.Errorf("%w: chunk_lines must be greater than zero (got %d)", ErrInvalidConfig, c.ChunkLines)
	}
	if c.Extension == "" {
		return fmt.Errorf("%w: extension must not be empty", ErrInvalidConfig)
	}
	return nil
}
