// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package sortuniq sorts and deduplicates line-oriented files too large to
// fit in memory.
//
// Input lines are read into bounded chunks; each chunk is sorted,
// deduplicated and spilled to a scratch file as a run.  The runs are then
// merged, at most 64 at a time, into one output file holding every
// distinct line exactly once, in ascending byte order, each terminated by
// a single '\n'.
package sortuniq

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bpowers/sortuniq/internal/chunk"
	"github.com/bpowers/sortuniq/internal/inputs"
	"github.com/bpowers/sortuniq/internal/merge"
	"github.com/bpowers/sortuniq/internal/progress"
	"github.com/bpowers/sortuniq/internal/runfile"
	"github.com/bpowers/sortuniq/internal/scratch"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidInputPath is returned for an input that is neither a file
	// nor a directory.
	ErrInvalidInputPath = inputs.ErrInvalidPath
	ErrNoInputFiles     = inputs.ErrNoInputs
	// ErrScratchExhausted is returned when no scratch file could be created
	// in either the primary or the fallback directory.
	ErrScratchExhausted = scratch.ErrExhausted
	ErrCorruptRun       = runfile.ErrCorrupt
)

// ProgressSink receives progress events as a sort runs.  Embed NopProgress
// to implement only the events you care about.
type ProgressSink = progress.Sink

type NopProgress = progress.Nop

// Option configures a sort.
type Option func(*options)

type options struct {
	logger *slog.Logger
	sink   ProgressSink
	fanIn  int
}

// WithLogger sets an optional logger.  If not provided, no logging output
// will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithProgress sends progress events to sink instead of the default, which
// logs them (or discards them when Config.Quiet is set).
func WithProgress(sink ProgressSink) Option {
	return func(opts *options) {
		opts.sink = sink
	}
}

// WithFanIn overrides how many runs are merged in a single pass.
func WithFanIn(n int) Option {
	return func(opts *options) {
		opts.fanIn = n
	}
}

// Run resolves cfg.Inputs to files and sorts them into cfg.Output.
func Run(cfg Config, opts ...Option) error {
	files, err := CollectInputs(cfg)
	if err != nil {
		return err
	}
	return Sort(files, cfg, opts...)
}

// CollectInputs validates cfg and returns the files it names, sorted.
func CollectInputs(cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return inputs.Collect(inputs.Options{
		Inputs:    cfg.Inputs,
		Output:    cfg.Output,
		Extension: cfg.Extension,
		Recursive: cfg.Recursive,
	})
}

// Sort merges the lines of files, which are used as given, into
// cfg.Output.  cfg.Inputs, cfg.Extension and cfg.Recursive are ignored.
// Scratch files are removed before Sort returns, whether or not it
// succeeds; on failure the contents of cfg.Output are unspecified.
func Sort(files []string, cfg Config, opts ...Option) error {
	options := options{fanIn: merge.FanIn}
	options.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.logger

	if cfg.Output == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidConfig)
	}
	if cfg.ChunkLines <= 0 {
		return fmt.Errorf("%w: chunk_lines must be greater than zero (got %d)", ErrInvalidConfig, cfg.ChunkLines)
	}

	sink := options.sink
	if sink == nil {
		if cfg.Quiet {
			sink = NopProgress{}
		} else {
			sink = progress.NewReporter(logger, len(files))
		}
	}

	alloc, err := scratch.New(cfg.TempDir, cfg.Output, scratch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := alloc.Close(); err != nil {
			logger.Warn("removing scratch files", "err", err)
		}
	}()

	builder, err := chunk.NewBuilder(cfg.ChunkLines, alloc, chunk.WithLogger(logger))
	if err != nil {
		return err
	}
	runs, err := builder.Build(files, sink)
	if err != nil {
		return err
	}

	if len(runs) > 0 {
		sink.MergeStarted(len(runs))
	}
	engine := merge.New(alloc, merge.WithLogger(logger), merge.WithFanIn(options.fanIn))
	if err := engine.Merge(runs, cfg.Output, sink); err != nil {
		return err
	}

	sink.Finished(cfg.Output)
	return nil
}
