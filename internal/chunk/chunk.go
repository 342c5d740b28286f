// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package chunk turns input files into sorted, duplicate-free runs,
// holding at most a fixed number of lines in memory at a time.
package chunk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/bpowers/sortuniq/internal/lines"
	"github.com/bpowers/sortuniq/internal/progress"
	"github.com/bpowers/sortuniq/internal/runfile"
	"github.com/bpowers/sortuniq/internal/scratch"
	"github.com/bpowers/sortuniq/internal/seqio"
	"github.com/bpowers/sortuniq/internal/zero"
)

const maxInitialCapacity = 100_000

var (
	ErrInvalidSize = errors.New("chunk size must be greater than zero")
)

// Option configures a Builder.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets an optional logger for run creation events.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// Builder reads lines into bounded chunks and spills each chunk as a run.
type Builder struct {
	maxLines int
	alloc    *scratch.Allocator
	logger   *slog.Logger
}

// NewBuilder returns a Builder holding at most maxLines lines in memory.
func NewBuilder(maxLines int, alloc *scratch.Allocator, opts ...Option) (*Builder, error) {
	if maxLines <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidSize, maxLines)
	}
	var options options
	options.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, opt := range opts {
		opt(&options)
	}
	return &Builder{
		maxLines: maxLines,
		alloc:    alloc,
		logger:   options.logger,
	}, nil
}

type build struct {
	*Builder
	sink  progress.Sink
	chunk [][]byte
	runs  []*runfile.Run
	total uint64
}

// Build reads every file in order and returns the runs it produced.  Chunk
// boundaries don't line up with file boundaries: a run can hold lines from
// several files.  On error every run produced so far is released.
func (b *Builder) Build(files []string, sink progress.Sink) ([]*runfile.Run, error) {
	if sink == nil {
		sink = progress.Nop{}
	}
	st := &build{
		Builder: b,
		sink:    sink,
		chunk:   make([][]byte, 0, min(b.maxLines, maxInitialCapacity)),
	}

	for _, path := range files {
		if err := st.consume(path); err != nil {
			_ = runfile.Release(st.runs)
			return nil, err
		}
	}

	if err := st.flush(); err != nil {
		_ = runfile.Release(st.runs)
		return nil, err
	}

	return st.runs, nil
}

func (st *build) consume(path string) error {
	st.sink.FileStarted(path)

	f, err := seqio.Open(path)
	if err != nil {
		return fmt.Errorf("opening input %q: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := lines.NewReader(f)
	for {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input %q: %w", path, err)
		}

		st.chunk = append(st.chunk, line)
		st.total++
		st.sink.LineObserved(st.total)

		if len(st.chunk) >= st.maxLines {
			if err := st.flush(); err != nil {
				return err
			}
		}
	}

	st.sink.FileFinished(path)
	return nil
}

// flush sorts and dedups the current chunk and writes it as a run.
func (st *build) flush() error {
	if len(st.chunk) == 0 {
		return nil
	}

	slices.SortFunc(st.chunk, bytes.Compare)
	unique := slices.CompactFunc(st.chunk, bytes.Equal)

	run, err := runfile.WriteAll(st.alloc, unique)
	if err != nil {
		return fmt.Errorf("flushing chunk: %w", err)
	}
	st.logger.Debug("run written", "path", run.Name(), "lines", len(st.chunk), "unique", len(unique))
	st.runs = append(st.runs, run)

	// we're done with these lines -- drop them so they can be GC'd
	zero.ByteSlices(st.chunk[:cap(st.chunk)])
	st.chunk = st.chunk[:0]
	return nil
}
