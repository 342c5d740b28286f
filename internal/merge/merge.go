// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package merge reduces sorted runs to a single sorted, duplicate-free
// output file.
//
// At most FanIn runs are open at once.  When there are more, consecutive
// groups are merged into intermediate runs, round after round, until few
// enough remain to merge straight into the output.
package merge

import (
	"bufio"
	"bytes"
	"container/heap"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bpowers/sortuniq/internal/progress"
	"github.com/bpowers/sortuniq/internal/runfile"
	"github.com/bpowers/sortuniq/internal/scratch"
)

const (
	// FanIn is the maximum number of runs merged in a single pass.
	FanIn = 64

	outputBufferSize = 4 * 1024 * 1024
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger *slog.Logger
	fanIn  int
}

// WithLogger sets an optional logger for merge round events.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithFanIn overrides FanIn.  Values below 2 are treated as 2.
func WithFanIn(n int) Option {
	return func(opts *options) {
		opts.fanIn = n
	}
}

// Engine merges runs, allocating intermediate runs from its Allocator.
type Engine struct {
	alloc  *scratch.Allocator
	fanIn  int
	logger *slog.Logger
}

func New(alloc *scratch.Allocator, opts ...Option) *Engine {
	options := options{fanIn: FanIn}
	options.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, opt := range opts {
		opt(&options)
	}
	return &Engine{
		alloc:  alloc,
		fanIn:  max(options.fanIn, 2),
		logger: options.logger,
	}
}

// Merge consumes runs and writes every distinct line they hold, in
// ascending byte order, to output.  Every run is released by the time
// Merge returns, whether or not it succeeds.  With no runs, output is
// created empty.
func (e *Engine) Merge(runs []*runfile.Run, output string, sink progress.Sink) error {
	if sink == nil {
		sink = progress.Nop{}
	}

	pending, err := e.reduce(runs, sink)
	if err != nil {
		return err
	}
	defer e.release(pending)

	return commit(output, func(w *bufio.Writer) error {
		return mergeRuns(pending, func(line []byte) error {
			if _, err := w.Write(line); err != nil {
				return fmt.Errorf("writing output %q: %w", output, err)
			}
			if err := w.WriteByte('\n'); err != nil {
				return fmt.Errorf("writing output %q: %w", output, err)
			}
			return nil
		})
	})
}

// reduce merges groups of runs into intermediate runs until at most
// e.fanIn remain.  Each round's output is sorted and duplicate-free, so
// equal lines from different input runs end up adjacent in some later
// round and are collapsed there.
func (e *Engine) reduce(pending []*runfile.Run, sink progress.Sink) ([]*runfile.Run, error) {
	for round := 1; len(pending) > e.fanIn; round++ {
		next := make([]*runfile.Run, 0, (len(pending)+e.fanIn-1)/e.fanIn)
		for start := 0; start < len(pending); start += e.fanIn {
			group := pending[start:min(start+e.fanIn, len(pending))]
			if len(group) == 1 {
				next = append(next, group[0])
				continue
			}

			merged, err := e.mergeToRun(group)
			if err != nil {
				e.release(next)
				e.release(pending[start:])
				return nil, err
			}
			e.release(group)
			next = append(next, merged)
		}

		e.logger.Debug("merge round completed", "round", round, "inputs", len(pending), "remaining", len(next))
		sink.MergeRoundCompleted(len(next))
		pending = next
	}
	return pending, nil
}

func (e *Engine) mergeToRun(group []*runfile.Run) (*runfile.Run, error) {
	a, err := runfile.Create(e.alloc)
	if err != nil {
		return nil, fmt.Errorf("creating intermediate run: %w", err)
	}
	if err := mergeRuns(group, a.Append); err != nil {
		a.Abort()
		return nil, err
	}
	return a.Finish()
}

func (e *Engine) release(runs []*runfile.Run) {
	if err := runfile.Release(runs); err != nil {
		e.logger.Warn("releasing runs", "err", err)
	}
}

// mergeRuns performs a multiway merge of sources, calling emit once for
// each distinct line in ascending order.  Ties between sources are broken
// by source index; the tie-break never shows since equal lines collapse.
func mergeRuns(sources []*runfile.Run, emit func(line []byte) error) (err error) {
	cursors := make([]*runfile.Cursor, 0, len(sources))
	defer func() {
		for _, c := range cursors {
			_ = c.Close()
		}
	}()

	h := make(lineHeap, 0, len(sources))
	for i, src := range sources {
		c, err := src.Open()
		if err != nil {
			return fmt.Errorf("merging: %w", err)
		}
		cursors = append(cursors, c)

		line, err := c.Next()
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			return err
		}
		h = append(h, head{line: line, src: i})
	}
	heap.Init(&h)

	var last []byte
	wrote := false
	for h.Len() > 0 {
		top := h[0]
		if !wrote || !bytes.Equal(last, top.line) {
			if err := emit(top.line); err != nil {
				return err
			}
			last = top.line
			wrote = true
		}

		next, err := cursors[top.src].Next()
		switch {
		case errors.Is(err, io.EOF):
			heap.Pop(&h)
		case err != nil:
			return err
		default:
			h[0].line = next
			heap.Fix(&h, 0)
		}
	}

	return nil
}

// commit writes output through a temporary file in the same directory and
// renames it into place, so a failed merge never leaves a partial file at
// output.
func commit(output string, fill func(w *bufio.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(output), ".sortuniq-*.tmp")
	if err != nil {
		return fmt.Errorf("creating output %q: %w", output, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	w := bufio.NewWriterSize(f, outputBufferSize)
	if err = fill(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("writing output %q: %w", output, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("syncing output %q: %w", output, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing output %q: %w", output, err)
	}
	// CreateTemp uses 0600; the result is an ordinary file
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return fmt.Errorf("os.Chmod(0644): %w", err)
	}
	if err = os.Rename(f.Name(), output); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}
	return nil
}
