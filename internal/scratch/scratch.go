// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package scratch hands out uniquely named temporary files for sorted runs.
//
// Files are created in a primary directory (an explicit override, or the
// directory holding the final output).  When no override was given, the
// system temporary directory serves as a fallback if the primary can't be
// used.  Every file is removed when it is released, and Close on the
// Allocator removes anything still outstanding.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrExhausted is returned when no scratch file could be created in any
	// candidate directory.
	ErrExhausted = errors.New("no usable scratch space")
)

const remediation = "use --temp-dir to point at a writable directory with free space"

// Option configures an Allocator.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	fallback    string
	fallbackSet bool
}

// WithLogger sets an optional logger for scratch file lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithFallbackDir replaces the system temporary directory as the fallback
// location.  An empty dir disables the fallback.
func WithFallbackDir(dir string) Option {
	return func(opts *options) {
		opts.fallback = dir
		opts.fallbackSet = true
	}
}

// Allocator creates scratch files and tracks the ones not yet released.
type Allocator struct {
	primary  string
	fallback string
	pattern  string
	logger   *slog.Logger

	mu   sync.Mutex
	live map[*File]struct{}
}

// New returns an Allocator rooted at preferred, or at the directory
// containing output when preferred is empty.
func New(preferred, output string, opts ...Option) (*Allocator, error) {
	var options options
	options.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, opt := range opts {
		opt(&options)
	}

	explicit := preferred != ""
	primary := preferred
	if !explicit {
		primary = filepath.Dir(output)
	}

	if err := os.MkdirAll(primary, 0o755); err != nil {
		if explicit {
			return nil, fmt.Errorf("creating scratch directory %q: %w", primary, err)
		}
		options.logger.Warn("scratch directory unavailable", "dir", primary, "err", err)
	}

	var fallback string
	if !explicit {
		candidate := os.TempDir()
		if options.fallbackSet {
			candidate = options.fallback
		}
		if candidate != "" && !sameDir(candidate, primary) {
			fallback = candidate
			// best-effort: a failure shows up when a file is created there
			_ = os.MkdirAll(fallback, 0o755)
		}
	}

	session, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("uuid.NewV7: %w", err)
	}

	return &Allocator{
		primary:  primary,
		fallback: fallback,
		pattern:  "sortuniq-" + session.String() + "-*.run",
		logger:   options.logger,
		live:     make(map[*File]struct{}),
	}, nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// Primary is the directory scratch files are created in first.
func (a *Allocator) Primary() string {
	return a.primary
}

// Fallback is the directory used when the primary fails, or "" if there
// is none.
func (a *Allocator) Fallback() string {
	return a.fallback
}

// Create makes a new, empty scratch file open for writing.
func (a *Allocator) Create() (*File, error) {
	f, primaryErr := os.CreateTemp(a.primary, a.pattern)
	if primaryErr == nil {
		return a.track(f), nil
	}

	if a.fallback == "" {
		return nil, fmt.Errorf("%w: could not create scratch file in %q: %v; %s",
			ErrExhausted, a.primary, primaryErr, remediation)
	}

	f, fallbackErr := os.CreateTemp(a.fallback, a.pattern)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w: could not create scratch file in %q (%v) nor in %q (%v); %s",
			ErrExhausted, a.primary, primaryErr, a.fallback, fallbackErr, remediation)
	}
	a.logger.Warn("using fallback scratch directory", "primary", a.primary, "fallback", a.fallback, "err", primaryErr)
	return a.track(f), nil
}

func (a *Allocator) track(f *os.File) *File {
	sf := &File{a: a, f: f, name: f.Name()}
	a.mu.Lock()
	a.live[sf] = struct{}{}
	a.mu.Unlock()
	a.logger.Debug("scratch file created", "path", sf.name)
	return sf
}

func (a *Allocator) untrack(sf *File) {
	a.mu.Lock()
	delete(a.live, sf)
	a.mu.Unlock()
}

// Live reports how many scratch files have been created and not released.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Close releases every outstanding scratch file.  It is safe to call more
// than once, and the Allocator may still be used afterwards.
func (a *Allocator) Close() error {
	a.mu.Lock()
	outstanding := make([]*File, 0, len(a.live))
	for sf := range a.live {
		outstanding = append(outstanding, sf)
	}
	a.mu.Unlock()

	var errs []error
	for _, sf := range outstanding {
		if err := sf.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
