// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package runfile

import (
	"errors"
	"fmt"

	"github.com/bpowers/sortuniq/internal/scratch"
)

// Run is a finished run on scratch storage.  It is read once and then
// released.
type Run struct {
	file    *scratch.File
	summary Summary
}

func (r *Run) Name() string {
	return r.file.Name()
}

// Len is the number of lines in the run.
func (r *Run) Len() uint64 {
	return r.summary.Records
}

// Open returns a cursor positioned at the first line of the run.
func (r *Run) Open() (*Cursor, error) {
	f, err := r.file.Open()
	if err != nil {
		return nil, fmt.Errorf("reopening run: %w", err)
	}
	c, err := NewCursor(r.file.Name(), f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return c, nil
}

// Release deletes the run's backing file.
func (r *Run) Release() error {
	return r.file.Release()
}

// Release deletes the backing files of every run, continuing past errors.
func Release(runs []*Run) error {
	var errs []error
	for _, r := range runs {
		if r == nil {
			continue
		}
		if err := r.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Appender writes a new run into a freshly allocated scratch file.
type Appender struct {
	file *scratch.File
	w    *Writer
}

// Create allocates a scratch file and prepares it for appending.
func Create(alloc *scratch.Allocator) (*Appender, error) {
	file, err := alloc.Create()
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(file.Writer())
	if err != nil {
		_ = file.Release()
		return nil, fmt.Errorf("writing run %q: %w", file.Name(), err)
	}
	return &Appender{file: file, w: w}, nil
}

func (a *Appender) Name() string {
	return a.file.Name()
}

// Append adds line to the run; see Writer.Write.
func (a *Appender) Append(line []byte) error {
	if err := a.w.Write(line); err != nil {
		return fmt.Errorf("writing run %q: %w", a.file.Name(), err)
	}
	return nil
}

// Finish completes the run and closes its write handle.  On error the
// scratch file is released.
func (a *Appender) Finish() (*Run, error) {
	summary, err := a.w.Finish()
	if err != nil {
		_ = a.file.Release()
		return nil, fmt.Errorf("finishing run %q: %w", a.file.Name(), err)
	}
	if err := a.file.Close(); err != nil {
		_ = a.file.Release()
		return nil, err
	}
	return &Run{file: a.file, summary: summary}, nil
}

// Abort discards a run that won't be finished.
func (a *Appender) Abort() {
	_ = a.file.Release()
}

// WriteAll writes lines, which must be sorted and free of duplicates, as a
// new run.
func WriteAll(alloc *scratch.Allocator, lines [][]byte) (*Run, error) {
	a, err := Create(alloc)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := a.Append(line); err != nil {
			a.Abort()
			return nil, err
		}
	}
	return a.Finish()
}
