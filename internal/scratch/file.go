// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package scratch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/bpowers/sortuniq/internal/seqio"
)

// File is a scratch file owned by an Allocator.  It is written through
// Writer, closed, reopened for reading any number of times, and finally
// released, which deletes it.
type File struct {
	a    *Allocator
	name string

	mu       sync.Mutex
	f        *os.File
	released bool
}

// Name is the path of the file on disk.
func (sf *File) Name() string {
	return sf.name
}

// Writer returns the handle the file was created with, or nil once it has
// been closed.
func (sf *File) Writer() *os.File {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.f
}

// Close closes the write handle, leaving the file on disk.
func (sf *File) Close() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.closeLocked()
}

func (sf *File) closeLocked() error {
	if sf.f == nil {
		return nil
	}
	err := sf.f.Close()
	sf.f = nil
	if err != nil {
		return fmt.Errorf("closing scratch file %q: %w", sf.name, err)
	}
	return nil
}

// Open opens the file for a fresh sequential read.
func (sf *File) Open() (*os.File, error) {
	sf.mu.Lock()
	released := sf.released
	sf.mu.Unlock()
	if released {
		return nil, fmt.Errorf("scratch file %q already released", sf.name)
	}
	return seqio.Open(sf.name)
}

// Release closes and deletes the file.  Further calls are no-ops.
func (sf *File) Release() error {
	sf.mu.Lock()
	if sf.released {
		sf.mu.Unlock()
		return nil
	}
	sf.released = true
	closeErr := sf.closeLocked()
	sf.mu.Unlock()

	sf.a.untrack(sf)
	removeErr := os.Remove(sf.name)
	if removeErr != nil && errors.Is(removeErr, fs.ErrNotExist) {
		removeErr = nil
	}
	if removeErr != nil {
		removeErr = fmt.Errorf("removing scratch file %q: %w", sf.name, removeErr)
	} else {
		sf.a.logger.Debug("scratch file released", "path", sf.name)
	}
	return errors.Join(closeErr, removeErr)
}
