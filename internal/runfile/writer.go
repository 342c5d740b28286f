// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package runfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/dgryski/go-farm"
)

const (
	writerBufferSize = 1024 * 1024
	recordHeaderSize = 4 // 32-bit checksum of the line
)

var (
	errFinished = errors.New("write after Finish")
)

type nopWriter struct{}

func (nopWriter) Write([]byte) (int, error) {
	return 0, io.EOF
}

// FileWriter is usually an *os.File, but specified as an interface for easier testing.
type FileWriter interface {
	io.Writer
	io.WriterAt
}

// Summary describes a finished run.
type Summary struct {
	Records     uint64
	Fingerprint uint64
}

// Writer appends lines to a run.  Lines must arrive in strictly ascending
// byte order.
type Writer struct {
	f           FileWriter
	h           *fileHeader
	w           *bufio.Writer
	count       uint64
	fingerprint uint64
	prev        []byte
	finished    atomic.Bool
}

func NewWriter(f FileWriter) (*Writer, error) {
	w := &Writer{
		f: f,
		h: newFileHeader(),
		w: bufio.NewWriterSize(f, writerBufferSize),
	}

	if _, err := w.h.WriteTo(w.w); err != nil {
		return nil, fmt.Errorf("fileHeader.WriteTo: %w", err)
	}

	// try to expose errors when writing to the backing file early
	if err := w.w.Flush(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	return w, nil
}

// Write appends line.  The Writer holds on to line until the next call, so
// callers must not modify it in the meantime.
func (w *Writer) Write(line []byte) error {
	if w.finished.Load() {
		return errFinished
	}
	if w.count > 0 && bytes.Compare(w.prev, line) >= 0 {
		return fmt.Errorf("invariant broken: record %d is not greater than its predecessor", w.count)
	}

	var header [recordHeaderSize + binary.MaxVarintLen64]byte
	binary.LittleEndian.PutUint32(header[:recordHeaderSize], uint32(farm.Hash64(line)))
	n := binary.PutUvarint(header[recordHeaderSize:], uint64(len(line)))

	if _, err := w.w.Write(header[:recordHeaderSize+n]); err != nil {
		return fmt.Errorf("bufio.Write 1: %w", err)
	}
	if _, err := w.w.Write(line); err != nil {
		return fmt.Errorf("bufio.Write 2: %w", err)
	}

	w.fingerprint = farm.Hash64WithSeed(line, w.fingerprint)
	w.count++
	w.prev = line

	return nil
}

// Count is the number of records written so far.
func (w *Writer) Count() uint64 {
	return w.count
}

// Finish flushes buffered records and fills in the header.  Calling it
// again returns the same summary.
func (w *Writer) Finish() (Summary, error) {
	summary := Summary{Records: w.count, Fingerprint: w.fingerprint}
	if alreadyFinished := w.finished.Swap(true); alreadyFinished {
		// nothing to do - already cleaned up
		return summary, nil
	}

	defer func() {
		w.w.Reset(&nopWriter{})
		w.prev = nil
	}()

	if err := w.w.Flush(); err != nil {
		return Summary{}, fmt.Errorf("bufio.Flush: %w", err)
	}

	if err := w.h.UpdateTrailer(w.count, w.fingerprint, w.f); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
