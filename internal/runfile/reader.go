// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package runfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dgryski/go-farm"
)

const (
	readerBufferSize = 256 * 1024
	maxLineLen       = 1 << 32
)

var (
	// ErrCorrupt is returned when a run fails verification.
	ErrCorrupt = errors.New("run file corrupted")
)

// Cursor reads the records of a run front to back, verifying each one.
type Cursor struct {
	name        string
	c           io.Closer
	r           *bufio.Reader
	h           fileHeader
	count       uint64
	fingerprint uint64
	done        bool
}

// NewCursor reads the run header from rc.  name is only used in errors.
func NewCursor(name string, rc io.ReadCloser) (*Cursor, error) {
	r := bufio.NewReaderSize(rc, readerBufferSize)

	headerBytes := make([]byte, fileHeaderSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("run %q: reading header: %w (%w)", name, ErrCorrupt, err)
	}

	var header fileHeader
	if err := header.UnmarshalBytes(headerBytes); err != nil {
		return nil, fmt.Errorf("run %q: %w: %v", name, ErrCorrupt, err)
	}

	return &Cursor{
		name: name,
		c:    rc,
		r:    r,
		h:    header,
	}, nil
}

// Len is the number of records the run holds.
func (c *Cursor) Len() uint64 {
	return c.h.recordCount
}

func (c *Cursor) corrupt(format string, args ...any) error {
	return fmt.Errorf("run %q: record %d: %w: %s", c.name, c.count, ErrCorrupt, fmt.Sprintf(format, args...))
}

// Next returns the next line, or io.EOF after the last one.  The returned
// slice is owned by the caller.
func (c *Cursor) Next() ([]byte, error) {
	if c.done {
		return nil, io.EOF
	}

	var header [recordHeaderSize]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, c.finish()
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, c.corrupt("truncated record header")
		}
		return nil, fmt.Errorf("reading run %q: %w", c.name, err)
	}
	expectedChecksum := binary.LittleEndian.Uint32(header[:])

	lineLen, err := binary.ReadUvarint(c.r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, c.corrupt("truncated record length")
		}
		return nil, c.corrupt("bad record length: %v", err)
	}
	if lineLen > maxLineLen {
		return nil, c.corrupt("record length %d too large", lineLen)
	}

	line := make([]byte, lineLen)
	if _, err := io.ReadFull(c.r, line); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, c.corrupt("truncated record")
		}
		return nil, fmt.Errorf("reading run %q: %w", c.name, err)
	}

	if checksum := uint32(farm.Hash64(line)); checksum != expectedChecksum {
		return nil, c.corrupt("checksum failed (%d != %d)", expectedChecksum, checksum)
	}

	c.fingerprint = farm.Hash64WithSeed(line, c.fingerprint)
	c.count++
	return line, nil
}

func (c *Cursor) finish() error {
	c.done = true
	if c.count != c.h.recordCount {
		return c.corrupt("found %d records, header says %d", c.count, c.h.recordCount)
	}
	if c.fingerprint != c.h.fingerprint {
		return c.corrupt("fingerprint mismatch")
	}
	return io.EOF
}

// Close releases the underlying file handle.
func (c *Cursor) Close() error {
	if c.c == nil {
		return nil
	}
	err := c.c.Close()
	c.c = nil
	return err
}
