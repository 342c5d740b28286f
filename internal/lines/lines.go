// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package lines frames a byte stream into individual lines.
//
// A line ends at '\n'.  A '\r' immediately before the '\n' is part of the
// terminator, as is a lone '\r' at the very end of the stream.  A final
// fragment with no terminator is still a line, and an empty stream has no
// lines at all.
package lines

import (
	"bufio"
	"errors"
	"io"
)

const defaultBufferSize = 1024 * 1024

// Reader yields the lines of an underlying stream one at a time.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, defaultBufferSize)}
}

// Next returns the next line with its terminator removed.  The returned
// slice is freshly allocated and owned by the caller.  io.EOF is returned
// once the stream is exhausted.
func (lr *Reader) Next() ([]byte, error) {
	line, err := lr.r.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(line) == 0 {
		return nil, io.EOF
	}
	return TrimTerminator(line), nil
}

// TrimTerminator strips a trailing "\n" or "\r\n", or a lone trailing '\r'.
func TrimTerminator(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	} else if n > 0 && line[n-1] == '\r' {
		n--
	}
	return line[:n]
}
