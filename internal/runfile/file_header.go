// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package runfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	magicRunHeader    = 0x53524e31 // "SRN1"
	fileFormatVersion = 1
	fileHeaderSize    = 32

	recordCountOff = 8
	fingerprintOff = 16
)

type fileHeader struct {
	magic         uint32
	formatVersion uint32
	recordCount   uint64
	fingerprint   uint64
}

func newFileHeader() *fileHeader {
	return &fileHeader{
		magic:         magicRunHeader,
		formatVersion: fileFormatVersion,
	}
}

func (h *fileHeader) MarshalTo(buf []byte) error {
	if len(buf) < fileHeaderSize {
		return fmt.Errorf("buf too short: %d < %d", len(buf), fileHeaderSize)
	}
	binary.LittleEndian.PutUint32(buf[:4], h.magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.formatVersion)
	binary.LittleEndian.PutUint64(buf[recordCountOff:recordCountOff+8], h.recordCount)
	binary.LittleEndian.PutUint64(buf[fingerprintOff:fingerprintOff+8], h.fingerprint)
	return nil
}

func (h *fileHeader) WriteTo(w io.Writer) (n int64, err error) {
	var headerBuf [fileHeaderSize]byte
	if err = h.MarshalTo(headerBuf[:]); err != nil {
		return 0, err
	}
	if _, err = w.Write(headerBuf[:]); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	return int64(fileHeaderSize), nil
}

// UpdateTrailer records the final record count and fingerprint in place.
func (h *fileHeader) UpdateTrailer(count, fingerprint uint64, w io.WriterAt) error {
	h.recordCount = count
	h.fingerprint = fingerprint

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], h.recordCount)
	binary.LittleEndian.PutUint64(buf[8:], h.fingerprint)
	if _, err := w.WriteAt(buf[:], recordCountOff); err != nil {
		return fmt.Errorf("f.WriteAt: %w", err)
	}

	return nil
}

func (h *fileHeader) UnmarshalBytes(headerBytes []byte) error {
	if len(headerBytes) < fileHeaderSize {
		return fmt.Errorf("headerBytes too short: %d < %d", len(headerBytes), fileHeaderSize)
	}

	headerBytes = headerBytes[:fileHeaderSize]

	h.magic = binary.LittleEndian.Uint32(headerBytes[:4])
	if h.magic != magicRunHeader {
		return fmt.Errorf("bad magic number on run file (%x) -- not a run file or corrupted", h.magic)
	}

	h.formatVersion = binary.LittleEndian.Uint32(headerBytes[4:8])
	if h.formatVersion != fileFormatVersion {
		return fmt.Errorf("can only read v%d run files; found v%d", fileFormatVersion, h.formatVersion)
	}

	h.recordCount = binary.LittleEndian.Uint64(headerBytes[recordCountOff : recordCountOff+8])
	h.fingerprint = binary.LittleEndian.Uint64(headerBytes[fingerprintOff : fingerprintOff+8])

	return nil
}
