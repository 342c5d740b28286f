// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package runfile reads and writes sorted runs: the intermediate files an
// external sort spills to scratch storage.
//
// Lines are stored length-prefixed rather than newline-terminated, so a
// line survives a trip through a run byte-for-byte (including lines whose
// content ends in '\r').  A run file looks like:
//
//	┌───────────────────┐
//	│ file header       │
//	├───────────────────┤
//	│ repeated records  │
//	│                   │
//	│                   │
//	└───────────────────┘
//
// The 32-byte header holds a magic number, the format version, the number
// of records and a fingerprint chained over every record.  The last two
// are filled in when the writer finishes.  Each record is:
//
//	 0    1    2    3    4 ...
//	+----+----+----+----+----------+----------+
//	| line checksum     | uvarint  | line...  |
//	|                   | length   |          |
//	+----+----+----+----+----------+----------+
//
// The checksum and fingerprint are used to ensure we don't consume
// un-detected on-disk corruption (with high probability).
package runfile
