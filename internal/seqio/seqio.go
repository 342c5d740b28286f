// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package seqio opens files that will be read once, front to back.
package seqio

import (
	"os"
)

// Open opens path for reading and hints to the kernel that it will be
// read sequentially.  The hint is best-effort.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	adviseSequential(f)
	return f, nil
}
