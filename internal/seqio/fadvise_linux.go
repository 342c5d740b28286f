// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build linux

package seqio

import (
	"os"

	"golang.org/x/sys/unix"
)

func adviseSequential(f *os.File) {
	// best-effort: errors are ignored
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
