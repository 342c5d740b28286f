// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build !linux

package seqio

import (
	"os"
)

func adviseSequential(*os.File) {}
