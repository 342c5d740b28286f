// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package merge

import (
	"bytes"
)

// head is the current line of one source.
type head struct {
	line []byte
	src  int
}

// lineHeap is a min-heap of source heads ordered by (line, source index).
type lineHeap []head

func (h lineHeap) Len() int { return len(h) }
func (h lineHeap) Less(i, j int) bool {
	if c := bytes.Compare(h[i].line, h[j].line); c != 0 {
		return c < 0
	}
	return h[i].src < h[j].src
}
func (h lineHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *lineHeap) Push(x any) {
	*h = append(*h, x.(head))
}

func (h *lineHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = head{}
	*h = old[:n-1]
	return x
}
