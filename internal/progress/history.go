// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package progress

// DefaultHistory is how many log lines a Monitor keeps.
const DefaultHistory = 500

// History keeps the most recent log lines, discarding the oldest once it
// is full.
type History struct {
	lines []string
	start int
	size  int
}

func NewHistory(capacity int) *History {
	return &History{lines: make([]string, max(capacity, 1))}
}

func (h *History) Append(line string) {
	if h.size < len(h.lines) {
		h.lines[(h.start+h.size)%len(h.lines)] = line
		h.size++
		return
	}
	h.lines[h.start] = line
	h.start = (h.start + 1) % len(h.lines)
}

func (h *History) Len() int {
	return h.size
}

// Lines returns the retained lines, oldest first.
func (h *History) Lines() []string {
	out := make([]string, 0, h.size)
	for i := 0; i < h.size; i++ {
		out = append(out, h.lines[(h.start+i)%len(h.lines)])
	}
	return out
}

func (h *History) Clear() {
	clear(h.lines)
	h.start = 0
	h.size = 0
}
