// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package progress defines the events a sort emits while it runs, and a
// few ways of presenting them.
package progress

// Sink receives progress events.  Implementations should be cheap: they
// are called synchronously from the sort, LineObserved once per input line.
type Sink interface {
	FileStarted(path string)
	// LineObserved reports the running total of lines read across all inputs.
	LineObserved(total uint64)
	FileFinished(path string)
	MergeStarted(runs int)
	MergeRoundCompleted(remaining int)
	Finished(output string)
}

// Nop ignores every event.  Embed it to implement only some of Sink.
type Nop struct{}

func (Nop) FileStarted(string)      {}
func (Nop) LineObserved(uint64)     {}
func (Nop) FileFinished(string)     {}
func (Nop) MergeStarted(int)        {}
func (Nop) MergeRoundCompleted(int) {}
func (Nop) Finished(string)         {}

var _ Sink = Nop{}
