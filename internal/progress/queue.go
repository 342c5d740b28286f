// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package progress

import (
	"golang.org/x/text/message"
)

// Kind identifies a progress event.
type Kind int

const (
	KindFileStarted Kind = iota
	KindLines
	KindFileFinished
	KindMergeStarted
	KindMergeRound
	KindFinished
	// KindDone is the terminal event: the job completed, successfully if
	// Err is nil.
	KindDone
)

func (k Kind) String() string {
	switch k {
	case KindFileStarted:
		return "file-started"
	case KindLines:
		return "lines"
	case KindFileFinished:
		return "file-finished"
	case KindMergeStarted:
		return "merge-started"
	case KindMergeRound:
		return "merge-round"
	case KindFinished:
		return "finished"
	case KindDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is a single progress event carried by a Queue.
type Event struct {
	Kind  Kind
	Path  string
	Count uint64
	Err   error
}

// Format renders e as a log line.
func (e Event) Format(p *message.Printer) string {
	switch e.Kind {
	case KindFileStarted:
		return p.Sprintf("processing %s", e.Path)
	case KindLines:
		return p.Sprintf("lines read: %d", e.Count)
	case KindFileFinished:
		return p.Sprintf("finished %s", e.Path)
	case KindMergeStarted:
		return p.Sprintf("merging %d run(s)", e.Count)
	case KindMergeRound:
		return p.Sprintf("intermediate merge round complete, %d run(s) remain", e.Count)
	case KindFinished:
		return p.Sprintf("result saved to %s", e.Path)
	case KindDone:
		if e.Err != nil {
			return p.Sprintf("failed: %v", e.Err)
		}
		return "completed successfully"
	default:
		return e.Kind.String()
	}
}

const (
	DefaultQueueSize    = 1024
	DefaultLineInterval = 100_000
)

// Queue is a Sink that hands events from the goroutine running a job to
// one polling consumer over a bounded channel.  Line counts are coalesced
// to one event per DefaultLineInterval lines.  Producers block while the
// channel is full.
type Queue struct {
	ch           chan Event
	lineInterval uint64
}

var _ Sink = (*Queue)(nil)

// NewQueue returns a Queue buffering up to size events.
func NewQueue(size int) *Queue {
	return &Queue{
		ch:           make(chan Event, max(size, 1)),
		lineInterval: DefaultLineInterval,
	}
}

func (q *Queue) FileStarted(path string) {
	q.ch <- Event{Kind: KindFileStarted, Path: path}
}

func (q *Queue) LineObserved(total uint64) {
	if total%q.lineInterval == 0 {
		q.ch <- Event{Kind: KindLines, Count: total}
	}
}

func (q *Queue) FileFinished(path string) {
	q.ch <- Event{Kind: KindFileFinished, Path: path}
}

func (q *Queue) MergeStarted(runs int) {
	q.ch <- Event{Kind: KindMergeStarted, Count: uint64(runs)}
}

func (q *Queue) MergeRoundCompleted(remaining int) {
	q.ch <- Event{Kind: KindMergeRound, Count: uint64(remaining)}
}

func (q *Queue) Finished(output string) {
	q.ch <- Event{Kind: KindFinished, Path: output}
}

// Close sends the terminal event carrying the job's result.  No events
// may be sent afterwards, and Close must be called exactly once.
func (q *Queue) Close(err error) {
	q.ch <- Event{Kind: KindDone, Err: err}
	close(q.ch)
}

// Poll returns the events queued so far without blocking.  done reports
// whether the terminal event has been received; it is the last event
// returned.
func (q *Queue) Poll() (events []Event, done bool) {
	for {
		select {
		case ev, ok := <-q.ch:
			if !ok {
				return events, true
			}
			events = append(events, ev)
			if ev.Kind == KindDone {
				return events, true
			}
		default:
			return events, false
		}
	}
}
