// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package progress

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultPollInterval = 100 * time.Millisecond

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithPollInterval sets how often the queue is drained.
func WithPollInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithHistorySize sets how many log lines are retained.
func WithHistorySize(n int) MonitorOption {
	return func(m *Monitor) {
		m.history = NewHistory(n)
	}
}

// Monitor is the presentation side of a Queue: it polls on a timer, logs
// each event and keeps a bounded history of what it logged.
type Monitor struct {
	q        *Queue
	logger   *slog.Logger
	printer  *message.Printer
	history  *History
	interval time.Duration
}

func NewMonitor(q *Queue, logger *slog.Logger, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		q:        q,
		logger:   logger,
		printer:  message.NewPrinter(language.English),
		history:  NewHistory(DefaultHistory),
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run polls until the terminal event arrives and returns the job's error.
// It returns ctx.Err() if ctx is done first.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		events, done := m.q.Poll()
		for _, ev := range events {
			line := ev.Format(m.printer)
			m.history.Append(line)
			if ev.Kind == KindDone {
				if ev.Err != nil {
					m.logger.Error(line)
				}
				return ev.Err
			}
			m.logger.Info(line)
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// History returns the most recent log lines, oldest first.
func (m *Monitor) History() []string {
	return m.history.Lines()
}
