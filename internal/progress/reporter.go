// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package progress

import (
	"log/slog"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	reportEveryLines = 100_000
	reportEvery      = 2 * time.Second
)

// Reporter logs progress for a person watching a terminal: one record per
// file started and finished, a running line count every 100,000 lines or
// two seconds, and a summary at the end.
type Reporter struct {
	logger  *slog.Logger
	printer *message.Printer
	now     func() time.Time

	totalFiles     int
	processedFiles int
	totalLines     uint64
	sinceTick      uint64
	lastEmit       time.Time
	current        string
}

var _ Sink = (*Reporter)(nil)

// NewReporter returns a Reporter for a job over totalFiles input files.
func NewReporter(logger *slog.Logger, totalFiles int) *Reporter {
	return &Reporter{
		logger:     logger,
		printer:    message.NewPrinter(language.English),
		now:        time.Now,
		totalFiles: max(totalFiles, 1),
		lastEmit:   time.Now(),
	}
}

func (r *Reporter) resetTick() {
	r.sinceTick = 0
	r.lastEmit = r.now()
}

func (r *Reporter) currentFile() string {
	if r.current == "" {
		return "unknown file"
	}
	return r.current
}

func (r *Reporter) FileStarted(path string) {
	r.current = path
	r.logger.Info(r.printer.Sprintf("[%d/%d] processing %s", r.processedFiles+1, r.totalFiles, path))
	r.resetTick()
}

func (r *Reporter) LineObserved(total uint64) {
	r.totalLines = total
	r.sinceTick++
	if r.sinceTick >= reportEveryLines || r.now().Sub(r.lastEmit) >= reportEvery {
		r.logger.Info(r.printer.Sprintf("[%d/%d] %s: %d lines read", r.processedFiles+1, r.totalFiles, r.currentFile(), r.totalLines))
		r.resetTick()
	}
}

func (r *Reporter) FileFinished(path string) {
	r.processedFiles++
	r.logger.Info(r.printer.Sprintf("[%d/%d] finished %s", r.processedFiles, r.totalFiles, path))
	r.resetTick()
	r.current = ""
}

func (r *Reporter) MergeStarted(runs int) {
	r.logger.Info(r.printer.Sprintf("merging %d run(s)", runs))
	r.resetTick()
}

func (r *Reporter) MergeRoundCompleted(remaining int) {
	r.logger.Info(r.printer.Sprintf("intermediate merge round complete, %d run(s) remain", remaining))
	r.resetTick()
}

func (r *Reporter) Finished(output string) {
	r.logger.Info(r.printer.Sprintf("done: %d file(s) processed, %d lines read, result saved to %s",
		r.processedFiles, r.totalLines, output))
}
