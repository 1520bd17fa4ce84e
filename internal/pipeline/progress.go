package pipeline

import (
	"time"

	"bookdigest/internal/store"
)

// Progress receives human-facing milestones. The structured log stream is
// for operators; this is for the person watching the terminal.
type Progress interface {
	RunStart(title string, totalPages, resumeFrom int)
	PageDone(entry store.Entry, totalPages int)
	SummaryWritten(path string)
	ReportWritten(path string)
	RunDone(pagesProcessed int, elapsed time.Duration)
}

// NopProgress discards all milestones.
type NopProgress struct{}

func (NopProgress) RunStart(string, int, int)  {}
func (NopProgress) PageDone(store.Entry, int)  {}
func (NopProgress) SummaryWritten(string)      {}
func (NopProgress) ReportWritten(string)       {}
func (NopProgress) RunDone(int, time.Duration) {}
