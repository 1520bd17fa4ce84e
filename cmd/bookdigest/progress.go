package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"bookdigest/internal/store"
)

// consoleProgress prints human-facing milestones to stdout in color. The
// structured log stream stays on stderr.
type consoleProgress struct{}

func (consoleProgress) RunStart(title string, totalPages, resumeFrom int) {
	fmt.Println("==================================================")
	color.Magenta("Analyzing: %s", title)
	color.Cyan("Total pages: %d", totalPages)
	if resumeFrom > 1 {
		color.Cyan("Resuming from page %d", resumeFrom)
	}
	fmt.Println("==================================================")
}

func (consoleProgress) PageDone(e store.Entry, totalPages int) {
	if e.Relevant {
		color.Green("page %d/%d: %d knowledge points", e.Page, totalPages, len(e.Knowledge))
	} else {
		color.Yellow("page %d/%d: skipped", e.Page, totalPages)
	}
}

func (consoleProgress) SummaryWritten(path string) {
	color.Cyan("interval summary: %s", path)
}

func (consoleProgress) ReportWritten(path string) {
	color.Cyan("final report: %s", path)
}

func (consoleProgress) RunDone(pagesProcessed int, elapsed time.Duration) {
	color.Green("done: %d pages in %s", pagesProcessed, elapsed.Round(time.Second))
}
