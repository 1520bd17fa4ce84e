// Package pipeline drives the page-by-page extraction loop: classify each
// page, extract its knowledge points, checkpoint the store, and produce
// interval summaries and the final report.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"bookdigest/internal/common"
	"bookdigest/internal/store"
)

// PageSource is what the processor needs from a PDF: a page count and
// per-page text, 1-based.
type PageSource interface {
	PageCount() int
	PageText(i int) (string, error)
}

// Processor is the run controller. It owns all writes to the store and
// runs strictly sequentially: every model call blocks the loop.
type Processor struct {
	source   PageSource
	store    *store.Store
	page     *PageStage
	summary  *SummaryStage
	report   *ReportStage
	interval int // summary every N pages; 0 disables
	progress Progress
	logger   *slog.Logger
}

func NewProcessor(
	source PageSource,
	st *store.Store,
	page *PageStage,
	summary *SummaryStage,
	report *ReportStage,
	interval int,
	progress Progress,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if progress == nil {
		progress = NopProgress{}
	}
	return &Processor{
		source:   source,
		store:    st,
		page:     page,
		summary:  summary,
		report:   report,
		interval: interval,
		progress: progress,
		logger:   logger,
	}
}

// Run processes pages from the resume point through the last page, then
// writes the final report. Any page-level error aborts with the store
// saved through the last completed page; rerunning resumes from there.
func (p *Processor) Run(ctx context.Context) error {
	start := time.Now()
	total := p.source.PageCount()
	resume := p.store.HighestPage() + 1
	if resume > total+1 {
		return common.NewAppError("RUN_STORE",
			"knowledge store has more pages than the PDF; rerun with -clean",
			common.ErrInvariant)
	}

	// Interval multiples at or below the resume point were summarized by
	// an earlier run; never summarize a page range twice.
	lastSummarized := 0
	if p.interval > 0 {
		lastSummarized = (p.store.HighestPage() / p.interval) * p.interval
	}

	p.logger.Info("run.start",
		"book", p.store.Book(),
		"pages", total,
		"resume_from", resume,
		"interval", p.interval,
	)
	p.progress.RunStart(p.store.Book(), total, resume)

	processed := 0
	for pageNum := resume; pageNum <= total; pageNum++ {
		if err := ctx.Err(); err != nil {
			return common.NewAppError("RUN_CANCELED", "run canceled", err)
		}

		text, err := p.source.PageText(pageNum)
		if err != nil {
			return err
		}
		entry, err := p.page.Run(ctx, pageNum, text)
		if err != nil {
			p.logger.Error("run.page.failed", "page", pageNum, "error", err)
			return err
		}
		processed++
		p.progress.PageDone(entry, total)

		// The final page gets the final report instead of an interval
		// summary.
		if p.interval > 0 && pageNum%p.interval == 0 && pageNum != total {
			if path := p.summary.Run(ctx, p.store, lastSummarized, pageNum); path != "" {
				p.progress.SummaryWritten(path)
			}
			lastSummarized = pageNum
		}
	}

	reportPath, err := p.report.Run(ctx, p.store, total)
	if err != nil {
		p.logger.Error("run.report.failed", "error", err)
		return err
	}
	if reportPath != "" {
		p.progress.ReportWritten(reportPath)
	}

	p.logger.Info("run.done",
		"pages_processed", processed,
		"knowledge_points", p.store.KnowledgeCount(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	p.progress.RunDone(processed, time.Since(start))
	return nil
}
