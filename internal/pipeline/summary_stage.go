package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"bookdigest/internal/llm"
	"bookdigest/internal/session"
	"bookdigest/internal/store"
)

// SummaryStageConfig tunes interval summaries.
type SummaryStageConfig struct {
	Model       string
	Temperature float64
	Language    string
}

// SummaryStage turns a window of recent knowledge entries into a prose
// stage summary on disk. Summaries are a convenience on top of the store,
// so a failure here is logged and swallowed.
type SummaryStage struct {
	completer llm.Completer
	sess      *session.Session
	cfg       SummaryStageConfig
	logger    *slog.Logger
}

func NewSummaryStage(completer llm.Completer, sess *session.Session, cfg SummaryStageConfig, logger *slog.Logger) *SummaryStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryStage{completer: completer, sess: sess, cfg: cfg, logger: logger}
}

// Run summarizes the entries covering pages (afterPage, upToPage] and
// writes a timestamped markdown file in the run dir. Returns the path of
// the written file, or "" when the window held nothing to summarize.
func (ss *SummaryStage) Run(ctx context.Context, st *store.Store, afterPage, upToPage int) string {
	var points []string
	for _, e := range st.EntriesSince(afterPage) {
		if e.Page > upToPage {
			break
		}
		points = append(points, e.Knowledge...)
	}
	if len(points) == 0 {
		ss.logger.Info("summary.skip.empty", "from_page", afterPage+1, "to_page", upToPage)
		return ""
	}

	startPage := afterPage + 1
	ss.logger.Info("summary.start", "from_page", startPage, "to_page", upToPage, "points", len(points))

	prompts := llm.SummaryPrompts(points, startPage, upToPage, ss.cfg.Language)
	text, err := ss.completer.Complete(ctx, llm.CompletionRequest{
		Model:       ss.cfg.Model,
		System:      prompts.System,
		User:        prompts.User,
		Temperature: ss.cfg.Temperature,
	})
	if err != nil {
		ss.logger.Warn("summary.failed", "from_page", startPage, "to_page", upToPage, "error", err)
		return ""
	}

	path, err := ss.sess.NextSummaryPath(false)
	if err == nil {
		err = writeSummaryFile(path, ss.sess.Title, text, startPage, upToPage)
	}
	if err != nil {
		ss.logger.Warn("summary.write_failed", "error", err)
		return ""
	}
	ss.logger.Info("summary.ok", "path", path)
	return path
}

// writeSummaryFile writes a summary or report with the standard header.
func writeSummaryFile(path, title, body string, startPage, endPage int) error {
	content := fmt.Sprintf(`# Book Analysis: %s
Generated on: %s
Pages %d-%d

%s

---
*Generated by bookdigest*
`, title, time.Now().Format("2006-01-02 15:04:05"), startPage, endPage, body)
	return os.WriteFile(path, []byte(content), 0o644)
}
