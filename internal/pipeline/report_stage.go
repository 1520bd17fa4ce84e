package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"bookdigest/internal/common"
	"bookdigest/internal/llm"
	"bookdigest/internal/session"
	"bookdigest/internal/store"
)

// ReportStageConfig tunes the final report.
type ReportStageConfig struct {
	Model       string
	Temperature float64
	Language    string
	// ChunkChars caps the knowledge text per prompt. Above it the
	// knowledge is split on point boundaries and the partial reports are
	// concatenated.
	ChunkChars int
}

// ReportStage produces the comprehensive final report from the whole
// knowledge store. A failure here is returned to the caller: the run does
// not succeed without its report, but the store stays valid either way.
type ReportStage struct {
	completer llm.Completer
	sess      *session.Session
	cfg       ReportStageConfig
	logger    *slog.Logger
}

func NewReportStage(completer llm.Completer, sess *session.Session, cfg ReportStageConfig, logger *slog.Logger) *ReportStage {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ChunkChars <= 0 {
		cfg.ChunkChars = 60000
	}
	return &ReportStage{completer: completer, sess: sess, cfg: cfg, logger: logger}
}

// Run writes the final report covering pages 1..lastPage. A store with no
// knowledge points produces no report and no error.
func (rs *ReportStage) Run(ctx context.Context, st *store.Store, lastPage int) (string, error) {
	var points []string
	for _, e := range st.Entries() {
		points = append(points, e.Knowledge...)
	}
	if len(points) == 0 {
		rs.logger.Info("report.skip.empty")
		return "", nil
	}

	chunks := chunkPoints(points, rs.cfg.ChunkChars)
	rs.logger.Info("report.start", "points", len(points), "chunks", len(chunks))

	var parts []string
	for i, chunk := range chunks {
		prompts := llm.ReportPrompts(chunk, rs.cfg.Language)
		text, err := rs.completer.Complete(ctx, llm.CompletionRequest{
			Model:       rs.cfg.Model,
			System:      prompts.System,
			User:        prompts.User,
			Temperature: rs.cfg.Temperature,
		})
		if err != nil {
			return "", common.WrapError(err, "final report")
		}
		rs.logger.Info("report.chunk.ok", "chunk", i+1, "of", len(chunks))
		parts = append(parts, text)
	}
	body := strings.Join(parts, "\n\n---\n\n")

	path, err := rs.sess.NextSummaryPath(true)
	if err != nil {
		return "", common.WrapError(err, "final report path")
	}
	if err := writeSummaryFile(path, rs.sess.Title, body, 1, lastPage); err != nil {
		return "", common.WrapError(err, "write final report")
	}
	rs.logger.Info("report.ok", "path", path)
	return path, nil
}

// chunkPoints packs knowledge points into newline-joined chunks of at most
// maxChars each, never splitting a point. A single oversized point gets a
// chunk of its own.
func chunkPoints(points []string, maxChars int) []string {
	var chunks []string
	var b strings.Builder
	for _, p := range points {
		if b.Len() > 0 && b.Len()+len(p)+1 > maxChars {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}
