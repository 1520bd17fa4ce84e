package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"bookdigest/internal/llm"
	"bookdigest/internal/store"
)

// Per-page states. A page always ends in Skipped or Extracted; both append
// an entry, so the store's page sequence stays contiguous.
type pageState string

const (
	statePending     pageState = "PENDING"
	stateClassifying pageState = "CLASSIFYING"
	stateSkipped     pageState = "SKIPPED"
	stateExtracting  pageState = "EXTRACTING"
	stateExtracted   pageState = "EXTRACTED"
)

// PageStageConfig tunes the per-page processing.
type PageStageConfig struct {
	Model          string
	Temperature    float64
	Language       string
	ContextEntries int // previous entries whose points seed the extraction prompt
	MaxPageChars   int // page text above this is truncated with a marker
}

// PageStage classifies one page and, when it carries content, extracts its
// knowledge points into the store. One store save per page: each page costs
// an LLM round-trip anyway, so durability wins over write batching.
type PageStage struct {
	completer llm.Completer
	store     *store.Store
	cfg       PageStageConfig
	logger    *slog.Logger
}

func NewPageStage(completer llm.Completer, st *store.Store, cfg PageStageConfig, logger *slog.Logger) *PageStage {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPageChars <= 0 {
		cfg.MaxPageChars = 20000
	}
	return &PageStage{completer: completer, store: st, cfg: cfg, logger: logger}
}

// Run processes page pageNum with the given raw text and appends exactly
// one entry to the store.
func (ps *PageStage) Run(ctx context.Context, pageNum int, pageText string) (store.Entry, error) {
	start := time.Now()
	state := statePending

	text := strings.TrimSpace(pageText)
	if truncated := truncate(text, ps.cfg.MaxPageChars); truncated != text {
		ps.logger.Warn("page.truncated",
			"page", pageNum, "original_len", len(text), "max", ps.cfg.MaxPageChars)
		text = truncated
	}

	// A blank page needs no model round-trip to be judged skip-worthy.
	relevant := false
	if text != "" {
		ps.transition(pageNum, &state, stateClassifying)
		var err error
		relevant, err = ps.classify(ctx, pageNum, text)
		if err != nil {
			return store.Entry{}, err
		}
	}

	entry := store.Entry{Page: pageNum, Relevant: relevant, Knowledge: []string{}}
	if relevant {
		ps.transition(pageNum, &state, stateExtracting)
		points, err := ps.extract(ctx, pageNum, text)
		if err != nil {
			return store.Entry{}, err
		}
		entry.Knowledge = points
		ps.transition(pageNum, &state, stateExtracted)
	} else {
		ps.transition(pageNum, &state, stateSkipped)
	}

	if err := ps.store.Append(entry); err != nil {
		return store.Entry{}, err
	}
	if err := ps.store.Save(); err != nil {
		return store.Entry{}, err
	}

	ps.logger.Info("page.done",
		"page", pageNum,
		"state", string(state),
		"points", len(entry.Knowledge),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entry, nil
}

// classify asks the model whether the page is substantive content. An
// unparseable answer counts as content: failing open costs one redundant
// extraction, failing closed loses a page. A failed call, by contrast,
// aborts the page so the run can stop with the store intact.
func (ps *PageStage) classify(ctx context.Context, pageNum int, text string) (bool, error) {
	prompts := llm.ClassificationPrompts(text)
	resp, err := ps.completer.Complete(ctx, llm.CompletionRequest{
		Model:       ps.cfg.Model,
		System:      prompts.System,
		User:        prompts.User,
		Temperature: ps.cfg.Temperature,
	})
	if err != nil {
		return false, err
	}

	relevant := llm.ParseClassification(resp)
	ps.logger.Debug("page.classify.done", "page", pageNum, "relevant", relevant)
	return relevant, nil
}

func (ps *PageStage) extract(ctx context.Context, pageNum int, text string) ([]string, error) {
	var contextPoints []string
	for _, e := range ps.store.LastEntries(ps.cfg.ContextEntries) {
		contextPoints = append(contextPoints, e.Knowledge...)
	}

	prompts := llm.ExtractionPrompts(text, contextPoints, ps.cfg.Language)
	resp, err := ps.completer.Complete(ctx, llm.CompletionRequest{
		Model:       ps.cfg.Model,
		System:      prompts.System,
		User:        prompts.User,
		Temperature: ps.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	points, mode := llm.ParseKnowledge(resp)
	if mode != llm.ParseModeJSON {
		ps.logger.Warn("page.extract.lenient_parse",
			"page", pageNum, "mode", string(mode), "points", len(points))
	}
	return points, nil
}

func (ps *PageStage) transition(pageNum int, state *pageState, next pageState) {
	ps.logger.Debug("page.state", "page", pageNum, "from", string(*state), "to", string(next))
	*state = next
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n[truncated]"
}
