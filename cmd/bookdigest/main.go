package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"bookdigest/internal/common"
	"bookdigest/internal/llm/openai"
	"bookdigest/internal/pdfsource"
	"bookdigest/internal/pipeline"
	"bookdigest/internal/session"
	"bookdigest/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	flag.StringVar(&cfg.Run.PDFPath, "pdf", cfg.Run.PDFPath, "path to the PDF file to analyze")
	flag.IntVar(&cfg.Run.SummaryInterval, "interval", cfg.Run.SummaryInterval, "generate a summary every N pages (0 disables)")
	flag.BoolVar(&cfg.Run.Clean, "clean", false, "delete the book session and start fresh")
	flag.StringVar(&cfg.LLM.Provider, "provider", cfg.LLM.Provider, "API provider: ollama, openai, or openrouter")
	flag.StringVar(&cfg.LLM.Model, "model", cfg.LLM.Model, "model for page processing")
	flag.StringVar(&cfg.LLM.AnalysisModel, "analysis-model", cfg.LLM.AnalysisModel, "model for summaries and the final report (defaults to -model)")
	flag.StringVar(&cfg.Run.Language, "lang", cfg.Run.Language, "output language for knowledge points and summaries")
	flag.IntVar(&cfg.Run.ContextEntries, "context", cfg.Run.ContextEntries, "previous entries included as context in extraction prompts")
	flag.StringVar(&cfg.Session.OutputRoot, "out", cfg.Session.OutputRoot, "output root directory")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		color.Red("%v", err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run.fatal", "error", err)
		color.Red("%v", err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	sess, err := session.Resolve(cfg.Session.OutputRoot, cfg.Run.PDFPath, logger)
	if err != nil {
		return err
	}
	if cfg.Run.Clean {
		if err := sess.Clean(); err != nil {
			return err
		}
	}
	if err := sess.Prepare(time.Now()); err != nil {
		return err
	}

	// Fails fast on missing credentials, before any page is touched.
	completer, err := openai.NewClient(openai.Config{
		Provider:    cfg.LLM.Provider,
		Timeout:     cfg.LLM.Timeout,
		MaxAttempts: cfg.LLM.MaxAttempts,
		RetryDelay:  cfg.LLM.RetryDelay,
	}, logger)
	if err != nil {
		return err
	}

	source, err := pdfsource.Open(sess.PDFPath, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	st, err := store.Load(sess.StorePath, sess.Title, logger)
	if err != nil {
		return err
	}

	pageStage := pipeline.NewPageStage(completer, st, pipeline.PageStageConfig{
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		Language:       cfg.Run.Language,
		ContextEntries: cfg.Run.ContextEntries,
		MaxPageChars:   cfg.Run.MaxPageChars,
	}, logger)
	summaryStage := pipeline.NewSummaryStage(completer, sess, pipeline.SummaryStageConfig{
		Model:       cfg.LLM.AnalysisModel,
		Temperature: cfg.LLM.Temperature,
		Language:    cfg.Run.Language,
	}, logger)
	reportStage := pipeline.NewReportStage(completer, sess, pipeline.ReportStageConfig{
		Model:       cfg.LLM.AnalysisModel,
		Temperature: cfg.LLM.Temperature,
		Language:    cfg.Run.Language,
	}, logger)

	processor := pipeline.NewProcessor(
		source, st, pageStage, summaryStage, reportStage,
		cfg.Run.SummaryInterval, consoleProgress{}, logger,
	)
	return processor.Run(ctx)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return 2
	case errors.Is(err, common.ErrAuth):
		return 3
	case errors.Is(err, common.ErrExtraction):
		return 4
	case errors.Is(err, common.ErrInvariant):
		return 5
	default:
		return 1
	}
}

func logLevel() slog.Level {
	if os.Getenv("BOOKDIGEST_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
