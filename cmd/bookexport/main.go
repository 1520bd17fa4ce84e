// Command bookexport writes an existing knowledge store to an XLSX
// workbook.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bookdigest/internal/export"
	"bookdigest/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	storePath := flag.String("store", "", "path to a knowledge.json store")
	outPath := flag.String("o", "", "output .xlsx path (defaults next to the store)")
	flag.Parse()

	if *storePath == "" {
		logger.Error("usage: bookexport -store <knowledge.json> [-o out.xlsx]")
		os.Exit(2)
	}
	if _, err := os.Stat(*storePath); err != nil {
		logger.Error("store not found", "path", *storePath, "error", err)
		os.Exit(2)
	}

	title := filepath.Base(filepath.Dir(*storePath))
	st, err := store.Load(*storePath, title, logger)
	if err != nil {
		logger.Error("load store", "error", err)
		os.Exit(1)
	}

	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(*storePath, filepath.Ext(*storePath)) + ".xlsx"
	}

	svc := export.NewService(logger)
	raw, err := svc.ExportXLSX(st)
	if err != nil {
		logger.Error("export", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		logger.Error("write workbook", "path", out, "error", err)
		os.Exit(1)
	}
	logger.Info("export.done", "path", out, "entries", len(st.Entries()))
}
