// Package session owns the on-disk layout for one book: the PDF copy, the
// knowledge store file, and the summaries tree.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookdigest/internal/common"
)

// Session is the directory tree for one book title, derived from the PDF
// filename:
//
//	<root>/<title>/
//	    <title>.pdf
//	    knowledge.json
//	    summaries/<run timestamp>/interval_*.md, final_*.md
type Session struct {
	Title        string
	Dir          string
	PDFPath      string // copy inside the session dir
	StorePath    string
	SummariesDir string
	RunDir       string // per-run timestamped dir under SummariesDir

	sourcePDF string
	logger    *slog.Logger
}

// Resolve derives the session layout from the source PDF path. Nothing is
// created on disk until Prepare.
func Resolve(outputRoot, sourcePDF string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !strings.EqualFold(filepath.Ext(sourcePDF), ".pdf") {
		return nil, common.NewAppError("SESSION_INPUT",
			fmt.Sprintf("%s does not have a .pdf extension", sourcePDF),
			common.ErrInvalidInput)
	}
	if _, err := os.Stat(sourcePDF); err != nil {
		return nil, common.NewAppError("SESSION_INPUT",
			fmt.Sprintf("%s does not exist", sourcePDF), common.ErrInvalidInput)
	}

	title := strings.TrimSuffix(filepath.Base(sourcePDF), filepath.Ext(sourcePDF))
	dir := filepath.Join(outputRoot, title)
	return &Session{
		Title:        title,
		Dir:          dir,
		PDFPath:      filepath.Join(dir, title+".pdf"),
		StorePath:    filepath.Join(dir, "knowledge.json"),
		SummariesDir: filepath.Join(dir, "summaries"),
		sourcePDF:    sourcePDF,
		logger:       logger,
	}, nil
}

// Clean removes the whole session directory. The next Prepare recreates it
// from scratch.
func (s *Session) Clean() error {
	if err := os.RemoveAll(s.Dir); err != nil {
		return common.NewAppError("SESSION_CLEAN", "remove session dir", err)
	}
	s.logger.Info("session.clean.ok", "dir", s.Dir)
	return nil
}

// Prepare creates the directory tree and the per-run summaries dir, and
// copies the source PDF into the session if it is not there yet.
func (s *Session) Prepare(runStamp time.Time) error {
	s.RunDir = filepath.Join(s.SummariesDir, runStamp.Format("200601021504"))
	for _, dir := range []string{s.Dir, s.SummariesDir, s.RunDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return common.NewAppError("SESSION_MKDIR",
				fmt.Sprintf("create %s", dir), err)
		}
	}

	if _, err := os.Stat(s.PDFPath); os.IsNotExist(err) {
		if err := copyFile(s.sourcePDF, s.PDFPath); err != nil {
			return common.NewAppError("SESSION_COPY",
				fmt.Sprintf("copy %s into session", s.sourcePDF), err)
		}
		s.logger.Info("session.pdf.copied", "from", s.sourcePDF, "to", s.PDFPath)
	}
	return nil
}

// NextSummaryPath returns the path for the next interval or final summary
// file in the run dir, numbered after the existing ones (interval_001.md,
// final_001.md, ...).
func (s *Session) NextSummaryPath(final bool) (string, error) {
	kind := "interval"
	if final {
		kind = "final"
	}
	matches, err := filepath.Glob(filepath.Join(s.RunDir, kind+"_*.md"))
	if err != nil {
		return "", err
	}
	return filepath.Join(s.RunDir, fmt.Sprintf("%s_%03d.md", kind, len(matches)+1)), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
