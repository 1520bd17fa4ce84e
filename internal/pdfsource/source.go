// Package pdfsource exposes a PDF as a page count plus per-page plain text.
package pdfsource

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ledongthuc/pdf"

	"bookdigest/internal/common"
)

// Source reads page text from a single PDF file.
type Source struct {
	file   *os.File
	reader *pdf.Reader
	logger *slog.Logger
}

// Open validates and opens the PDF at path. A file that the parser rejects
// surfaces ErrExtraction.
func Open(path string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, common.NewAppError("PDF_OPEN",
			fmt.Sprintf("open %s: %v", path, err), common.ErrExtraction)
	}
	logger.Info("pdf.open.ok", "path", path, "pages", r.NumPage())
	return &Source{file: f, reader: r, logger: logger}, nil
}

// PageCount returns the number of pages in the document.
func (s *Source) PageCount() int {
	return s.reader.NumPage()
}

// PageText returns the plain text of page i (1-based). A page that cannot
// be decoded surfaces ErrExtraction; there is no partial-page recovery.
// A page with no text layer (e.g. a scanned image) returns "".
func (s *Source) PageText(i int) (string, error) {
	if i < 1 || i > s.reader.NumPage() {
		return "", common.NewAppError("PDF_PAGE",
			fmt.Sprintf("page %d out of range 1..%d", i, s.reader.NumPage()),
			common.ErrExtraction)
	}
	page := s.reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", common.NewAppError("PDF_DECODE",
			fmt.Sprintf("decode page %d: %v", i, err), common.ErrExtraction)
	}
	return text, nil
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	return s.file.Close()
}
