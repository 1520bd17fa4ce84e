// Package export renders a knowledge store as an XLSX workbook, one row
// per knowledge point.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"bookdigest/internal/store"
)

// Service produces XLSX bytes from a loaded knowledge store.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportXLSX returns a workbook with one row per knowledge point. Skipped
// pages keep a single row with an empty point so the page sequence stays
// visible in the sheet.
func (s *Service) ExportXLSX(st *store.Store) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Knowledge"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet excelize creates alongside ours.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{"Page", "Relevant", "#", "Knowledge Point"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, e := range st.Entries() {
		if len(e.Knowledge) == 0 {
			if err := writeRow(f, sheet, row, e.Page, e.Relevant, 0, ""); err != nil {
				return nil, err
			}
			row++
			continue
		}
		for i, point := range e.Knowledge {
			if err := writeRow(f, sheet, row, e.Page, e.Relevant, i+1, point); err != nil {
				return nil, err
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"book", st.Book(),
		"entries", len(st.Entries()),
		"rows", row-2,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row, page int, relevant bool, n int, point string) error {
	values := []any{page, relevant, n, point}
	if point == "" {
		values[2] = ""
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
