// Package export turns a rekap row set into an xlsx workbook on disk and,
// when configured, mirrors the same rows into a Google Sheet.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hnafiah/rekapbot/internal/repository/sheets"
	"github.com/hnafiah/rekapbot/internal/service/reporting"
)

const (
	sheetName   = "Rekap"
	mirrorRange = "Rekap!A:H"
)

// Service writes export workbooks. mirror may be nil when no spreadsheet is
// configured.
type Service struct {
	dir    string
	mirror sheets.Repository
	logger *zap.Logger
}

// NewService wires an export service writing into dir.
func NewService(dir string, mirror sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dir: dir, mirror: mirror, logger: logger}
}

// WriteRekap renders the rows into exports/Rekap-<period>.xlsx and returns
// the file path. Two concurrent exports for the same period race on the
// path; the loser's write error surfaces rather than corrupting silently.
func (s *Service) WriteRekap(ctx context.Context, rows [][]interface{}, period string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %s: %w", s.dir, err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(reporting.Columns))
	for i, col := range reporting.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("row coordinate: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	path := filepath.Join(s.dir, fmt.Sprintf("Rekap-%s.xlsx", period))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}

	s.logger.Info("export written", zap.String("path", path), zap.Int("rows", len(rows)))
	s.mirrorRows(ctx, rows)

	return path, nil
}

// mirrorRows appends the export rows to the configured spreadsheet. Mirror
// trouble never fails the export itself.
func (s *Service) mirrorRows(ctx context.Context, rows [][]interface{}) {
	if s.mirror == nil {
		return
	}

	for _, row := range rows {
		if err := s.mirror.WriteRow(ctx, mirrorRange, row); err != nil {
			s.logger.Warn("sheet mirror append failed", zap.Error(err))
			return
		}
	}
	s.logger.Debug("export mirrored to spreadsheet", zap.Int("rows", len(rows)))
}
