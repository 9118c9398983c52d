// Package reporting filters the record collection by date windows and
// renders rekap digests and export row sets.
package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hnafiah/rekapbot/internal/domain/models"
	"github.com/hnafiah/rekapbot/internal/repository/records"
)

const dateLayout = "2006-01-02"

// Columns is the export sheet header, in the exact order Rows emits values.
var Columns = []string{"ID", "Tanggal", "Line", "Produk", "Mulai", "Selesai", "Qty", "Operator"}

// FilterByDate keeps records stamped with exactly the given YYYY-MM-DD date,
// preserving store order.
func FilterByDate(recs []models.ProductionRecord, date string) []models.ProductionRecord {
	var out []models.ProductionRecord
	for _, rec := range recs {
		if rec.Date == date {
			out = append(out, rec)
		}
	}
	return out
}

// FilterByMonth keeps records whose stored date starts with the given
// YYYY-MM prefix. This is a string prefix match, not calendar arithmetic.
func FilterByMonth(recs []models.ProductionRecord, monthPrefix string) []models.ProductionRecord {
	var out []models.ProductionRecord
	for _, rec := range recs {
		if strings.HasPrefix(rec.Date, monthPrefix) {
			out = append(out, rec)
		}
	}
	return out
}

// FormatRekap renders a digest in store order. Callers must not pass an
// empty slice; they reply with the 📭 no-data message instead.
func FormatRekap(recs []models.ProductionRecord, title string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n=================\n")
	for _, rec := range recs {
		if rec.ID != "" {
			fmt.Fprintf(&b, "🆔 %s\n", rec.ID)
		}
		fmt.Fprintf(&b, "📌 %s | %s\n", rec.Line, rec.Product)
		fmt.Fprintf(&b, "🕒 %s–%s | Qty: %d\n", rec.StartTime, rec.EndTime, rec.Quantity)
		fmt.Fprintf(&b, "👤 %s\n\n", rec.Operator)
	}
	return b.String()
}

// FormatHourly renders the compact per-run view used by !rekap jam.
func FormatHourly(recs []models.ProductionRecord, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕒 *Rekap Jam (%s)*\n", date)
	for _, rec := range recs {
		fmt.Fprintf(&b, "• %s - %s: %s–%s → %d unit\n", rec.Line, rec.Product, rec.StartTime, rec.EndTime, rec.Quantity)
	}
	return b.String()
}

// Rows projects records onto the export column schema, one row per record,
// in store order.
func Rows(recs []models.ProductionRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []interface{}{
			rec.ID, rec.Date, rec.Line, rec.Product, rec.StartTime, rec.EndTime, rec.Quantity, rec.Operator,
		})
	}
	return rows
}

// Service wraps the pure helpers with store access for the scheduler.
type Service struct {
	store  *records.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a reporting service instance.
func NewService(store *records.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// DailyReport aggregates one day's records into the archive document plus
// the rendered rekap text. Text is empty when the day has no records.
func (s *Service) DailyReport(ctx context.Context, date string) (models.DailyReport, string, error) {
	recs, err := s.store.Load(ctx)
	if err != nil {
		return models.DailyReport{}, "", fmt.Errorf("load records: %w", err)
	}

	day := FilterByDate(recs, date)
	report := models.DailyReport{
		Date:        date,
		RecordCount: len(day),
		LineTotals:  map[string]int{},
		CreatedAt:   s.now(),
	}
	for _, rec := range day {
		report.TotalQty += rec.Quantity
		report.LineTotals[rec.Line] += rec.Quantity
	}

	if len(day) == 0 {
		return report, "", nil
	}

	text := FormatRekap(day, fmt.Sprintf("📅 Rekap Harian (%s)", date))
	return report, text, nil
}
