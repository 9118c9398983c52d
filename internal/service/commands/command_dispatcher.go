// Package commands routes parsed chat commands to their handlers: the store
// cycle for mutations, the report generator for rekap and export.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hnafiah/rekapbot/internal/domain/models"
	"github.com/hnafiah/rekapbot/internal/repository/records"
	"github.com/hnafiah/rekapbot/internal/service/reporting"
	"github.com/hnafiah/rekapbot/pkg/ident"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	// Fresh ids are rechecked against the loaded snapshot this many times
	// before a collision is accepted.
	idRetries = 5
)

const (
	replyCreateDenied = "🚫 Hanya admin grup yang dapat input data."
	replyUpdateDenied = "🚫 Hanya admin grup yang dapat mengubah data."
	replyDeleteDenied = "🚫 Hanya admin grup yang dapat menghapus data."
	replyStoreFailed  = "⚠️ Terjadi kesalahan saat mengakses data. Coba lagi."
	replyExportFailed = "⚠️ Gagal membuat file export. Coba lagi."
)

// Exporter writes an export row set to a tabular file and returns its path.
type Exporter interface {
	WriteRekap(ctx context.Context, rows [][]interface{}, period string) (string, error)
}

// Service dispatches parsed commands. Every inbound message yields at most
// one reply; unrecognized text yields none.
type Service struct {
	store    *records.Repository
	exporter Exporter
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService constructs a command dispatcher.
func NewService(store *records.Repository, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
		newID:    ident.New,
	}
}

// HandleMessage parses one message and executes its command. A zero-value
// Reply means the text was not a command and the conversation stays silent.
func (s *Service) HandleMessage(ctx context.Context, text string, auth models.AuthContext) (models.Reply, error) {
	cmd, err := models.ParseCommand(text)
	if errors.Is(err, models.ErrUnrecognized) {
		return models.Reply{}, nil
	}

	var parseErr *models.ParseError
	if errors.As(err, &parseErr) {
		return models.Reply{Text: parseErr.Hint}, nil
	}
	if err != nil {
		return models.Reply{}, err
	}

	s.logger.Debug("dispatching command",
		zap.String("command", string(cmd.Type)),
		zap.String("sender", auth.SenderID),
		zap.Bool("group", auth.IsGroup))

	if cmd.Mutating() && !Authorize(auth) {
		return models.Reply{Text: deniedReply(cmd.Type)}, nil
	}

	switch cmd.Type {
	case models.CommandCreate:
		return s.handleCreate(ctx, *cmd.Create, auth.SenderID)
	case models.CommandUpdate:
		return s.handleUpdate(ctx, *cmd.Update)
	case models.CommandDelete:
		return s.handleDelete(ctx, *cmd.Delete)
	case models.CommandReportDaily:
		return s.handleReportDaily(ctx, *cmd.Report)
	case models.CommandReportMonthly:
		return s.handleReportMonthly(ctx, *cmd.Report)
	case models.CommandReportHourly:
		return s.handleReportHourly(ctx)
	case models.CommandExport:
		return s.handleExport(ctx, *cmd.Export)
	default:
		return models.Reply{}, nil
	}
}

func deniedReply(t models.CommandType) string {
	switch t {
	case models.CommandUpdate:
		return replyUpdateDenied
	case models.CommandDelete:
		return replyDeleteDenied
	default:
		return replyCreateDenied
	}
}

func (s *Service) handleCreate(ctx context.Context, args models.CreateArgs, sender string) (models.Reply, error) {
	qty, err := strconv.Atoi(args.QtyToken)
	if err != nil {
		return models.Reply{Text: "❌ Qty harus berupa angka."}, nil
	}

	var created models.ProductionRecord
	err = s.store.Mutate(ctx, func(recs []models.ProductionRecord) ([]models.ProductionRecord, error) {
		created = models.ProductionRecord{
			ID:        s.freshID(recs),
			Date:      s.now().Format(dateLayout),
			Line:      args.Line,
			Product:   args.Product,
			StartTime: args.StartTime,
			EndTime:   args.EndTime,
			Quantity:  qty,
			Operator:  sender,
		}
		return append(recs, created), nil
	})
	if err != nil {
		return s.storeFailure("create", err), nil
	}

	return models.Reply{Text: fmt.Sprintf("✅ Data %s disimpan: %s, %d unit\n🆔 ID: %s",
		created.Line, created.Product, created.Quantity, created.ID)}, nil
}

func (s *Service) handleUpdate(ctx context.Context, args models.UpdateArgs) (models.Reply, error) {
	var updated models.ProductionRecord
	err := s.store.Mutate(ctx, func(recs []models.ProductionRecord) ([]models.ProductionRecord, error) {
		idx, rec, ok := records.FindByID(recs, args.ID)
		if !ok {
			return nil, records.ErrNotFound
		}

		// Date, operator and id are immutable after creation.
		rec.Line = args.Line
		rec.Product = args.Product
		rec.StartTime = args.StartTime
		rec.EndTime = args.EndTime
		rec.Quantity = args.Quantity

		recs[idx] = rec
		updated = rec
		return recs, nil
	})
	if errors.Is(err, records.ErrNotFound) {
		return models.Reply{Text: fmt.Sprintf("⚠️ Data dengan ID %s tidak ditemukan.", args.ID)}, nil
	}
	if err != nil {
		return s.storeFailure("update", err), nil
	}

	return models.Reply{Text: fmt.Sprintf(
		"✏️ Data pada ID %s berhasil diubah:\n📌 Line: %s\n📦 Produk: %s\n🕒 Jam: %s–%s\n🔢 Qty: %d",
		args.ID, updated.Line, updated.Product, updated.StartTime, updated.EndTime, updated.Quantity)}, nil
}

func (s *Service) handleDelete(ctx context.Context, args models.DeleteArgs) (models.Reply, error) {
	var removed models.ProductionRecord
	err := s.store.Mutate(ctx, func(recs []models.ProductionRecord) ([]models.ProductionRecord, error) {
		idx, rec, ok := records.FindByID(recs, args.ID)
		if !ok {
			return nil, records.ErrNotFound
		}
		removed = rec
		return append(recs[:idx], recs[idx+1:]...), nil
	})
	if errors.Is(err, records.ErrNotFound) {
		return models.Reply{Text: fmt.Sprintf("⚠️ Data dengan ID %s tidak ditemukan.", args.ID)}, nil
	}
	if err != nil {
		return s.storeFailure("delete", err), nil
	}

	return models.Reply{Text: fmt.Sprintf("🗑️ Data dengan ID %s (%s - %s) berhasil dihapus.",
		args.ID, removed.Line, removed.Product)}, nil
}

func (s *Service) handleReportDaily(ctx context.Context, args models.ReportArgs) (models.Reply, error) {
	date := args.Period
	if date == "" {
		date = s.now().Format(dateLayout)
	}

	recs, err := s.store.Load(ctx)
	if err != nil {
		return s.storeFailure("rekap hari", err), nil
	}

	day := reporting.FilterByDate(recs, date)
	if len(day) == 0 {
		return models.Reply{Text: fmt.Sprintf("📭 Tidak ada data pada %s", date)}, nil
	}

	return models.Reply{Text: reporting.FormatRekap(day, fmt.Sprintf("📅 Rekap Harian (%s)", date))}, nil
}

func (s *Service) handleReportMonthly(ctx context.Context, args models.ReportArgs) (models.Reply, error) {
	month := args.Period
	if month == "" {
		month = s.now().Format(monthLayout)
	}

	recs, err := s.store.Load(ctx)
	if err != nil {
		return s.storeFailure("rekap bulan", err), nil
	}

	matched := reporting.FilterByMonth(recs, month)
	if len(matched) == 0 {
		return models.Reply{Text: fmt.Sprintf("📭 Tidak ada data bulan %s", month)}, nil
	}

	return models.Reply{Text: reporting.FormatRekap(matched, fmt.Sprintf("🗓️ Rekap Bulanan (%s)", month))}, nil
}

func (s *Service) handleReportHourly(ctx context.Context) (models.Reply, error) {
	today := s.now().Format(dateLayout)

	recs, err := s.store.Load(ctx)
	if err != nil {
		return s.storeFailure("rekap jam", err), nil
	}

	day := reporting.FilterByDate(recs, today)
	if len(day) == 0 {
		return models.Reply{Text: "📭 Tidak ada data hari ini."}, nil
	}

	return models.Reply{Text: reporting.FormatHourly(day, today)}, nil
}

func (s *Service) handleExport(ctx context.Context, args models.ExportArgs) (models.Reply, error) {
	period := args.Period
	if period == "" {
		if args.Mode == models.ExportDaily {
			period = s.now().Format(dateLayout)
		} else {
			period = s.now().Format(monthLayout)
		}
	}

	recs, err := s.store.Load(ctx)
	if err != nil {
		return s.storeFailure("export", err), nil
	}

	var matched []models.ProductionRecord
	if args.Mode == models.ExportDaily {
		matched = reporting.FilterByDate(recs, period)
	} else {
		matched = reporting.FilterByMonth(recs, period)
	}
	if len(matched) == 0 {
		return models.Reply{Text: fmt.Sprintf("📭 Tidak ada data untuk %s", period)}, nil
	}

	path, err := s.exporter.WriteRekap(ctx, reporting.Rows(matched), period)
	if err != nil {
		s.logger.Error("export failed", zap.String("period", period), zap.Error(err))
		return models.Reply{Text: replyExportFailed}, nil
	}

	return models.Reply{
		Text: fmt.Sprintf("📤 File Excel untuk %s", period),
		Document: &models.Document{
			Path:     path,
			Filename: fmt.Sprintf("Rekap-%s.xlsx", period),
			Caption:  fmt.Sprintf("📦 Rekap Produksi (%s)", period),
		},
	}, nil
}

// freshID retries generation while the candidate already exists in the
// snapshot. After idRetries the collision risk is accepted.
func (s *Service) freshID(recs []models.ProductionRecord) string {
	id := s.newID()
	for i := 0; i < idRetries; i++ {
		if _, _, exists := records.FindByID(recs, id); !exists {
			break
		}
		id = s.newID()
	}
	return id
}

// storeFailure logs the real error and hands the operator a generic reply;
// the command's effect is aborted, never half applied.
func (s *Service) storeFailure(op string, err error) models.Reply {
	s.logger.Error("store cycle failed", zap.String("op", op), zap.Error(err))
	return models.Reply{Text: replyStoreFailed}
}
