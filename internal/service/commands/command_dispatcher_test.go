package commands

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnafiah/rekapbot/internal/domain/models"
	"github.com/hnafiah/rekapbot/internal/repository/records"
)

type fakeExporter struct {
	rows   [][]interface{}
	period string
	err    error
}

func (f *fakeExporter) WriteRekap(_ context.Context, rows [][]interface{}, period string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = rows
	f.period = period
	return "exports/Rekap-" + period + ".xlsx", nil
}

var fixedNow = time.Date(2024, 12, 25, 10, 30, 0, 0, time.Local)

func newTestService(t *testing.T) (*Service, *records.Repository, *fakeExporter) {
	t.Helper()

	store, err := records.NewRepository(filepath.Join(t.TempDir(), "data.json"), nil)
	require.NoError(t, err)

	exporter := &fakeExporter{}
	svc := NewService(store, exporter, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, exporter
}

func privateChat(sender string) models.AuthContext {
	return models.AuthContext{SenderID: sender}
}

func groupChat(sender string, admin bool) models.AuthContext {
	return models.AuthContext{
		IsGroup:  true,
		SenderID: sender,
		Members:  []models.GroupMember{{ID: sender, IsAdmin: admin}},
	}
}

func TestCreateFromPrivateChat(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	reply, err := svc.HandleMessage(ctx, "!line1 BotolA 08:00 12:00 500", privateChat("628111@c.us"))
	require.NoError(t, err)

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, "1", got.Line)
	assert.Equal(t, "BotolA", got.Product)
	assert.Equal(t, "08:00", got.StartTime)
	assert.Equal(t, "12:00", got.EndTime)
	assert.Equal(t, 500, got.Quantity)
	assert.Equal(t, "628111@c.us", got.Operator)
	assert.Equal(t, "2024-12-25", got.Date, "date is stamped from the clock, never user supplied")
	assert.Len(t, got.ID, 6)
	assert.Contains(t, reply.Text, got.ID, "confirmation carries the generated id")
	assert.Contains(t, reply.Text, "✅ Data 1 disimpan: BotolA, 500 unit")
}

func TestCreateBadQuantity(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	reply, err := svc.HandleMessage(ctx, "!line1 BotolA 08:00 12:00 banyak", privateChat("x"))
	require.NoError(t, err)
	assert.Equal(t, "❌ Qty harus berupa angka.", reply.Text)

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs, "rejected creation persists nothing")
}

func TestCreateIDCollisionRetries(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	ids := []string{"SAME00", "SAME00", "FRESH1"}
	svc.newID = func() string {
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	}

	_, err := svc.HandleMessage(ctx, "!line1 A 08:00 09:00 1", privateChat("x"))
	require.NoError(t, err)
	_, err = svc.HandleMessage(ctx, "!line1 B 09:00 10:00 2", privateChat("x"))
	require.NoError(t, err)

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "SAME00", recs[0].ID)
	assert.Equal(t, "FRESH1", recs[1].ID)
}

func TestMutatingCommandsRequireGroupAdmin(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		text string
		want string
	}{
		{"!line1 BotolA 08:00 12:00 500", "🚫 Hanya admin grup yang dapat input data."},
		{"!ubah AB12CD line1 BotolB 09:00 13:00 600", "🚫 Hanya admin grup yang dapat mengubah data."},
		{"!hapus AB12CD", "🚫 Hanya admin grup yang dapat menghapus data."},
	}

	for _, tt := range tests {
		reply, err := svc.HandleMessage(ctx, tt.text, groupChat("worker@c.us", false))
		require.NoError(t, err)
		assert.Equal(t, tt.want, reply.Text)
	}

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// Reports stay open to non-admins.
	reply, err := svc.HandleMessage(ctx, "!rekap hari", groupChat("worker@c.us", false))
	require.NoError(t, err)
	assert.Equal(t, "📭 Tidak ada data pada 2024-12-25", reply.Text)

	reply, err = svc.HandleMessage(ctx, "!export hari", groupChat("worker@c.us", false))
	require.NoError(t, err)
	assert.Equal(t, "📭 Tidak ada data untuk 2024-12-25", reply.Text)
}

func TestGroupAdminMayMutate(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, "!line3 Tutup 07:00 11:00 250", groupChat("admin@c.us", true))
	require.NoError(t, err)

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "admin@c.us", recs[0].Operator)
}

func TestUpdateChangesOnlyMutableFields(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	seed := []models.ProductionRecord{
		{ID: "AB12CD", Date: "2024-12-20", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 500, Operator: "op1@c.us"},
		{ID: "EF34GH", Date: "2024-12-21", Line: "2", Product: "BotolB", StartTime: "09:00", EndTime: "13:00", Quantity: 600, Operator: "op2@c.us"},
	}
	require.NoError(t, store.Save(ctx, seed))

	reply, err := svc.HandleMessage(ctx, "!ubah AB12CD line9 TutupX 10:00 14:00 700", privateChat("op3@c.us"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "✏️ Data pada ID AB12CD berhasil diubah")

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	got := recs[0]
	assert.Equal(t, "AB12CD", got.ID, "id is immutable")
	assert.Equal(t, "2024-12-20", got.Date, "date is immutable")
	assert.Equal(t, "op1@c.us", got.Operator, "operator is immutable")
	assert.Equal(t, "9", got.Line)
	assert.Equal(t, "TutupX", got.Product)
	assert.Equal(t, "10:00", got.StartTime)
	assert.Equal(t, "14:00", got.EndTime)
	assert.Equal(t, 700, got.Quantity)

	assert.Equal(t, seed[1], recs[1], "other records untouched")
}

func TestUpdateNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	reply, err := svc.HandleMessage(context.Background(), "!ubah XYZ999 line1 A 08:00 09:00 1", privateChat("x"))
	require.NoError(t, err)
	assert.Equal(t, "⚠️ Data dengan ID XYZ999 tidak ditemukan.", reply.Text)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	seed := []models.ProductionRecord{
		{ID: "AB12CD", Date: "2024-12-20", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 500, Operator: "op1@c.us"},
		{ID: "EF34GH", Date: "2024-12-21", Line: "2", Product: "BotolB", StartTime: "09:00", EndTime: "13:00", Quantity: 600, Operator: "op2@c.us"},
	}
	require.NoError(t, store.Save(ctx, seed))

	reply, err := svc.HandleMessage(ctx, "!hapus AB12CD", privateChat("x"))
	require.NoError(t, err)
	assert.Equal(t, "🗑️ Data dengan ID AB12CD (1 - BotolA) berhasil dihapus.", reply.Text)

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, seed[1], recs[0])
}

func TestDeleteNotFoundLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	seed := []models.ProductionRecord{
		{ID: "AB12CD", Date: "2024-12-20", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 500, Operator: "op1@c.us"},
	}
	require.NoError(t, store.Save(ctx, seed))

	reply, err := svc.HandleMessage(ctx, "!hapus XYZ999", privateChat("x"))
	require.NoError(t, err)
	assert.Equal(t, "⚠️ Data dengan ID XYZ999 tidak ditemukan.", reply.Text)

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed, recs)
}

func TestReportDailyWithExplicitDate(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []models.ProductionRecord{
		{ID: "AB12CD", Date: "2024-12-24", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 500, Operator: "op1@c.us"},
	}))

	// Operator types DD-MM-YYYY; the stored order is YYYY-MM-DD.
	reply, err := svc.HandleMessage(ctx, "!rekap hari 24-12-2024", privateChat("x"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "📅 Rekap Harian (2024-12-24)")
	assert.Contains(t, reply.Text, "🆔 AB12CD")
}

func TestReportMonthly(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []models.ProductionRecord{
		{ID: "AB12CD", Date: "2024-12-24", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 500, Operator: "op1@c.us"},
		{ID: "EF34GH", Date: "2024-11-30", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 100, Operator: "op1@c.us"},
	}))

	reply, err := svc.HandleMessage(ctx, "!rekap bulan 2024-12", privateChat("x"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "🗓️ Rekap Bulanan (2024-12)")
	assert.Contains(t, reply.Text, "AB12CD")
	assert.NotContains(t, reply.Text, "EF34GH")

	// Defaults to the current month.
	reply, err = svc.HandleMessage(ctx, "!rekap bulan", privateChat("x"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "🗓️ Rekap Bulanan (2024-12)")
}

func TestReportHourly(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []models.ProductionRecord{
		{ID: "AB12CD", Date: "2024-12-25", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 500, Operator: "op1@c.us"},
	}))

	reply, err := svc.HandleMessage(ctx, "!rekap jam", privateChat("x"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "🕒 *Rekap Jam (2024-12-25)*")
	assert.Contains(t, reply.Text, "• 1 - BotolA: 08:00–12:00 → 500 unit")
}

func TestExportProducesDocument(t *testing.T) {
	t.Parallel()

	svc, store, exporter := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []models.ProductionRecord{
		{ID: "AB12CD", Date: "2024-12-25", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 500, Operator: "op1@c.us"},
		{ID: "EF34GH", Date: "2024-11-30", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 100, Operator: "op1@c.us"},
	}))

	reply, err := svc.HandleMessage(ctx, "!export hari 25-12-2024", privateChat("x"))
	require.NoError(t, err)

	assert.Equal(t, "📤 File Excel untuk 2024-12-25", reply.Text)
	require.NotNil(t, reply.Document)
	assert.Equal(t, "Rekap-2024-12-25.xlsx", reply.Document.Filename)
	assert.Equal(t, "📦 Rekap Produksi (2024-12-25)", reply.Document.Caption)

	require.Len(t, exporter.rows, 1)
	assert.Equal(t, "AB12CD", exporter.rows[0][0])
	assert.Equal(t, "2024-12-25", exporter.period)
}

func TestExportFailureIsLoudButHandled(t *testing.T) {
	t.Parallel()

	svc, store, exporter := newTestService(t)
	ctx := context.Background()
	exporter.err = assert.AnError

	require.NoError(t, store.Save(ctx, []models.ProductionRecord{
		{ID: "AB12CD", Date: "2024-12-25", Line: "1", Product: "BotolA", StartTime: "08:00", EndTime: "12:00", Quantity: 500, Operator: "op1@c.us"},
	}))

	reply, err := svc.HandleMessage(ctx, "!export hari", privateChat("x"))
	require.NoError(t, err)
	assert.Equal(t, "⚠️ Gagal membuat file export. Coba lagi.", reply.Text)
	assert.Nil(t, reply.Document)
}

func TestUnrecognizedTextStaysSilent(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	reply, err := svc.HandleMessage(context.Background(), "selamat pagi semua", privateChat("x"))
	require.NoError(t, err)
	assert.Empty(t, reply.Text)
	assert.Nil(t, reply.Document)
}

func TestBadFormatRepliesWithHint(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	reply, err := svc.HandleMessage(context.Background(), "!line1 BotolA 08:00", privateChat("x"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "❌ Format salah")
}
