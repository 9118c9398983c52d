package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hnafiah/rekapbot/internal/config"
	"github.com/hnafiah/rekapbot/internal/domain/models"
	"github.com/hnafiah/rekapbot/internal/repository/mongodb"
	"github.com/hnafiah/rekapbot/internal/service/reporting"
	"github.com/hnafiah/rekapbot/internal/service/whatsapp"
)

const dateLayout = "2006-01-02"

// Scheduler pushes the nightly rekap to the production group and archives
// the day's aggregate.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	messagingSvc whatsapp.MessagingService
	archive      mongodb.Repository
	cfg          config.Config
	location     *time.Location
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. archive may be nil when no
// MongoDB is configured.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, messagingSvc whatsapp.MessagingService, archive mongodb.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		reportingSvc: reportingSvc,
		messagingSvc: messagingSvc,
		archive:      archive,
		cfg:          cfg,
		location:     location,
		logger:       logger,
	}
}

// Start registers the nightly job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendDailyRekap); err != nil {
		s.logger.Error("failed to schedule daily rekap", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendDailyRekap() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	date := time.Now().In(s.location).Format(dateLayout)
	s.logger.Info("generating daily rekap", zap.String("date", date))

	report, text, err := s.reportingSvc.DailyReport(ctx, date)
	if err != nil {
		s.logger.Error("failed to generate daily rekap", zap.Error(err))
		return
	}

	if report.RecordCount == 0 {
		s.logger.Info("no production records today, skipping rekap push", zap.String("date", date))
		return
	}

	if s.archive != nil {
		if err := s.archive.SaveDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to archive daily report", zap.Error(err))
		}
	}

	if s.cfg.WhatsApp.GroupID == "" {
		s.logger.Warn("no group configured, rekap not pushed")
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.GroupID,
		Message: text,
	}

	if err := s.messagingSvc.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send daily rekap", zap.Error(err))
	} else {
		s.logger.Info("daily rekap sent", zap.String("date", date), zap.Int("records", report.RecordCount))
	}
}
