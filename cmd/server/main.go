package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/hnafiah/rekapbot/internal/config"
	"github.com/hnafiah/rekapbot/internal/repository/mongodb"
	"github.com/hnafiah/rekapbot/internal/repository/records"
	"github.com/hnafiah/rekapbot/internal/repository/sheets"
	"github.com/hnafiah/rekapbot/internal/scheduler"
	"github.com/hnafiah/rekapbot/internal/server/handlers"
	"github.com/hnafiah/rekapbot/internal/server/router"
	commandsvc "github.com/hnafiah/rekapbot/internal/service/commands"
	exportsvc "github.com/hnafiah/rekapbot/internal/service/export"
	reportingsvc "github.com/hnafiah/rekapbot/internal/service/reporting"
	whatsappsvc "github.com/hnafiah/rekapbot/internal/service/whatsapp"
	whatsappclient "github.com/hnafiah/rekapbot/pkg/clients/whatsapp"
	"github.com/hnafiah/rekapbot/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	recordStore, err := records.NewRepository(cfg.Store.DataFile, baseLogger.Named("repo.records"))
	if err != nil {
		baseLogger.Fatal("failed to init record store", zap.Error(err))
	}

	var sheetMirror sheets.Repository
	if cfg.SheetsEnabled() {
		sheetMirror, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets mirror", zap.Error(err))
		}
		baseLogger.Info("spreadsheet mirror enabled")
	}

	var reportArchive mongodb.Repository
	var mongoRepo *mongodb.MongoDBRepository
	if cfg.MongoEnabled() {
		mongoRepo, err = mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		reportArchive = mongoRepo
		baseLogger.Info("daily report archive enabled")
	}

	exporter := exportsvc.NewService(cfg.Store.ExportDir, sheetMirror, baseLogger.Named("svc.export"))
	reportingSvc := reportingsvc.NewService(recordStore, baseLogger.Named("svc.reporting"))
	commandDispatcher := commandsvc.NewService(recordStore, exporter, baseLogger.Named("svc.commands"))

	whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
	messagingSvc := whatsappsvc.NewGatewayService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
	webhookHandler := handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
	engine := router.New(webhookHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, messagingSvc, reportArchive, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
