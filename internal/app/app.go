package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/floodlight/altmon/internal/common"
	"github.com/floodlight/altmon/internal/handlers"
	"github.com/floodlight/altmon/internal/jobs"
	"github.com/floodlight/altmon/internal/models"
	"github.com/floodlight/altmon/internal/scanner"
	"github.com/floodlight/altmon/internal/services/scheduler"
	badgerstore "github.com/floodlight/altmon/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB             *badgerstore.BadgerDB
	AssetCatalog   *badgerstore.AssetCatalog
	ContentCatalog *badgerstore.ContentCatalog

	// Scan engine
	Coordinator *jobs.Coordinator

	// Scheduled scans
	SchedulerService *scheduler.Service

	// HTTP handlers
	ScanHandler    *handlers.ScanHandler
	CatalogHandler *handlers.CatalogHandler
}

// New creates and wires all application components
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.DB = db

	a.AssetCatalog = badgerstore.NewAssetCatalog(db, logger)
	a.ContentCatalog = badgerstore.NewContentCatalog(db, logger)
	jobStorage := badgerstore.NewScanJobStorage(db, logger)
	findingsStorage := badgerstore.NewFindingsStorage(db, logger)

	rules := config.RuleConfig()
	scope := config.ScanScope()

	attachmentEval := scanner.NewAttachmentEvaluator(a.AssetCatalog, logger)
	fieldWalker := scanner.NewFieldWalker(attachmentEval, a.AssetCatalog, logger)
	mediaScanner := scanner.NewMediaScanner(a.AssetCatalog, attachmentEval, logger)
	contentScanner := scanner.NewContentScanner(a.ContentCatalog, fieldWalker, logger)

	a.Coordinator = jobs.NewCoordinator(jobStorage, findingsStorage, mediaScanner, contentScanner, jobs.Options{
		MediaBatchSize:   config.Scan.MediaBatchSize,
		ContentBatchSize: config.Scan.ContentBatchSize,
		Rules:            rules,
		Scope:            scope,
	}, logger)

	a.ScanHandler = handlers.NewScanHandler(a.Coordinator, logger)
	a.CatalogHandler = handlers.NewCatalogHandler(a.AssetCatalog, a.ContentCatalog, rules, logger)

	if config.Scan.Schedule.Enabled {
		stepInterval, err := config.StepInterval()
		if err != nil {
			return nil, fmt.Errorf("invalid step interval: %w", err)
		}
		a.SchedulerService = scheduler.NewService(a.Coordinator, models.ScanType(config.Scan.Schedule.Type), stepInterval, logger)
		if err := a.SchedulerService.Start(config.Scan.Schedule.Cron); err != nil {
			return nil, fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	logger.Info().
		Str("environment", config.Environment).
		Bool("schedule_enabled", config.Scan.Schedule.Enabled).
		Msg("Application initialized")

	return a, nil
}

// Shutdown stops background services and closes storage
func (a *App) Shutdown(ctx context.Context) error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
