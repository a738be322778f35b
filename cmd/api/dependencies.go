package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/shift-roster/internal/domain/calendar"
	"github.com/FACorreiaa/shift-roster/internal/domain/roster/events"
	rosterhandler "github.com/FACorreiaa/shift-roster/internal/domain/roster/handler"
	"github.com/FACorreiaa/shift-roster/internal/domain/roster/locator"
	rosterservice "github.com/FACorreiaa/shift-roster/internal/domain/roster/service"
	"github.com/FACorreiaa/shift-roster/pkg/config"
	"github.com/FACorreiaa/shift-roster/pkg/cron"
	"github.com/FACorreiaa/shift-roster/pkg/metrics"
	"github.com/FACorreiaa/shift-roster/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Infrastructure
	FileStorage storage.Storage
	Scheduler   *cron.Scheduler

	// Services
	Publisher     calendar.Publisher
	RosterService *rosterservice.RosterService

	// Handlers
	RosterHandler *rosterhandler.RosterHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStorage sets up scratch storage for uploads and its purge job
func (d *Dependencies) initStorage() error {
	fileStorage, err := storage.New(&storage.Config{LocalPath: d.Config.Storage.ScratchPath})
	if err != nil {
		return err
	}
	d.FileStorage = fileStorage

	d.Scheduler = cron.NewScheduler(
		d.FileStorage,
		d.Config.Storage.PurgeSchedule,
		d.Config.Storage.RetentionTTL,
		d.Logger,
	)

	d.Logger.Info("scratch storage ready", slog.Duration("retention", d.Config.Storage.RetentionTTL))
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	if d.Config.Calendar.WebhookURL != "" {
		d.Publisher = calendar.NewWebhookPublisher(calendar.WebhookConfig{
			URL:       d.Config.Calendar.WebhookURL,
			Token:     d.Config.Calendar.Token,
			BatchSize: d.Config.Calendar.BatchSize,
		}, d.Logger)
	} else {
		d.Logger.Warn("CALENDAR_WEBHOOK_URL not set, published events are only logged")
		d.Publisher = calendar.NewLogPublisher(d.Logger)
	}

	loc := locator.NewLocator(locator.NewTabulaLoader(d.FileStorage, d.Logger), d.Logger)
	builder := events.NewBuilder(d.Config.Roster.Location())

	d.RosterService = rosterservice.NewRosterService(
		loc,
		builder,
		d.Publisher,
		d.Config.Roster.CodeMapPath,
		d.Logger,
	).WithRecorder(d.Metrics)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.RosterHandler = rosterhandler.NewRosterHandler(d.RosterService, d.Config.Server.MaxUploadBytes, d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// Router builds the API handler with its middleware stack
func (d *Dependencies) Router() http.Handler {
	mux := http.NewServeMux()
	d.RosterHandler.Register(mux)

	return rosterhandler.Chain(mux,
		rosterhandler.Logging(d.Logger),
		rosterhandler.Recover(d.Logger),
		rosterhandler.CORS(d.Config.Server.AllowedOrigins),
		rosterhandler.RateLimit(d.Config.Server.RateLimitPerSecond, d.Config.Server.RateLimitBurst),
	)
}

// Cleanup stops background jobs
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}
