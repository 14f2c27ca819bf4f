package main

import (
	"context"
	"fmt"

	"github.com/mdiasanta/req-hunter/internal/config"
	"github.com/mdiasanta/req-hunter/internal/events"
	"github.com/mdiasanta/req-hunter/internal/logger"
	"github.com/mdiasanta/req-hunter/internal/metrics"
	"github.com/mdiasanta/req-hunter/internal/repository"
	"github.com/mdiasanta/req-hunter/internal/scraper"
	"github.com/mdiasanta/req-hunter/internal/scraper/heuristic"
	"github.com/mdiasanta/req-hunter/internal/service"
	"github.com/mdiasanta/req-hunter/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// app holds the process-scoped dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logFile  string
	db       *gorm.DB
	registry *prometheus.Registry
	metrics  *metrics.Collector

	sourceRepo   *repository.SourceRepository
	jobRepo      *repository.JobRepository
	scheduleRepo *repository.ScheduleRepository

	scrape    *service.ScrapeService
	publisher *events.RedisPublisher
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.LoadFromEnv()
	logger.SetDefaultLogger(logger.NewFromEnv(logCfg))

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a := &app{
		cfg:          cfg,
		logFile:      logCfg.LogFile,
		db:           db,
		registry:     prometheus.NewRegistry(),
		sourceRepo:   repository.NewSourceRepository(db),
		jobRepo:      repository.NewJobRepository(db),
		scheduleRepo: repository.NewScheduleRepository(db),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	hooks := service.Hooks{Metrics: a.metrics}
	if cfg.Redis.URL != "" {
		pub, err := events.NewRedisPublisher(ctx, cfg.Redis.URL)
		if err != nil {
			// events are optional, scraping still works without them
			logger.CtxWarn(ctx, "Event publishing disabled: %v", err)
		} else {
			a.publisher = pub
			hooks.Events = pub
		}
	}

	var snapshots heuristic.SnapshotStore
	if cfg.Storage.Enabled {
		store, err := storage.NewS3Storage(&cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init snapshot storage: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure snapshot bucket: %w", err)
		}
		snapshots = store
	}

	settings := scraperSettings(cfg.Scraper)
	factory := service.NewStrategyFactory(settings, heuristic.NewRodBrowser(settings), snapshots)
	dispatcher := service.NewDispatcher(a.sourceRepo, a.jobRepo, factory, hooks)
	a.scrape = service.NewScrapeService(a.sourceRepo, dispatcher, hooks)
	return a, nil
}

func scraperSettings(c config.ScraperConfig) scraper.Settings {
	ua := c.UserAgent
	if ua == "" {
		ua = scraper.DefaultUserAgent
	}
	return scraper.Settings{
		Timeout:       c.Timeout(),
		Delay:         c.Delay(),
		Headless:      c.Headless,
		MaxPages:      c.MaxPages,
		SettleTimeout: c.SettleTimeout(),
		UserAgent:     ua,
		BrowserBin:    c.BrowserBin,
	}
}

// Close releases connections. Safe to call more than once.
func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.Warn("Failed to close redis client: %v", err)
		}
		a.publisher = nil
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		a.db = nil
	}
	_ = logger.Sync()
}
