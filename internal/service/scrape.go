package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/mdiasanta/req-hunter/internal/logger"
	"github.com/mdiasanta/req-hunter/internal/repository"
)

// ScrapeService is the run entry point shared by the scheduler, the API
// and the CLI.
type ScrapeService struct {
	sources    *repository.SourceRepository
	dispatcher *Dispatcher
	hooks      Hooks
}

// NewScrapeService creates a new ScrapeService.
func NewScrapeService(sources *repository.SourceRepository, dispatcher *Dispatcher, hooks Hooks) *ScrapeService {
	return &ScrapeService{
		sources:    sources,
		dispatcher: dispatcher,
		hooks:      hooks,
	}
}

// RunAllSources scrapes every active, unblocked source in id order.
func (s *ScrapeService) RunAllSources(ctx context.Context) (*domain.ScrapeResult, error) {
	sources, err := s.sources.ListRunnable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return s.run(ctx, sources)
}

// RunSourceByID scrapes a single source regardless of its active flag.
// Returns ErrSourceNotFound or ErrSourceBlocked when it cannot run.
func (s *ScrapeService) RunSourceByID(ctx context.Context, id uint) (*domain.ScrapeResult, error) {
	src, err := s.sources.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSourceNotFound
		}
		return nil, fmt.Errorf("get source: %w", err)
	}
	if src.IsBlocked {
		return nil, ErrSourceBlocked
	}
	return s.run(ctx, []domain.Source{*src})
}

func (s *ScrapeService) run(ctx context.Context, sources []domain.Source) (*domain.ScrapeResult, error) {
	runID := uuid.NewString()
	trigger := TriggerFrom(ctx)
	ctx = logger.SetRunID(ctx, runID)
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldTrigger:   trigger,
		logger.FieldComponent: "scrape",
	})
	start := time.Now()

	logger.CtxInfo(ctx, "Scrape run started: sources=%d", len(sources))
	result, err := s.dispatcher.RunAll(ctx, sources)
	if s.hooks.Metrics != nil {
		s.hooks.Metrics.ObserveRun(trigger, result, err, time.Since(start))
	}
	if err != nil {
		logger.With(logger.Fields{logger.FieldStatus: "failure"}).
			WithDuration(start).
			Error(ctx, "Scrape run aborted: %v", err)
		return nil, err
	}

	logger.With(logger.Fields{
		"sources_processed": result.SourcesProcessed,
		"jobs_found":        result.JobsFound,
		"jobs_new":          result.JobsNew,
		"errors":            len(result.Errors),
	}).WithDuration(start).Info(ctx, "Scrape run finished")

	if s.hooks.Events != nil {
		if err := s.hooks.Events.RunFinished(ctx, runID, trigger, result); err != nil {
			logger.CtxWarn(ctx, "Failed to publish run summary: %v", err)
		}
	}
	return result, nil
}
