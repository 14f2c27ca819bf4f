package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/mdiasanta/req-hunter/internal/logger"
	"github.com/mdiasanta/req-hunter/internal/repository"
	"github.com/mdiasanta/req-hunter/internal/scraper"
)

// SourceOutcome is the result of scraping one source. Err holds a
// source-scoped failure that has already been isolated from the run.
type SourceOutcome struct {
	Found int
	New   int
	Err   error
}

// Dispatcher runs sources end to end: strategy selection, extraction,
// deduplicated persistence and source bookkeeping.
type Dispatcher struct {
	sources *repository.SourceRepository
	jobs    *repository.JobRepository
	factory StrategyFactory
	hooks   Hooks
	now     func() time.Time
}

// NewDispatcher creates a new Dispatcher.
// Parameters:
//   - sources: source repository for bookkeeping updates.
//   - jobs: job repository used for deduplication and inserts.
//   - factory: builds the extraction strategy per source.
//   - hooks: optional metrics and event observers.
//
// Returns:
//   - *Dispatcher: initialized dispatcher.
func NewDispatcher(
	sources *repository.SourceRepository,
	jobs *repository.JobRepository,
	factory StrategyFactory,
	hooks Hooks,
) *Dispatcher {
	return &Dispatcher{
		sources: sources,
		jobs:    jobs,
		factory: factory,
		hooks:   hooks,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RunSource scrapes one source and stores unseen jobs.
// Extraction failures come back in SourceOutcome.Err; the returned error is
// reserved for store failures and cancellation, which abort the whole run.
func (d *Dispatcher) RunSource(ctx context.Context, src *domain.Source) (SourceOutcome, error) {
	strategy := d.factory.ForSource(src)
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldSource:   src.Name,
		logger.FieldStrategy: string(strategy.Kind()),
	})
	start := time.Now()

	candidates, err := scraper.Run(ctx, strategy)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return SourceOutcome{}, ctxErr
		}
		logger.With(logger.Fields{logger.FieldStatus: "failure"}).
			WithDuration(start).
			Warn(ctx, "Source scrape failed: %v", err)
		d.observe(src, strategy.Kind(), SourceOutcome{Err: err}, start)
		return SourceOutcome{Err: err}, nil
	}

	inserted, err := d.saveNewJobs(ctx, candidates)
	if err != nil {
		return SourceOutcome{}, fmt.Errorf("save jobs for %q: %w", src.Name, err)
	}
	if err := d.sources.MarkScraped(ctx, src.ID, d.now()); err != nil {
		return SourceOutcome{}, fmt.Errorf("update source %q: %w", src.Name, err)
	}

	out := SourceOutcome{Found: len(candidates), New: len(inserted)}
	logger.With(logger.Fields{
		"jobs_found":       out.Found,
		"jobs_new":         out.New,
		logger.FieldStatus: "success",
	}).WithDuration(start).Info(ctx, "Source scraped")
	d.observe(src, strategy.Kind(), out, start)

	if len(inserted) > 0 && d.hooks.Events != nil {
		if err := d.hooks.Events.JobsDiscovered(ctx, inserted); err != nil {
			logger.CtxWarn(ctx, "Failed to publish discovered jobs: %v", err)
		}
	}
	return out, nil
}

// RunAll runs every source in order, one at a time, and sums the outcomes.
// Per-source failures land in Errors; a store failure aborts the run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sources: sources to run, in the order given.
//
// Returns:
//   - *domain.ScrapeResult: aggregated totals and "[name] message" errors.
//   - error: non-nil only if the run could not make progress.
func (d *Dispatcher) RunAll(ctx context.Context, sources []domain.Source) (*domain.ScrapeResult, error) {
	result := domain.NewScrapeResult()
	result.SourcesProcessed = len(sources)

	for i := range sources {
		src := &sources[i]
		out, err := d.RunSource(ctx, src)
		if err != nil {
			return nil, err
		}
		result.JobsFound += out.Found
		result.JobsNew += out.New
		if out.Err != nil {
			result.AddError(src.Name, out.Err)
		}
	}
	return result, nil
}

// saveNewJobs inserts candidates whose URL is not stored yet and returns them.
func (d *Dispatcher) saveNewJobs(ctx context.Context, candidates []scraper.Candidate) ([]domain.Job, error) {
	var inserted []domain.Job
	for _, c := range candidates {
		exists, err := d.jobs.ExistsByURL(ctx, c.URL)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		now := d.now()
		job := domain.Job{
			Title:       c.Title,
			Company:     c.Company,
			Location:    optional(c.Location),
			URL:         c.URL,
			Description: optional(c.Description),
			Source:      c.Source,
			Status:      domain.JobStatusNew,
			ScrapedAt:   now,
			UpdatedAt:   now,
		}
		if err := d.jobs.Create(ctx, &job); err != nil {
			// stored concurrently since the lookup
			if repository.IsUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		inserted = append(inserted, job)
	}
	return inserted, nil
}

func (d *Dispatcher) observe(src *domain.Source, kind scraper.Kind, out SourceOutcome, start time.Time) {
	if d.hooks.Metrics == nil {
		return
	}
	d.hooks.Metrics.ObserveSource(src.Name, string(kind), out.Found, out.New, out.Err, time.Since(start))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
