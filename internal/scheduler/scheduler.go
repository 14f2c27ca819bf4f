package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/mdiasanta/req-hunter/internal/logger"
	"github.com/mdiasanta/req-hunter/internal/repository"
	"github.com/mdiasanta/req-hunter/internal/service"
	"github.com/robfig/cron/v3"
)

// DefaultPollInterval is how often the control loop checks the schedule.
const DefaultPollInterval = 20 * time.Second

// ErrRunInProgress is returned by Tick when a run is already executing.
var ErrRunInProgress = errors.New("scrape run already in progress")

// Runner executes one run across all runnable sources.
type Runner interface {
	RunAllSources(ctx context.Context) (*domain.ScrapeResult, error)
}

// SkipObserver counts ticks skipped because a run was still going.
type SkipObserver interface {
	ObserveSkip()
}

// ScheduleUpdate is an operator change to the schedule. Nil fields are kept.
type ScheduleUpdate struct {
	Enabled         *bool `json:"is_enabled"`
	IntervalMinutes *int  `json:"interval_minutes"`
}

// TickOutcome describes what a tick did, mostly for logs and tests.
type TickOutcome string

const (
	TickDisabled TickOutcome = "disabled"
	TickPrimed   TickOutcome = "primed"
	TickNotDue   TickOutcome = "not_due"
	TickRan      TickOutcome = "ran"
	TickSkipped  TickOutcome = "skipped"
)

// Scheduler owns the singleton schedule and the periodic control loop.
// It is created by the process entry point and passed to whatever needs it.
type Scheduler struct {
	repo   *repository.ScheduleRepository
	runner Runner
	poll   time.Duration
	skips  SkipObserver
	now    func() time.Time

	running atomic.Bool

	mu   sync.Mutex
	cron *cron.Cron
}

// New creates a Scheduler. It does nothing until Start.
// Parameters:
//   - repo: schedule row storage.
//   - runner: run entry point, normally service.ScrapeService.
//   - poll: control loop period; zero uses DefaultPollInterval.
//   - skips: optional overlap counter, may be nil.
//
// Returns:
//   - *Scheduler: stopped scheduler.
func New(repo *repository.ScheduleRepository, runner Runner, poll time.Duration, skips SkipObserver) *Scheduler {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Scheduler{
		repo:   repo,
		runner: runner,
		poll:   poll,
		skips:  skips,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the control loop. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	cronLog := cron.PrintfLogger(logger.GetDefault().WithField(logger.FieldComponent, "scheduler"))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.poll), s.loopTick); err != nil {
		return fmt.Errorf("register scheduler loop: %w", err)
	}
	c.Start()
	s.cron = c

	logger.Info("Scrape scheduler started: poll=%s", s.poll)
	return nil
}

// Stop ends the control loop and blocks until an in-flight tick has
// finished. A run in progress is allowed to complete. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}

	<-c.Stop().Done()
	logger.Info("Scrape scheduler stopped")
}

func (s *Scheduler) loopTick() {
	ctx := logger.SetComponent(context.Background(), "scheduler")
	if _, err := s.Tick(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
		logger.CtxError(ctx, "Scheduler tick failed: %v", err)
	}
}

// Tick performs one iteration of the control loop.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//
// Returns:
//   - TickOutcome: what the tick decided.
//   - error: ErrRunInProgress on overlap, or a run or store failure.
func (s *Scheduler) Tick(ctx context.Context) (TickOutcome, error) {
	if !s.running.CompareAndSwap(false, true) {
		if s.skips != nil {
			s.skips.ObserveSkip()
		}
		logger.CtxDebug(ctx, "Tick skipped: run in progress")
		return TickSkipped, ErrRunInProgress
	}
	defer s.running.Store(false)

	var outcome TickOutcome
	_, err := s.repo.Mutate(ctx, func(sched *domain.ScrapeSchedule) bool {
		now := s.now()
		switch {
		case !sched.IsEnabled:
			outcome = TickDisabled
			return false
		case sched.NextRunAt == nil:
			next := CalculateNextRun(now, sched.IntervalMinutes)
			sched.NextRunAt = &next
			outcome = TickPrimed
			return true
		case sched.NextRunAt.After(now):
			outcome = TickNotDue
			return false
		default:
			outcome = TickRan
			return false
		}
	})
	if err != nil {
		return "", fmt.Errorf("load schedule: %w", err)
	}
	if outcome != TickRan {
		return outcome, nil
	}

	logger.CtxInfo(ctx, "Scheduled scrape started")
	result, err := s.runner.RunAllSources(service.WithTrigger(ctx, service.TriggerSchedule))
	if err != nil {
		// next_run stays in the past so the following tick retries
		return outcome, fmt.Errorf("scheduled scrape: %w", err)
	}

	_, err = s.repo.Mutate(ctx, func(sched *domain.ScrapeSchedule) bool {
		last := s.now()
		sched.LastRunAt = &last
		// disabled by an operator while the run was going
		if sched.IsEnabled {
			next := CalculateNextRun(last, sched.IntervalMinutes)
			sched.NextRunAt = &next
		}
		return true
	})
	if err != nil {
		return outcome, fmt.Errorf("record scheduled run: %w", err)
	}

	logger.With(logger.Fields{
		"sources_processed": result.SourcesProcessed,
		"jobs_found":        result.JobsFound,
		"jobs_new":          result.JobsNew,
		"errors":            len(result.Errors),
	}).Info(ctx, "Scheduled scrape finished")
	for _, msg := range result.Errors {
		logger.CtxError(ctx, "Scheduled scrape error: %s", msg)
	}
	return outcome, nil
}

// Schedule returns the current schedule, creating it on first access.
func (s *Scheduler) Schedule(ctx context.Context) (*domain.ScrapeSchedule, error) {
	return s.repo.Get(ctx)
}

// UpdateSchedule applies an operator change. The interval is normalized, and
// next_run is recomputed from now when enabled or cleared when disabled.
func (s *Scheduler) UpdateSchedule(ctx context.Context, update ScheduleUpdate) (*domain.ScrapeSchedule, error) {
	return s.repo.Mutate(ctx, func(sched *domain.ScrapeSchedule) bool {
		if update.IntervalMinutes != nil {
			sched.IntervalMinutes = NormalizeInterval(*update.IntervalMinutes)
		}
		if update.Enabled != nil {
			sched.IsEnabled = *update.Enabled
		}
		if sched.IsEnabled {
			next := CalculateNextRun(s.now(), sched.IntervalMinutes)
			sched.NextRunAt = &next
		} else {
			sched.NextRunAt = nil
		}
		return true
	})
}
