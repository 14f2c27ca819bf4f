package service

import (
	"context"
	"time"

	"github.com/mdiasanta/req-hunter/internal/domain"
)

// Metrics receives scrape measurements. Implemented by metrics.Collector.
type Metrics interface {
	ObserveSource(source, strategy string, found, inserted int, err error, elapsed time.Duration)
	ObserveRun(trigger string, result *domain.ScrapeResult, err error, elapsed time.Duration)
}

// EventPublisher announces scrape outcomes. Implemented by events.RedisPublisher.
type EventPublisher interface {
	JobsDiscovered(ctx context.Context, jobs []domain.Job) error
	RunFinished(ctx context.Context, runID, trigger string, result *domain.ScrapeResult) error
}

// Hooks are the optional observers of scrape activity. Nil fields are skipped.
type Hooks struct {
	Metrics Metrics
	Events  EventPublisher
}

type triggerKey struct{}

// Run triggers, used for logs and metrics.
const (
	TriggerSchedule = "schedule"
	TriggerAPI      = "api"
	TriggerCLI      = "cli"
	triggerManual   = "manual"
)

// WithTrigger tags ctx with what started the run.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

// TriggerFrom returns the trigger set by WithTrigger, or "manual".
func TriggerFrom(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok && t != "" {
		return t
	}
	return triggerManual
}
