package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Channel names, one per event type.
const (
	ChannelJobDiscovered = "EVENT_JOB_DISCOVERED"
	ChannelScrapeDone    = "EVENT_SCRAPE_FINISHED"
)

// JobDiscovered is published once for every newly stored job.
type JobDiscovered struct {
	Type    string    `json:"type"`
	JobID   uint      `json:"jobId"`
	Title   string    `json:"title"`
	Company string    `json:"company"`
	URL     string    `json:"url"`
	Source  string    `json:"source"`
	FoundAt time.Time `json:"foundAt"`
}

// ScrapeFinished is published after every completed run.
type ScrapeFinished struct {
	Type    string               `json:"type"`
	RunID   string               `json:"runId"`
	Trigger string               `json:"trigger"`
	Result  *domain.ScrapeResult `json:"result"`
}

// RedisPublisher fans scrape events out over redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher parses redisURL and verifies connectivity.
func NewRedisPublisher(ctx context.Context, redisURL string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisPublisher{rdb: rdb}, nil
}

// NewRedisPublisherFromClient wraps an existing client.
func NewRedisPublisherFromClient(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// JobsDiscovered publishes one EVENT_JOB_DISCOVERED message per job.
func (p *RedisPublisher) JobsDiscovered(ctx context.Context, jobs []domain.Job) error {
	for _, job := range jobs {
		event, err := json.Marshal(JobDiscovered{
			Type:    ChannelJobDiscovered,
			JobID:   job.ID,
			Title:   job.Title,
			Company: job.Company,
			URL:     job.URL,
			Source:  job.Source,
			FoundAt: job.ScrapedAt,
		})
		if err != nil {
			return err
		}
		if err := p.rdb.Publish(ctx, ChannelJobDiscovered, event).Err(); err != nil {
			return fmt.Errorf("publish %s: %w", ChannelJobDiscovered, err)
		}
	}
	return nil
}

// RunFinished publishes the outcome of a run.
func (p *RedisPublisher) RunFinished(ctx context.Context, runID, trigger string, result *domain.ScrapeResult) error {
	event, err := json.Marshal(ScrapeFinished{
		Type:    ChannelScrapeDone,
		RunID:   runID,
		Trigger: trigger,
		Result:  result,
	})
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, ChannelScrapeDone, event).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ChannelScrapeDone, err)
	}
	return nil
}

// Close closes the redis client.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
