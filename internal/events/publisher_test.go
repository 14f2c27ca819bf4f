package events

import (
	"context"
	"testing"
	"time"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisPublisherRejectsBadURL(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), "http://not-redis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.ParseURL")
}

func TestPublishUnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	pub := NewRedisPublisherFromClient(rdb)
	t.Cleanup(func() { _ = pub.Close() })
	ctx := context.Background()

	err := pub.RunFinished(ctx, "run-1", "cli", domain.NewScrapeResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ChannelScrapeDone)

	err = pub.JobsDiscovered(ctx, []domain.Job{{ID: 1, Title: "SRE", URL: "https://x.example.com/1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ChannelJobDiscovered)

	assert.NoError(t, pub.JobsDiscovered(ctx, nil))
}
