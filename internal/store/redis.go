package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/job-aggregator/internal/types"
)

const (
	dispatchKey = "scrape:dispatch"
	seenKey     = "scrape:seen"

	// seenTTL bounds the dedupe set so long-dead URLs eventually become
	// scrapeable again.
	seenTTL = 30 * 24 * time.Hour
)

// Dispatch is the Redis-backed hand-off between the intake pipeline and the
// scrape workers: a work list plus a seen-URL set for cheap dedupe before
// anything touches Postgres.
type Dispatch struct {
	client *redis.Client
}

// ConnectDispatch opens a Redis client and verifies the connection.
func ConnectDispatch(ctx context.Context, redisURL string) (*Dispatch, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Dispatch{client: client}, nil
}

// Close releases the Redis connection.
func (d *Dispatch) Close() error {
	return d.client.Close()
}

// Push enqueues a scrape entry for the worker pool.
func (d *Dispatch) Push(ctx context.Context, entry *types.ScrapeQueueEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch entry: %w", err)
	}
	if err := d.client.LPush(ctx, dispatchKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push dispatch entry: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the next scrape entry. Returns nil, nil on
// timeout.
func (d *Dispatch) Pop(ctx context.Context, timeout time.Duration) (*types.ScrapeQueueEntry, error) {
	result, err := d.client.BRPop(ctx, timeout, dispatchKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop dispatch entry: %w", err)
	}

	var entry types.ScrapeQueueEntry
	if err := json.Unmarshal([]byte(result[1]), &entry); err != nil {
		return nil, fmt.Errorf("failed to decode dispatch entry: %w", err)
	}
	return &entry, nil
}

// Pending returns the dispatch backlog length.
func (d *Dispatch) Pending(ctx context.Context) (int64, error) {
	n, err := d.client.LLen(ctx, dispatchKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read dispatch backlog: %w", err)
	}
	return n, nil
}

// MarkSeen records a URL in the dedupe set. Returns true when the URL was
// not seen before, so exactly one caller wins per URL.
func (d *Dispatch) MarkSeen(ctx context.Context, url string) (bool, error) {
	added, err := d.client.SAdd(ctx, seenKey, url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark URL seen: %w", err)
	}
	// Refresh the whole set's expiry; per-member TTLs are not worth a
	// second structure here.
	_ = d.client.Expire(ctx, seenKey, seenTTL).Err()
	return added == 1, nil
}

// IsSeen reports whether a URL is already in the dedupe set.
func (d *Dispatch) IsSeen(ctx context.Context, url string) (bool, error) {
	seen, err := d.client.SIsMember(ctx, seenKey, url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check URL seen: %w", err)
	}
	return seen, nil
}
