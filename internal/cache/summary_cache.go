package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/domain"
	"github.com/redis/go-redis/v9"
)

const latestSummaryKey = "rebalance:summary:latest"

// SummaryCache stores the most recent run summary for the admin API.
type SummaryCache interface {
	GetLatest(ctx context.Context) (*domain.RunSummary, bool, error)
	SetLatest(ctx context.Context, summary *domain.RunSummary) error
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSummaryCache struct{}

func NewSummaryCache(cfg config.CacheConfig) (SummaryCache, error) {
	if !cfg.Enabled {
		return &noopSummaryCache{}, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSummaryCache{
		client: client,
		ttl:    summaryTTL(cfg),
	}, nil
}

func NewNoopSummaryCache() SummaryCache {
	return &noopSummaryCache{}
}

func (c *redisSummaryCache) GetLatest(ctx context.Context) (*domain.RunSummary, bool, error) {
	payload, err := c.client.Get(ctx, latestSummaryKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.RunSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode run summary cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisSummaryCache) SetLatest(ctx context.Context, summary *domain.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode run summary cache: %w", err)
	}

	if err := c.client.Set(ctx, latestSummaryKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopSummaryCache) GetLatest(ctx context.Context) (*domain.RunSummary, bool, error) {
	return nil, false, nil
}

func (n *noopSummaryCache) SetLatest(ctx context.Context, summary *domain.RunSummary) error {
	return nil
}
