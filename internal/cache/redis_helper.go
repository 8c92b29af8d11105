package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultSummaryTTL = time.Hour
	defaultLockTTL    = 10 * time.Minute
)

func newRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func summaryTTL(cfg config.CacheConfig) time.Duration {
	ttl := time.Duration(cfg.SummaryTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	return ttl
}

func lockTTL(cfg config.CacheConfig) time.Duration {
	ttl := time.Duration(cfg.LockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return ttl
}
