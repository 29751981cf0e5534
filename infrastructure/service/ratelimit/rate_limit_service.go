// Package ratelimit bounds per-principal submission throughput using a
// Redis fixed-window counter. When disabled it degrades to a noop that
// allows everything.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/cmdgate/cmdgate/application/port/inbound"
)

type Config struct {
	Enabled  bool
	RedisURL string
	Requests int
	Window   time.Duration
}

type redisRateLimit struct {
	client   *redis.Client
	requests int
	window   time.Duration
	logger   *logrus.Logger
}

// New returns a Redis-backed limiter, or a noop limiter when disabled.
func New(cfg Config, logger *logrus.Logger) (inbound.RateLimitService, error) {
	if !cfg.Enabled {
		logger.Info("rate limiting disabled")
		return &noopRateLimit{}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"requests": cfg.Requests,
		"window":   cfg.Window,
	}).Info("rate limiting enabled")

	return &redisRateLimit{
		client:   client,
		requests: cfg.Requests,
		window:   cfg.Window,
		logger:   logger,
	}, nil
}

// Allow increments the principal's window counter and reports whether the
// submission may proceed. Redis outages fail open: throttling is a
// protection, not an admission decision.
func (s *redisRateLimit) Allow(ctx context.Context, principalID string) (bool, error) {
	key := fmt.Sprintf("cmdgate:ratelimit:%s", principalID)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.WithError(err).Warn("rate limit check failed, allowing request")
		return true, nil
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			s.logger.WithError(err).Warn("rate limit expire failed")
		}
	}
	return count <= int64(s.requests), nil
}

type noopRateLimit struct{}

func (s *noopRateLimit) Allow(ctx context.Context, principalID string) (bool, error) {
	return true, nil
}
