// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/lavapop/lifecycle-analytics/pkg/engine"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultReportTTL keeps stale reports from lingering if the refresh
	// loop dies; the dashboard falls back to its own empty state.
	DefaultReportTTL = 48 * time.Hour

	reportKey   = "lifecycle_analytics:report:latest"
	segmentsKey = "lifecycle_analytics:rfm_segments"
	welcomeKey  = "lifecycle_analytics:welcome_sent"
)

// RedisConfig holds connection parameters for the report store.
type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	MaxRetries int
	RetryDelay time.Duration
}

// InitRedisClient initializes a Redis client, retrying the initial ping
// with exponential backoff.
func InitRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + cfg.Port,
		Password:     cfg.Password,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(cfg.RetryDelay),
		), uint64(cfg.MaxRetries)),
		ctx,
	)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if _, err := client.Ping(ctx).Result(); err != nil {
			logrus.Warnf("Redis connection failed (attempt %d/%d): %v",
				attempt, cfg.MaxRetries+1, err)
			return err
		}
		return nil
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	logrus.Infof("connected to Redis at %s:%s", cfg.Host, cfg.Port)
	return client, nil
}

// Store caches the latest engine report and exposes the inputs other
// subsystems maintain in Redis (RFM segments, welcome outreach log).
// Persistence beyond this cache is the caller's concern.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a report store. A zero ttl uses DefaultReportTTL.
func New(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &Store{client: client, ttl: ttl}
}

// SaveReport caches the latest report as JSON under the report key.
func (s *Store) SaveReport(ctx context.Context, report *engine.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := s.client.Set(ctx, reportKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	logrus.Infof("cached report generated at %s (%d bytes, ttl %v)",
		report.GeneratedAt.Format(time.RFC3339), len(data), s.ttl)
	return nil
}

// LatestReport returns the cached report, or nil when none is cached.
func (s *Store) LatestReport(ctx context.Context) (*engine.Report, error) {
	data, err := s.client.Get(ctx, reportKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached report: %w", err)
	}

	var report engine.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}
	return &report, nil
}

// RFMSegments reads the externally computed segment map (normalized doc →
// segment name). Missing key yields an empty map, not an error: the
// engine runs fine without segments, loyalty cohorts just come up empty.
func (s *Store) RFMSegments(ctx context.Context) (map[string]string, error) {
	segments, err := s.client.HGetAll(ctx, segmentsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read RFM segments: %w", err)
	}
	return segments, nil
}

// WelcomeSet reads the documents the campaign subsystem has sent a
// welcome message to.
func (s *Store) WelcomeSet(ctx context.Context) (map[string]bool, error) {
	members, err := s.client.SMembers(ctx, welcomeKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read welcome set: %w", err)
	}

	welcome := make(map[string]bool, len(members))
	for _, doc := range members {
		welcome[doc] = true
	}
	return welcome, nil
}
