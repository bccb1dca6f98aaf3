package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/entraide/vtn-api/pkg/errors"
)

// CacheRepository wraps Redis for caching timetable reads. A nil client
// disables caching entirely, which keeps the engine usable without Redis.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{client: client, logger: logger}
}

// TimetableKey builds the cache key for a trainer or group timetable window.
func TimetableKey(kind, subjectID string, from, to time.Time) string {
	return fmt.Sprintf("timetable:%s:%s:%s:%s", kind, subjectID, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// SummaryKey builds the cache key for a weekly summary.
func SummaryKey(academicYear string, weekStart time.Time) string {
	return fmt.Sprintf("summary:%s:%s", academicYear, weekStart.Format("2006-01-02"))
}

// Get retrieves and unmarshals the cached value into the provided destination.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}

	return nil
}

// Set marshals the provided value and stores it with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// InvalidateTimetables drops all cached timetable and summary entries. Writes
// in the scheduling engine call this rather than tracking precise keys.
func (r *CacheRepository) InvalidateTimetables(ctx context.Context) {
	for _, pattern := range []string{"timetable:*", "summary:*"} {
		if err := r.deleteByPattern(ctx, pattern); err != nil && r.logger != nil {
			r.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}

func (r *CacheRepository) deleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", iter.Val(), err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	return nil
}
