package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kendall-kelly/printshop-api/workflow"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sequenceKeyTTL = 48 * time.Hour

// RedisSequencer hands out numbers from an atomic per-day counter.
// The first use of a day key seeds it from the highest number already stored.
type RedisSequencer struct {
	client *redis.Client
}

// NewRedisSequencer creates a sequencer backed by client
func NewRedisSequencer(client *redis.Client) *RedisSequencer {
	return &RedisSequencer{client: client}
}

func sequenceKey(prefix string, day time.Time) string {
	return fmt.Sprintf("printshop:seq:%s:%s", prefix, workflow.DayStamp(day))
}

// Next returns the next number for prefix on day
func (s *RedisSequencer) Next(ctx context.Context, tx *gorm.DB, prefix string, day time.Time) (string, error) {
	key := sequenceKey(prefix, day)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to check sequence %s: %w", key, err)
	}
	if exists == 0 {
		next, err := nextFromDB(ctx, tx, prefix, day)
		if err != nil {
			return "", err
		}
		// SETNX: a concurrent seeder may have won; its value is equally valid.
		if err := s.client.SetNX(ctx, key, next-1, sequenceKeyTTL).Err(); err != nil {
			return "", fmt.Errorf("failed to seed sequence %s: %w", key, err)
		}
	}

	seq, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to increment sequence %s: %w", key, err)
	}
	return workflow.FormatNumber(prefix, day, int(seq)), nil
}
