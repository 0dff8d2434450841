package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// ConnectRedis connects to Redis when REDIS_ADDR is configured.
// Without an address RDB stays nil and callers fall back to database-only behaviour.
func ConnectRedis(ctx context.Context, c *Config) error {
	if c.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, Redis-backed numbering disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis at %s: %w", c.RedisAddr, err)
	}

	RDB = client
	log.Printf("Connected to Redis at %s", c.RedisAddr)
	return nil
}

// GetRedis returns the Redis client, or nil when Redis is not configured
func GetRedis() *redis.Client {
	return RDB
}

// SetRedis replaces the Redis client (used by tests)
func SetRedis(client *redis.Client) {
	RDB = client
}
