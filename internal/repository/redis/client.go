package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client for live match state.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// DefaultStateTTL is how long planner state outlives the last turn that wrote it.
const DefaultStateTTL = 24 * time.Hour

// NewClient creates a Redis client from a connection URL.
func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb, ttl: DefaultStateTTL}, nil
}

// NewClientFromPool wraps an existing redis.Client for use in tests.
func NewClientFromPool(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, ttl: DefaultStateTTL}
}

// SetTTL changes the expiry applied on every state write. Zero disables expiry.
func (c *Client) SetTTL(ttl time.Duration) { c.ttl = ttl }

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
