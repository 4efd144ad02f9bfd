// Package asynq provides the background-job plumbing around the core:
// a client for enqueuing maintenance tasks, a server for processing them
// and a scheduler for the periodic expiration sweep.
package asynq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/kaelum/authcore/internal/infrastructure/jobs/tasks"
)

// Client wraps the asynq.Client for enqueuing maintenance tasks.
type Client struct {
	client *asynq.Client
	logger zerolog.Logger
}

// ClientConfig holds configuration for the Asynq client.
type ClientConfig struct {
	// RedisAddr is the Redis server address (host:port).
	RedisAddr string

	// RedisPassword is the Redis password (optional).
	RedisPassword string

	// RedisDB is the Redis database number.
	RedisDB int

	// Logger is the structured logger for client operations.
	Logger zerolog.Logger
}

// NewClient creates a new Asynq client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &Client{client: client, logger: cfg.Logger}, nil
}

// EnqueueCleanup enqueues one immediate expiration sweep.
func (c *Client) EnqueueCleanup(ctx context.Context) error {
	return c.enqueue(ctx, tasks.TypeCleanupExpired, tasks.CleanupPayload{EnqueuedAt: time.Now().UTC()})
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, payloadBytes, opts...))
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("task_type", taskType).
			Msg("failed to enqueue task")
		return fmt.Errorf("enqueue task %s: %w", taskType, err)
	}

	c.logger.Info().
		Str("task_id", info.ID).
		Str("task_type", taskType).
		Str("queue", info.Queue).
		Msg("task enqueued")
	return nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close asynq client: %w", err)
	}
	return nil
}
