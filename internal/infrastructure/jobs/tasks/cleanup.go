// Package tasks defines the background task types and handlers driving the
// core's periodic maintenance.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	// TypeCleanupExpired is the task type for the expiration sweep.
	TypeCleanupExpired = "authz:cleanup_expired"

	// DefaultCleanupInterval is how often the sweep runs when scheduled
	// with the default cron spec.
	DefaultCleanupInterval = time.Hour
)

// CleanupPayload carries the sweep task's metadata.
type CleanupPayload struct {
	// EnqueuedAt is when the task was enqueued or scheduled.
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Sweeper is the slice of the application service the handler needs.
type Sweeper interface {
	CleanupExpired()
}

// CleanupHandler handles expiration-sweep tasks: it invokes the core's
// idempotent CleanupExpired.
type CleanupHandler struct {
	core   Sweeper
	logger zerolog.Logger
}

// NewCleanupHandler creates a cleanup task handler.
func NewCleanupHandler(core Sweeper, logger zerolog.Logger) *CleanupHandler {
	return &CleanupHandler{core: core, logger: logger}
}

// ProcessTask implements asynq.Handler.
func (h *CleanupHandler) ProcessTask(_ context.Context, t *asynq.Task) error {
	var payload CleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error().
			Err(err).
			Str("task_type", t.Type()).
			Msg("failed to unmarshal cleanup payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	start := time.Now()
	h.core.CleanupExpired()

	h.logger.Info().
		Dur("duration", time.Since(start)).
		Time("enqueued_at", payload.EnqueuedAt).
		Msg("expiration sweep completed")
	return nil
}
