package asynq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/kaelum/authcore/internal/infrastructure/jobs/tasks"
)

// defaultCleanupSpec runs the sweep at minute 17 of every hour.
const defaultCleanupSpec = "17 * * * *"

// Scheduler registers the periodic expiration sweep with asynq's
// cron-style scheduler. It is the external periodic driver the core
// expects for CleanupExpired.
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    zerolog.Logger
}

// SchedulerConfig holds configuration for the Scheduler.
type SchedulerConfig struct {
	// RedisAddr is the Redis server address (host:port).
	RedisAddr string

	// RedisPassword is the Redis password (optional).
	RedisPassword string

	// RedisDB is the Redis database number.
	RedisDB int

	// CleanupSpec is the cron spec for the sweep. Optional; defaults to
	// hourly.
	CleanupSpec string

	// Logger is the structured logger for scheduler operations.
	Logger zerolog.Logger
}

// NewScheduler creates a Scheduler with the cleanup task registered.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	spec := cfg.CleanupSpec
	if spec == "" {
		spec = defaultCleanupSpec
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		&asynq.SchedulerOpts{Location: time.UTC},
	)

	payload, err := json.Marshal(tasks.CleanupPayload{EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshal cleanup payload: %w", err)
	}

	entryID, err := scheduler.Register(spec, asynq.NewTask(tasks.TypeCleanupExpired, payload))
	if err != nil {
		return nil, fmt.Errorf("register cleanup task: %w", err)
	}

	cfg.Logger.Info().
		Str("entry_id", entryID).
		Str("spec", spec).
		Msg("cleanup sweep scheduled")

	return &Scheduler{scheduler: scheduler, logger: cfg.Logger}, nil
}

// Start begins dispatching scheduled tasks. Blocks until Shutdown.
func (s *Scheduler) Start() error {
	if err := s.scheduler.Run(); err != nil {
		return fmt.Errorf("run asynq scheduler: %w", err)
	}
	return nil
}

// Shutdown stops the scheduler.
func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
	s.logger.Info().Msg("scheduler stopped")
}
