package asynq

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/kaelum/authcore/internal/infrastructure/jobs/tasks"
)

const (
	defaultConcurrency     = 2
	defaultShutdownTimeout = 30 * time.Second
)

// Server wraps the asynq.Server processing maintenance tasks.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger zerolog.Logger
}

// ServerConfig holds configuration for the Asynq server.
type ServerConfig struct {
	// RedisAddr is the Redis server address (host:port).
	RedisAddr string

	// RedisPassword is the Redis password (optional).
	RedisPassword string

	// RedisDB is the Redis database number.
	RedisDB int

	// Concurrency is the maximum number of concurrently processed tasks.
	// Maintenance is cheap and serial; the default of 2 is plenty.
	Concurrency int

	// ShutdownTimeout bounds the wait for in-flight tasks on Shutdown.
	ShutdownTimeout time.Duration

	// Logger is the structured logger for server operations.
	Logger zerolog.Logger
}

// NewServer creates an Asynq server with the cleanup handler registered.
func NewServer(cfg ServerConfig, cleanup *tasks.CleanupHandler) (*Server, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency:     cfg.Concurrency,
			ShutdownTimeout: cfg.ShutdownTimeout,
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeCleanupExpired, cleanup)

	return &Server{server: server, mux: mux, logger: cfg.Logger}, nil
}

// Start begins processing tasks. Blocks until Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Msg("job server starting")
	if err := s.server.Run(s.mux); err != nil {
		return fmt.Errorf("run asynq server: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight tasks.
func (s *Server) Shutdown() {
	s.server.Shutdown()
	s.logger.Info().Msg("job server stopped")
}
