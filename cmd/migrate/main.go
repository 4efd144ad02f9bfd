// Package main provides the snapshot-store migration CLI.
// It applies the embedded goose migrations to the configured PostgreSQL
// database.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/kaelum/authcore/internal/infrastructure/persistence/postgres"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := postgres.DefaultConfig()
	flag.StringVar(&cfg.Host, "host", cfg.Host, "database host")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "database port")
	flag.StringVar(&cfg.User, "user", cfg.User, "database user")
	flag.StringVar(&cfg.Password, "password", cfg.Password, "database password")
	flag.StringVar(&cfg.Database, "database", cfg.Database, "database name")
	flag.StringVar(&cfg.SSLMode, "sslmode", cfg.SSLMode, "libpq sslmode")
	flag.Parse()

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect")
	}
	defer func() { _ = db.Close() }()

	if err := postgres.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	logger.Info().Str("database", cfg.Database).Msg("migrations applied")
}
