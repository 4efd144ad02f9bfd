package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/kaelum/authcore/internal/application/authz"
	"github.com/kaelum/authcore/internal/domain/shared"
)

// SnapshotStore persists core snapshots as versioned JSONB rows. Versions
// increase monotonically; Load always returns the newest row.
type SnapshotStore struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// NewSnapshotStore creates a SnapshotStore over an open connection pool.
func NewSnapshotStore(db *sqlx.DB, logger zerolog.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger}
}

// Save writes the state as the next snapshot version and returns it.
func (s *SnapshotStore) Save(ctx context.Context, state *authz.State) (int64, error) {
	if state == nil {
		return 0, fmt.Errorf("%w: state is nil", shared.ErrInvalidInput)
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}

	const query = `
		INSERT INTO authcore_snapshots (version, payload)
		VALUES ((SELECT COALESCE(MAX(version), 0) + 1 FROM authcore_snapshots), $1)
		RETURNING version`

	var version int64
	if err := s.db.QueryRowxContext(ctx, query, payload).Scan(&version); err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}

	s.logger.Info().
		Int64("version", version).
		Int("payload_bytes", len(payload)).
		Msg("snapshot saved")
	return version, nil
}

// Load reads the newest snapshot. Returns shared.ErrNotFound when no
// snapshot has been saved yet.
func (s *SnapshotStore) Load(ctx context.Context) (*authz.State, int64, error) {
	const query = `
		SELECT version, payload
		FROM authcore_snapshots
		ORDER BY version DESC
		LIMIT 1`

	var row struct {
		Version int64  `db:"version"`
		Payload []byte `db:"payload"`
	}
	if err := s.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, fmt.Errorf("load snapshot: %w", shared.ErrNotFound)
		}
		return nil, 0, fmt.Errorf("load snapshot: %w", err)
	}

	var state authz.State
	if err := json.Unmarshal(row.Payload, &state); err != nil {
		return nil, 0, fmt.Errorf("unmarshal snapshot %d: %w", row.Version, err)
	}

	return &state, row.Version, nil
}

// Prune deletes all but the newest keep snapshots.
func (s *SnapshotStore) Prune(ctx context.Context, keep int) error {
	if keep < 1 {
		return fmt.Errorf("%w: keep must be >= 1", shared.ErrInvalidInput)
	}

	const query = `
		DELETE FROM authcore_snapshots
		WHERE version <= (SELECT COALESCE(MAX(version), 0) FROM authcore_snapshots) - $1`

	result, err := s.db.ExecContext(ctx, query, keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("old snapshots pruned")
	}
	return nil
}
