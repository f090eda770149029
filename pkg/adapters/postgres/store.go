// Package postgres implements ports.ProgressStore on PostgreSQL via pgx.
// It is meant for multi-replica deployments where the progress table is shared.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used by the store, satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements ports.ProgressStore using PostgreSQL.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool
}

// Schema creates the progress table. Migrate applies it.
const Schema = `
CREATE TABLE IF NOT EXISTS progress (
	user_id            TEXT        NOT NULL,
	scenario_id        TEXT        NOT NULL,
	id                 UUID        NOT NULL UNIQUE,
	current_step_id    TEXT,
	score              INTEGER     NOT NULL DEFAULT 0,
	decisions          JSONB       NOT NULL DEFAULT '[]'::jsonb,
	completed          BOOLEAN     NOT NULL DEFAULT FALSE,
	failed             BOOLEAN     NOT NULL DEFAULT FALSE,
	bad_decision_count INTEGER     NOT NULL DEFAULT 0,
	version            BIGINT      NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, scenario_id),
	CHECK (NOT (completed AND failed))
)`

// Connect opens a pool for dsn and migrates the schema.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	s := &Store{db: pool, pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection. The caller owns its lifecycle.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Migrate creates the schema if missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate progress table: %w", err)
	}
	return nil
}

const returning = `RETURNING id, user_id, scenario_id, current_step_id, score, decisions,
	completed, failed, bad_decision_count, version, created_at, updated_at`

func scanProgress(row pgx.Row) (*domain.Progress, error) {
	var (
		p         domain.Progress
		decisions []byte
	)
	err := row.Scan(&p.ID, &p.UserID, &p.ScenarioID, &p.CurrentStepID, &p.Score, &decisions,
		&p.Completed, &p.Failed, &p.BadDecisionCount, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(decisions, &p.Decisions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decisions: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// Load retrieves a traversal.
func (s *Store) Load(ctx context.Context, userID, scenarioID string) (*domain.Progress, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, scenario_id, current_step_id, score, decisions,
			completed, failed, bad_decision_count, version, created_at, updated_at
		FROM progress WHERE user_id = $1 AND scenario_id = $2`, userID, scenarioID)
	p, err := scanProgress(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindProgress, ID: domain.ProgressKey(userID, scenarioID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return p, nil
}

// Save writes p if the stored version still matches.
func (s *Store) Save(ctx context.Context, p *domain.Progress) (*domain.Progress, error) {
	decisions, err := json.Marshal(p.Decisions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decisions: %w", err)
	}

	row := s.db.QueryRow(ctx, `
		UPDATE progress SET
			current_step_id = $1, score = $2, decisions = $3, completed = $4, failed = $5,
			bad_decision_count = $6, version = version + 1, updated_at = NOW()
		WHERE user_id = $7 AND scenario_id = $8 AND version = $9
		`+returning,
		p.CurrentStepID, p.Score, decisions, p.Completed, p.Failed,
		p.BadDecisionCount, p.UserID, p.ScenarioID, p.Version)
	saved, err := scanProgress(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := s.Load(ctx, p.UserID, p.ScenarioID); err != nil {
			return nil, err
		}
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return saved, nil
}

// Reset creates or overwrites the traversal at rootStepID.
func (s *Store) Reset(ctx context.Context, userID, scenarioID, rootStepID string) (*domain.Progress, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO progress (id, user_id, scenario_id, current_step_id, version)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (user_id, scenario_id) DO UPDATE SET
			current_step_id = EXCLUDED.current_step_id,
			score = 0, decisions = '[]'::jsonb, completed = FALSE, failed = FALSE,
			bad_decision_count = 0, version = progress.version + 1, updated_at = NOW()
		`+returning,
		uuid.NewString(), userID, scenarioID, rootStepID)
	p, err := scanProgress(row)
	if err != nil {
		return nil, fmt.Errorf("failed to reset progress: %w", err)
	}
	return p, nil
}

// List returns every traversal of a user.
func (s *Store) List(ctx context.Context, userID string) ([]*domain.Progress, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, scenario_id, current_step_id, score, decisions,
			completed, failed, bad_decision_count, version, created_at, updated_at
		FROM progress WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.Progress, 0)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Close releases the pool if the store opened it.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
