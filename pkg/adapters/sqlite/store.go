// Package sqlite implements ports.ProgressStore on an embedded SQLite database.
// It is the default durable backend for single-node deployments and the CLI.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store implements ports.ProgressStore using SQLite.
// Conditional writes are expressed as UPDATE ... WHERE version = ?.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS progress (
		user_id            TEXT    NOT NULL,
		scenario_id        TEXT    NOT NULL,
		id                 TEXT    NOT NULL UNIQUE,
		current_step_id    TEXT,
		score              INTEGER NOT NULL DEFAULT 0,
		decisions          TEXT    NOT NULL DEFAULT '[]',
		completed          INTEGER NOT NULL DEFAULT 0,
		failed             INTEGER NOT NULL DEFAULT 0,
		bad_decision_count INTEGER NOT NULL DEFAULT 0,
		version            INTEGER NOT NULL,
		created_at         TEXT    NOT NULL,
		updated_at         TEXT    NOT NULL,
		PRIMARY KEY (user_id, scenario_id)
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}
	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	for i := version; i < len(migrations); i++ {
		if _, err := s.db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}
	return nil
}

const selectColumns = `id, user_id, scenario_id, current_step_id, score, decisions,
	completed, failed, bad_decision_count, version, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(row scanner) (*domain.Progress, error) {
	var (
		p                    domain.Progress
		current              sql.NullString
		decisions            string
		created, updated     string
		completed, failedInt int
	)
	err := row.Scan(&p.ID, &p.UserID, &p.ScenarioID, &current, &p.Score, &decisions,
		&completed, &failedInt, &p.BadDecisionCount, &p.Version, &created, &updated)
	if err != nil {
		return nil, err
	}
	if current.Valid {
		p.CurrentStepID = &current.String
	}
	p.Completed = completed != 0
	p.Failed = failedInt != 0
	if err := json.Unmarshal([]byte(decisions), &p.Decisions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decisions: %w", err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}
	return &p, nil
}

// Load retrieves a traversal.
func (s *Store) Load(ctx context.Context, userID, scenarioID string) (*domain.Progress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM progress WHERE user_id = ? AND scenario_id = ?`,
		userID, scenarioID)
	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindProgress, ID: domain.ProgressKey(userID, scenarioID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return p, nil
}

// Save writes p if the stored version still matches. The written row is
// returned by the same statement.
func (s *Store) Save(ctx context.Context, p *domain.Progress) (*domain.Progress, error) {
	decisions, err := json.Marshal(p.Decisions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decisions: %w", err)
	}
	now := time.Now().UTC()

	row := s.db.QueryRowContext(ctx, `
		UPDATE progress SET
			current_step_id = ?, score = ?, decisions = ?, completed = ?, failed = ?,
			bad_decision_count = ?, version = version + 1, updated_at = ?
		WHERE user_id = ? AND scenario_id = ? AND version = ?
		RETURNING `+selectColumns,
		nullable(p.CurrentStepID), p.Score, string(decisions), p.Completed, p.Failed,
		p.BadDecisionCount, now.Format(time.RFC3339Nano),
		p.UserID, p.ScenarioID, p.Version)
	saved, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the record is gone or someone else moved the version.
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
	now := time.Now().UTC().Format(time.RFC3339Nano)
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO progress (id, user_id, scenario_id, current_step_id, score, decisions,
			completed, failed, bad_decision_count, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, '[]', 0, 0, 0, 1, ?, ?)
		ON CONFLICT (user_id, scenario_id) DO UPDATE SET
			current_step_id = excluded.current_step_id,
			score = 0, decisions = '[]', completed = 0, failed = 0, bad_decision_count = 0,
			version = progress.version + 1,
			updated_at = excluded.updated_at
		RETURNING `+selectColumns,
		uuid.NewString(), userID, scenarioID, rootStepID, now, now)
	p, err := scanProgress(row)
	if err != nil {
		return nil, fmt.Errorf("failed to reset progress: %w", err)
	}
	return p, nil
}

// List returns every traversal of a user.
func (s *Store) List(ctx context.Context, userID string) ([]*domain.Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM progress WHERE user_id = ? ORDER BY updated_at DESC`, userID)
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

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
