package ports

import (
	"context"

	"github.com/aretw0/gambit/pkg/domain"
)

// ProgressStore persists traversals, one per (user, scenario).
type ProgressStore interface {
	// Load retrieves the traversal of a user in a scenario.
	// Returns an error matching domain.ErrProgressNotFound if there is none.
	Load(ctx context.Context, userID, scenarioID string) (*domain.Progress, error)

	// Save writes p if the stored record still has version p.Version.
	// The stored copy, with Version incremented and UpdatedAt refreshed, is returned.
	// A stale version yields domain.ErrConflict and leaves the record untouched.
	Save(ctx context.Context, p *domain.Progress) (*domain.Progress, error)

	// Reset creates the traversal, or overwrites an existing one in place, so that
	// it sits at rootStepID with zero score and an empty transcript.
	// The record ID and CreatedAt survive an overwrite.
	Reset(ctx context.Context, userID, scenarioID, rootStepID string) (*domain.Progress, error)

	// List returns every traversal of a user.
	List(ctx context.Context, userID string) ([]*domain.Progress, error)
}
