package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/google/uuid"
)

// Store implements ports.ProgressStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Progress
	mu   sync.RWMutex
	now  func() time.Time
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Progress),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Load retrieves a copy of the stored traversal.
func (s *Store) Load(_ context.Context, userID, scenarioID string) (*domain.Progress, error) {
	key := domain.ProgressKey(userID, scenarioID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[key]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindProgress, ID: key}
	}
	// Copy on read so callers can't mutate the stored record through the pointer.
	return p.Clone(), nil
}

// Save writes p if the stored version still matches.
func (s *Store) Save(_ context.Context, p *domain.Progress) (*domain.Progress, error) {
	key := p.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[key]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindProgress, ID: key}
	}
	if current.Version != p.Version {
		return nil, domain.ErrConflict
	}

	next := p.Clone()
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1
	next.UpdatedAt = s.now()
	s.data[key] = next
	return next.Clone(), nil
}

// Reset creates or overwrites the traversal at rootStepID.
func (s *Store) Reset(_ context.Context, userID, scenarioID, rootStepID string) (*domain.Progress, error) {
	key := domain.ProgressKey(userID, scenarioID)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.NewProgress(uuid.NewString(), userID, scenarioID, rootStepID)
	next.CreatedAt = now
	next.UpdatedAt = now
	next.Version = 1
	if current, ok := s.data[key]; ok {
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		next.Version = current.Version + 1
	}
	s.data[key] = next
	return next.Clone(), nil
}

// List returns every traversal of a user.
func (s *Store) List(_ context.Context, userID string) ([]*domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*domain.Progress, 0)
	for _, p := range s.data {
		if p.UserID == userID {
			list = append(list, p.Clone())
		}
	}
	return list, nil
}
