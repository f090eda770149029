package middleware

import (
	"context"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

type timeoutMiddleware struct {
	next    ports.ProgressStore
	timeout time.Duration
}

// NewTimeoutMiddleware bounds every store call by d, on top of any deadline
// the caller's context already carries. A non-positive d disables it.
func NewTimeoutMiddleware(d time.Duration) Middleware {
	return func(next ports.ProgressStore) ports.ProgressStore {
		if d <= 0 {
			return next
		}
		return &timeoutMiddleware{next: next, timeout: d}
	}
}

func (m *timeoutMiddleware) Load(ctx context.Context, userID, scenarioID string) (*domain.Progress, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.Load(ctx, userID, scenarioID)
}

func (m *timeoutMiddleware) Save(ctx context.Context, p *domain.Progress) (*domain.Progress, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.Save(ctx, p)
}

func (m *timeoutMiddleware) Reset(ctx context.Context, userID, scenarioID, rootStepID string) (*domain.Progress, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.Reset(ctx, userID, scenarioID, rootStepID)
}

func (m *timeoutMiddleware) List(ctx context.Context, userID string) ([]*domain.Progress, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.List(ctx, userID)
}
