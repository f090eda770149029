package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

type pseudonymMiddleware struct {
	next   ports.ProgressStore
	secret []byte
}

// NewPseudonymMiddleware creates a middleware that stores an HMAC-SHA256 of the
// user ID instead of the ID itself. Records handed back to the caller carry the
// original ID again, so the engine never sees the pseudonym.
//
// The secret must stay stable: rotating it orphans every stored record.
func NewPseudonymMiddleware(secret []byte) Middleware {
	if len(secret) == 0 {
		panic("pseudonym secret must not be empty")
	}
	return func(next ports.ProgressStore) ports.ProgressStore {
		return &pseudonymMiddleware{next: next, secret: secret}
	}
}

// Pseudonym returns the stored form of userID.
func (m *pseudonymMiddleware) pseudonym(userID string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(userID))
	return "u_" + hex.EncodeToString(mac.Sum(nil))
}

func (m *pseudonymMiddleware) Load(ctx context.Context, userID, scenarioID string) (*domain.Progress, error) {
	p, err := m.next.Load(ctx, m.pseudonym(userID), scenarioID)
	return restore(p, userID), err
}

func (m *pseudonymMiddleware) Save(ctx context.Context, p *domain.Progress) (*domain.Progress, error) {
	// Clone so the caller's record keeps its real user ID.
	masked := p.Clone()
	masked.UserID = m.pseudonym(p.UserID)

	saved, err := m.next.Save(ctx, masked)
	return restore(saved, p.UserID), err
}

func (m *pseudonymMiddleware) Reset(ctx context.Context, userID, scenarioID, rootStepID string) (*domain.Progress, error) {
	p, err := m.next.Reset(ctx, m.pseudonym(userID), scenarioID, rootStepID)
	return restore(p, userID), err
}

func (m *pseudonymMiddleware) List(ctx context.Context, userID string) ([]*domain.Progress, error) {
	list, err := m.next.List(ctx, m.pseudonym(userID))
	for _, p := range list {
		restore(p, userID)
	}
	return list, err
}

func restore(p *domain.Progress, userID string) *domain.Progress {
	if p != nil {
		p.UserID = userID
	}
	return p
}
