package ports

import (
	"context"

	"github.com/aretw0/gambit/pkg/domain"
)

// Narrator turns a finished traversal into a written review.
// Implementations must return all five narrative fields or an error.
type Narrator interface {
	Narrate(ctx context.Context, input domain.AnalysisInput) (*domain.Narrative, error)
}
