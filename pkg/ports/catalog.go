package ports

import (
	"context"

	"github.com/aretw0/gambit/pkg/domain"
)

// ScenarioCatalog is the read-only source of scenarios and steps.
// Missing entities are reported with *domain.NotFoundError.
type ScenarioCatalog interface {
	// Scenario returns the scenario metadata.
	Scenario(ctx context.Context, id string) (*domain.Scenario, error)

	// RootStep returns the unique root step of a scenario.
	// A scenario with several roots is reported as a *domain.IntegrityError.
	RootStep(ctx context.Context, scenarioID string) (*domain.Step, error)

	// Step returns a step, provided it belongs to scenarioID.
	Step(ctx context.Context, stepID, scenarioID string) (*domain.Step, error)

	// ListScenarios returns every scenario, newest first.
	ListScenarios(ctx context.Context) ([]domain.Scenario, error)

	// ListSteps returns every step of a scenario. It is used by validation and graph export.
	ListSteps(ctx context.Context, scenarioID string) ([]domain.Step, error)
}
