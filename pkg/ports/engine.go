package ports

import (
	"context"

	"github.com/aretw0/gambit/pkg/domain"
)

// Engine is the driving port used by the transport adapters (HTTP, MCP, CLI).
type Engine interface {
	ListScenarios(ctx context.Context, filter domain.ScenarioFilter) ([]domain.Scenario, error)
	Scenario(ctx context.Context, scenarioID string) (*domain.Scenario, error)

	Start(ctx context.Context, userID, scenarioID string) (*domain.StartResult, error)
	GetStep(ctx context.Context, userID, scenarioID, stepID string) (*domain.StepResult, error)
	SubmitAnswer(ctx context.Context, userID, scenarioID, stepID, optionID string) (*domain.AnswerResult, error)

	Progress(ctx context.Context, userID, scenarioID string) (*domain.ProgressView, error)
	Summary(ctx context.Context, userID, scenarioID string) (*domain.Summary, error)
	Analyze(ctx context.Context, userID, scenarioID string) (*domain.Analysis, error)
}
