package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/gambit/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(ctx context.Context, e *domain.StartEvent) {
			logger.InfoContext(ctx, "scenario started",
				"user_id", e.UserID, "scenario_id", e.ScenarioID, "root", e.RootStepID)
		},
		OnDecision: func(ctx context.Context, e *domain.DecisionEvent) {
			logger.InfoContext(ctx, "decision recorded",
				"user_id", e.UserID, "scenario_id", e.ScenarioID,
				"step_id", e.StepID, "option_id", e.OptionID,
				"xp_change", e.XPChange, "quality", e.Quality)
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			logger.InfoContext(ctx, "scenario ended",
				"user_id", e.UserID, "scenario_id", e.ScenarioID,
				"outcome", e.Outcome, "score", e.Score, "performance", e.Performance)
		},
		OnConflict: func(ctx context.Context, e *domain.ConflictEvent) {
			logger.WarnContext(ctx, "submission lost a concurrent update",
				"user_id", e.UserID, "scenario_id", e.ScenarioID, "step_id", e.StepID)
		},
		OnAnalysis: func(ctx context.Context, e *domain.AnalysisEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "analysis failed",
					"user_id", e.UserID, "scenario_id", e.ScenarioID, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "analysis generated",
				"user_id", e.UserID, "scenario_id", e.ScenarioID, "duration", e.Duration)
		},
	}
}
