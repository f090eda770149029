package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
)

// ErrNarratorDisabled is wrapped in the AnalysisError returned by Analyze when no narrator is configured.
var ErrNarratorDisabled = errors.New("no narrator configured")

// Summary returns the report of a finished traversal.
func (e *Engine) Summary(ctx context.Context, userID, scenarioID string) (*domain.Summary, error) {
	p, err := e.loadFinished(ctx, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	s := GenerateSummary(p)
	return &s, nil
}

// GetSummaryForAnalysis assembles the narrator input for a finished traversal.
func (e *Engine) GetSummaryForAnalysis(ctx context.Context, userID, scenarioID string) (*domain.AnalysisInput, error) {
	p, err := e.loadFinished(ctx, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	scenario, err := e.catalog.Scenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	return &domain.AnalysisInput{
		Scenario:  *scenario,
		Summary:   GenerateSummary(p),
		Decisions: EnrichForAnalysis(ctx, e.catalog, p, e.logger),
	}, nil
}

// Analyze produces the narrative review of a finished traversal.
// Narrator failures, including incomplete narratives, are returned as
// *domain.AnalysisError carrying the summary.
func (e *Engine) Analyze(ctx context.Context, userID, scenarioID string) (*domain.Analysis, error) {
	input, err := e.GetSummaryForAnalysis(ctx, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	if e.narrator == nil {
		return nil, &domain.AnalysisError{Summary: &input.Summary, Err: ErrNarratorDisabled}
	}

	started := time.Now()
	narrative, err := e.narrator.Narrate(ctx, *input)
	if err == nil {
		err = narrative.Validate()
	}
	if e.hooks.OnAnalysis != nil {
		e.hooks.OnAnalysis(ctx, &domain.AnalysisEvent{
			EventBase: e.event(domain.EventAnalysis, userID, scenarioID),
			Duration:  time.Since(started),
			Err:       err,
		})
	}
	if err != nil {
		e.logger.Error("narrative generation failed", "user_id", userID, "scenario_id", scenarioID, "err", err)
		return nil, &domain.AnalysisError{Summary: &input.Summary, Err: err}
	}

	return &domain.Analysis{
		Narrative: narrative,
		Metadata: domain.AnalysisMetadata{
			ScenarioTitle:      input.Scenario.Title,
			ScenarioRole:       input.Scenario.Role,
			ScenarioDifficulty: input.Scenario.Difficulty,
			Completed:          input.Summary.Completed,
			Failed:             input.Summary.Failed,
			FinalScore:         input.Summary.TotalScore,
			TotalDecisions:     input.Summary.TotalDecisions,
			BadDecisions:       input.Summary.BadDecisionCount,
		},
	}, nil
}

func (e *Engine) loadFinished(ctx context.Context, userID, scenarioID string) (*domain.Progress, error) {
	p, err := e.sessions.Load(ctx, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	if !p.Terminal() {
		return nil, domain.ErrNotFinished
	}
	return p, nil
}
