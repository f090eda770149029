package runtime

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

// GenerateSummary derives the report of a traversal. It is pure.
func GenerateSummary(p *domain.Progress) domain.Summary {
	s := domain.Summary{
		TotalScore:       p.Score,
		TotalDecisions:   len(p.Decisions),
		Completed:        p.Completed,
		Failed:           p.Failed,
		BadDecisionCount: p.BadDecisionCount,
		Performance:      domain.Rate(p.Score),
		Decisions:        make([]domain.AnnotatedDecision, 0, len(p.Decisions)),
	}
	for _, d := range p.Decisions {
		q := domain.Evaluate(d.XPChange)
		switch q {
		case domain.QualityGood:
			s.GoodDecisions++
		case domain.QualityRisky:
			s.RiskyDecisions++
		case domain.QualityBad:
			s.BadDecisions++
		}
		s.Decisions = append(s.Decisions, domain.AnnotatedDecision{Decision: d, Quality: q})
	}
	return s
}

// EnrichForAnalysis annotates each decision with the step context and option
// text the player saw. Steps or options that no longer resolve get placeholder
// text instead of failing the whole transcript. Lookup errors other than
// not-found are logged and treated the same way.
func EnrichForAnalysis(ctx context.Context, catalog ports.ScenarioCatalog, p *domain.Progress, logger *slog.Logger) []domain.EnrichedDecision {
	if logger == nil {
		logger = logging.NewNop()
	}
	cache := make(map[string]*domain.Step)
	out := make([]domain.EnrichedDecision, 0, len(p.Decisions))

	for _, d := range p.Decisions {
		step, seen := cache[d.StepID]
		if !seen {
			var err error
			step, err = catalog.Step(ctx, d.StepID, p.ScenarioID)
			if err != nil {
				step = nil
				if !errors.Is(err, domain.ErrNotFound) {
					logger.Warn("step lookup failed, using placeholder",
						"scenario_id", p.ScenarioID, "step_id", d.StepID, "err", err)
				}
			}
			cache[d.StepID] = step
		}

		ed := domain.EnrichedDecision{
			Decision:    d,
			StepContext: domain.ContextUnavailable,
			OptionText:  domain.OptionUnavailable,
		}
		if step != nil {
			ed.StepContext = step.Context
			if o, ok := step.Option(d.OptionID); ok {
				ed.OptionText = o.Text
			}
		}
		out = append(out, ed)
	}
	return out
}
