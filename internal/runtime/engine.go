package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/aretw0/gambit/pkg/session"
)

// Engine drives traversals of the scenario catalog.
// It is stateless between calls; all traversal state lives in the progress store.
type Engine struct {
	catalog  ports.ScenarioCatalog
	sessions *session.Manager
	narrator ports.Narrator
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.Engine = (*Engine)(nil)

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithNarrator enables Analyze.
func WithNarrator(n ports.Narrator) EngineOption {
	return func(e *Engine) {
		e.narrator = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source used for decision timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine with dependencies.
func NewEngine(catalog ports.ScenarioCatalog, sessions *session.Manager, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:  catalog,
		sessions: sessions,
		logger:   logging.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins, or restarts from scratch, the traversal of a scenario.
// Any existing record for the pair is reset in place regardless of its phase.
func (e *Engine) Start(ctx context.Context, userID, scenarioID string) (*domain.StartResult, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	if _, err := e.catalog.Scenario(ctx, scenarioID); err != nil {
		return nil, err
	}
	root, err := e.catalog.RootStep(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	p, err := e.sessions.Reset(ctx, userID, scenarioID, root.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reset progress: %w", err)
	}

	e.logger.Info("scenario started", "user_id", userID, "scenario_id", scenarioID, "step_id", root.ID)
	if e.hooks.OnStart != nil {
		e.hooks.OnStart(ctx, &domain.StartEvent{
			EventBase:  e.event(domain.EventStart, userID, scenarioID),
			RootStepID: root.ID,
		})
	}

	return &domain.StartResult{Step: root.View(), Progress: p}, nil
}

// GetStep returns the current step of an active traversal.
// Only the step the traversal is positioned at can be fetched.
func (e *Engine) GetStep(ctx context.Context, userID, scenarioID, stepID string) (*domain.StepResult, error) {
	p, err := e.loadActive(ctx, userID, scenarioID, stepID)
	if err != nil {
		return nil, err
	}
	step, err := e.catalog.Step(ctx, stepID, scenarioID)
	if err != nil {
		return nil, err
	}
	return &domain.StepResult{
		Step:             step.View(),
		Score:            p.Score,
		BadDecisionCount: p.BadDecisionCount,
	}, nil
}

// SubmitAnswer records the choice of optionID at stepID.
//
// The whole read-modify-write runs under the traversal lock and is persisted
// with a version check, so of two concurrent submissions for the same step
// exactly one is recorded and the other fails with domain.ErrNotCurrentStep.
// Every failure leaves the stored record untouched.
func (e *Engine) SubmitAnswer(ctx context.Context, userID, scenarioID, stepID, optionID string) (*domain.AnswerResult, error) {
	if err := requireID("option_id", optionID); err != nil {
		return nil, err
	}

	var result *domain.AnswerResult
	err := e.sessions.WithLock(ctx, domain.ProgressKey(userID, scenarioID), func(ctx context.Context) error {
		var err error
		result, err = e.submit(ctx, userID, scenarioID, stepID, optionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) submit(ctx context.Context, userID, scenarioID, stepID, optionID string) (*domain.AnswerResult, error) {
	p, err := e.loadActive(ctx, userID, scenarioID, stepID)
	if err != nil {
		return nil, err
	}
	step, err := e.catalog.Step(ctx, stepID, scenarioID)
	if err != nil {
		return nil, err
	}
	option, ok := step.Option(optionID)
	if !ok {
		return nil, &domain.InputError{Field: "option_id", Value: optionID, Reason: "not an option of step " + stepID}
	}

	next := p.Clone()
	outcome := next.Record(option, e.now())

	var nextStep *domain.Step
	if outcome == domain.OutcomeAdvanced {
		nextStep, err = e.catalog.Step(ctx, *option.NextStepID, scenarioID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.IntegrityError{
				ScenarioID: scenarioID,
				StepID:     stepID,
				OptionID:   optionID,
				Detail:     fmt.Sprintf("next step %q does not exist", *option.NextStepID),
			}
		}
		if err != nil {
			return nil, err
		}
	}

	saved, err := e.sessions.Store().Save(ctx, next)
	if errors.Is(err, domain.ErrConflict) {
		e.logger.Warn("submission lost a concurrent update", "user_id", userID, "scenario_id", scenarioID, "step_id", stepID)
		if e.hooks.OnConflict != nil {
			e.hooks.OnConflict(ctx, &domain.ConflictEvent{
				EventBase: e.event(domain.EventConflict, userID, scenarioID),
				StepID:    stepID,
			})
		}
		return nil, domain.ErrNotCurrentStep
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	quality := domain.Evaluate(option.XPChange)
	e.logger.Debug("decision recorded",
		"user_id", userID,
		"scenario_id", scenarioID,
		"step_id", stepID,
		"option_id", optionID,
		"xp_change", option.XPChange,
		"quality", quality,
	)
	if e.hooks.OnDecision != nil {
		e.hooks.OnDecision(ctx, &domain.DecisionEvent{
			EventBase: e.event(domain.EventDecision, userID, scenarioID),
			StepID:    stepID,
			OptionID:  optionID,
			XPChange:  option.XPChange,
			Quality:   quality,
		})
	}

	result := &domain.AnswerResult{
		Outcome:          outcome,
		XPChange:         option.XPChange,
		Quality:          quality,
		Score:            saved.Score,
		BadDecisionCount: saved.BadDecisionCount,
	}
	switch outcome {
	case domain.OutcomeAdvanced:
		view := nextStep.View()
		result.NextStep = &view
	case domain.OutcomeCompleted, domain.OutcomeFailed:
		summary := GenerateSummary(saved)
		result.Summary = &summary
		result.Reason = domain.ReasonCompleted
		if outcome == domain.OutcomeFailed {
			result.Reason = domain.ReasonFailed
		}
		e.logger.Info("scenario finished",
			"user_id", userID,
			"scenario_id", scenarioID,
			"outcome", outcome,
			"score", saved.Score,
		)
		if e.hooks.OnOutcome != nil {
			e.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
				EventBase:   e.event(domain.EventOutcome, userID, scenarioID),
				Outcome:     outcome,
				Score:       saved.Score,
				Performance: summary.Performance,
			})
		}
	}
	return result, nil
}

// Progress reports the phase of a user's traversal. A missing record is
// reported as not started rather than as an error.
func (e *Engine) Progress(ctx context.Context, userID, scenarioID string) (*domain.ProgressView, error) {
	scenario, err := e.catalog.Scenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	p, err := e.sessions.Load(ctx, userID, scenarioID)
	if errors.Is(err, domain.ErrProgressNotFound) {
		return &domain.ProgressView{
			ScenarioID: scenarioID,
			Scenario:   *scenario,
			Phase:      domain.PhaseNotStarted,
			Decisions:  []domain.Decision{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.ProgressView{
		ScenarioID:       scenarioID,
		Scenario:         *scenario,
		Phase:            p.Phase(),
		CurrentStepID:    p.CurrentStepID,
		Score:            p.Score,
		BadDecisionCount: p.BadDecisionCount,
		Decisions:        p.Decisions,
	}, nil
}

// History returns every traversal of a user.
func (e *Engine) History(ctx context.Context, userID string) ([]*domain.Progress, error) {
	return e.sessions.List(ctx, userID)
}

// ListScenarios returns the scenarios matching filter, newest first.
func (e *Engine) ListScenarios(ctx context.Context, filter domain.ScenarioFilter) ([]domain.Scenario, error) {
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, &domain.InputError{Field: "difficulty", Value: string(filter.Difficulty), Reason: "must be easy, medium or hard"}
	}
	all, err := e.catalog.ListScenarios(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Scenario, 0, len(all))
	for _, s := range all {
		if filter.Match(s) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// Scenario returns scenario metadata.
func (e *Engine) Scenario(ctx context.Context, scenarioID string) (*domain.Scenario, error) {
	return e.catalog.Scenario(ctx, scenarioID)
}

// Steps returns the whole step graph of a scenario.
func (e *Engine) Steps(ctx context.Context, scenarioID string) ([]domain.Step, error) {
	return e.catalog.ListSteps(ctx, scenarioID)
}

// loadActive loads a traversal and checks it is in progress at stepID.
func (e *Engine) loadActive(ctx context.Context, userID, scenarioID, stepID string) (*domain.Progress, error) {
	if err := requireID("step_id", stepID); err != nil {
		return nil, err
	}
	p, err := e.sessions.Load(ctx, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	if p.Terminal() {
		return nil, domain.ErrAlreadyFinished
	}
	if !p.AtStep(stepID) {
		return nil, domain.ErrNotCurrentStep
	}
	return p, nil
}

func (e *Engine) event(t domain.EventType, userID, scenarioID string) domain.EventBase {
	return domain.EventBase{
		Timestamp:  e.now(),
		Type:       t,
		UserID:     userID,
		ScenarioID: scenarioID,
	}
}

func requireID(field, value string) error {
	if value == "" {
		return &domain.InputError{Field: field, Reason: "must not be empty"}
	}
	return nil
}
