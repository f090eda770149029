package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/gambit/internal/runtime"
	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_StartThenGetStep(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, nil)

	start, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)
	assert.Equal(t, "root", start.Step.StepID)
	assert.False(t, start.Step.IsFinal)
	assert.Len(t, start.Step.Options, 3)
	assert.Equal(t, domain.PhaseInProgress, start.Progress.Phase())

	step, err := engine.GetStep(ctx, "u1", "incident", start.Step.StepID)
	require.NoError(t, err)
	assert.Equal(t, "root", step.Step.StepID)
	assert.Equal(t, "Something is on fire.", step.Step.Context)
	assert.Zero(t, step.Score)
}

func TestEngine_StartUnknownScenario(t *testing.T) {
	engine := newEngine(t, nil)
	_, err := engine.Start(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_GetStepValidation(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, nil)

	_, err := engine.GetStep(ctx, "u1", "incident", "root")
	assert.ErrorIs(t, err, domain.ErrNotFound, "not started")

	_, err = engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)

	_, err = engine.GetStep(ctx, "u1", "incident", "stepB")
	assert.ErrorIs(t, err, domain.ErrNotCurrentStep, "skipping ahead")

	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "B")
	require.NoError(t, err)

	_, err = engine.GetStep(ctx, "u1", "incident", "root")
	assert.ErrorIs(t, err, domain.ErrAlreadyFinished)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestEngine_AdvanceWithGoodOption(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, nil)
	_, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)

	res, err := engine.SubmitAnswer(ctx, "u1", "incident", "root", "A")
	require.NoError(t, err)
	assert.False(t, res.Terminal())
	assert.Equal(t, domain.OutcomeAdvanced, res.Outcome)
	assert.Equal(t, domain.QualityGood, res.Quality)
	assert.Equal(t, 20, res.XPChange)
	assert.Equal(t, 20, res.Score)
	require.NotNil(t, res.NextStep)
	assert.Equal(t, "stepB", res.NextStep.StepID)
	assert.True(t, res.NextStep.IsFinal)
	assert.Nil(t, res.Summary)

	step, err := engine.GetStep(ctx, "u1", "incident", "stepB")
	require.NoError(t, err)
	assert.Equal(t, 20, step.Score)
}

func TestEngine_SingleBadTerminalCompletes(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, nil)
	_, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)

	res, err := engine.SubmitAnswer(ctx, "u1", "incident", "root", "B")
	require.NoError(t, err)
	assert.True(t, res.Terminal())
	assert.Equal(t, domain.OutcomeCompleted, res.Outcome)
	assert.Equal(t, domain.ReasonCompleted, res.Reason)
	assert.Equal(t, domain.QualityBad, res.Quality)
	assert.Equal(t, -5, res.Score)
	assert.Equal(t, 1, res.BadDecisionCount)
	require.NotNil(t, res.Summary)
	assert.True(t, res.Summary.Completed)
	assert.False(t, res.Summary.Failed)
	assert.Equal(t, domain.PerformancePoor, res.Summary.Performance)
}

func TestEngine_ThirdBadDecisionFails(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, nil)
	_, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := engine.SubmitAnswer(ctx, "u1", "incident", "root", "loop")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeAdvanced, res.Outcome, "decision %d", i+1)
		assert.Equal(t, i+1, res.BadDecisionCount)
	}

	res, err := engine.SubmitAnswer(ctx, "u1", "incident", "root", "loop")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Equal(t, domain.ReasonFailed, res.Reason)
	assert.Nil(t, res.NextStep, "failure clears the next step even though the option has one")
	require.NotNil(t, res.Summary)
	assert.True(t, res.Summary.Failed)
	assert.False(t, res.Summary.Completed)
	assert.Equal(t, 3, res.Summary.BadDecisions)

	view, err := engine.Progress(ctx, "u1", "incident")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFailed, view.Phase)
	assert.Nil(t, view.CurrentStepID)
}

func TestEngine_FailurePreemptsCompletion(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, nil)
	_, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)

	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "loop")
	require.NoError(t, err)
	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "loop")
	require.NoError(t, err)

	// B is bad and terminal.
	res, err := engine.SubmitAnswer(ctx, "u1", "incident", "root", "B")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.True(t, res.Summary.Failed)
	assert.False(t, res.Summary.Completed)
}

func TestEngine_ScoreAndTranscriptAccumulate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)
	_, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)

	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "loop")
	require.NoError(t, err)
	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "A")
	require.NoError(t, err)
	res, err := engine.SubmitAnswer(ctx, "u1", "incident", "stepB", "ok")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, res.Outcome)

	p, err := store.Load(ctx, "u1", "incident")
	require.NoError(t, err)
	assert.Equal(t, -1+20+30, p.Score)
	require.Len(t, p.Decisions, 3)
	assert.Equal(t, []string{"root", "root", "stepB"}, []string{p.Decisions[0].StepID, p.Decisions[1].StepID, p.Decisions[2].StepID})
	assert.Equal(t, fixedNow, p.Decisions[0].Timestamp)
	assert.True(t, p.Completed)
	assert.Nil(t, p.CurrentStepID)
}

func TestEngine_RejectedSubmissionsDoNotMutate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)
	_, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)
	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "A")
	require.NoError(t, err)

	before, err := store.Load(ctx, "u1", "incident")
	require.NoError(t, err)

	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "A")
	assert.ErrorIs(t, err, domain.ErrNotCurrentStep, "replaying an old step")

	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "stepB", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "stepB", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	after, err := store.Load(ctx, "u1", "incident")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEngine_DanglingEdgeIsIntegrityError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)
	_, err := engine.Start(ctx, "u1", "broken")
	require.NoError(t, err)

	_, err = engine.SubmitAnswer(ctx, "u1", "broken", "start", "go")
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	p, err := store.Load(ctx, "u1", "broken")
	require.NoError(t, err)
	assert.Empty(t, p.Decisions)
	assert.Zero(t, p.Score)
	assert.Equal(t, "start", *p.CurrentStepID)
}

func TestEngine_RestartResetsTerminalProgress(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)
	first, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "loop")
		require.NoError(t, err)
	}

	again, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)
	p := again.Progress
	assert.Equal(t, first.Progress.ID, p.ID, "same record, reset in place")
	assert.Zero(t, p.Score)
	assert.Zero(t, p.BadDecisionCount)
	assert.Empty(t, p.Decisions)
	assert.False(t, p.Failed)
	assert.False(t, p.Completed)
	assert.Equal(t, "root", *p.CurrentStepID)
}

func TestEngine_RestartMidRunResetsProgress(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)
	first, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)

	res, err := engine.SubmitAnswer(ctx, "u1", "incident", "root", "A")
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeAdvanced, res.Outcome)

	again, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)
	p := again.Progress
	assert.Equal(t, first.Progress.ID, p.ID, "same record, reset in place")
	assert.Zero(t, p.Score)
	assert.Zero(t, p.BadDecisionCount)
	assert.Empty(t, p.Decisions)
	require.NotNil(t, p.CurrentStepID)
	assert.Equal(t, "root", *p.CurrentStepID)

	stored, err := store.Load(ctx, "u1", "incident")
	require.NoError(t, err)
	assert.Equal(t, first.Progress.ID, stored.ID)
	assert.Empty(t, stored.Decisions)
	assert.Equal(t, "root", *stored.CurrentStepID)

	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "stepB", "ok")
	assert.ErrorIs(t, err, domain.ErrNotCurrentStep, "the abandoned step is no longer current")
}

func TestEngine_ProgressNotStarted(t *testing.T) {
	engine := newEngine(t, nil)
	view, err := engine.Progress(context.Background(), "u1", "incident")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseNotStarted, view.Phase)
	assert.Nil(t, view.CurrentStepID)
	assert.Equal(t, "incident", view.Scenario.ID)
	assert.Equal(t, "Incident", view.Scenario.Title)
	assert.Equal(t, "SRE", view.Scenario.Role)
	assert.Equal(t, domain.DifficultyMedium, view.Scenario.Difficulty)
	assert.Equal(t, "Pager at 3am", view.Scenario.Description)
}

func TestEngine_ProgressInProgress(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, nil)
	_, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)
	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "A")
	require.NoError(t, err)

	view, err := engine.Progress(ctx, "u1", "incident")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseInProgress, view.Phase)
	require.NotNil(t, view.CurrentStepID)
	assert.Equal(t, "stepB", *view.CurrentStepID)
	assert.Equal(t, 20, view.Score)
	assert.Len(t, view.Decisions, 1)
	assert.Equal(t, "incident", view.Scenario.ID)
	assert.Equal(t, "Incident", view.Scenario.Title)
	assert.Equal(t, "SRE", view.Scenario.Role)
	assert.Equal(t, domain.DifficultyMedium, view.Scenario.Difficulty)
}

func TestEngine_ListScenarios(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, nil)

	all, err := engine.ListScenarios(ctx, domain.ScenarioFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sre, err := engine.ListScenarios(ctx, domain.ScenarioFilter{Role: "sre"})
	require.NoError(t, err)
	require.Len(t, sre, 1)
	assert.Equal(t, "incident", sre[0].ID)

	_, err = engine.ListScenarios(ctx, domain.ScenarioFilter{Difficulty: "extreme"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEngine_Hooks(t *testing.T) {
	ctx := context.Background()
	var (
		starts    int
		decisions []domain.Quality
		outcomes  []domain.Outcome
	)
	engine := newEngine(t, nil, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnStart:    func(context.Context, *domain.StartEvent) { starts++ },
		OnDecision: func(_ context.Context, e *domain.DecisionEvent) { decisions = append(decisions, e.Quality) },
		OnOutcome:  func(_ context.Context, e *domain.OutcomeEvent) { outcomes = append(outcomes, e.Outcome) },
	}))

	_, err := engine.Start(ctx, "u1", "incident")
	require.NoError(t, err)
	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "root", "A")
	require.NoError(t, err)
	_, err = engine.SubmitAnswer(ctx, "u1", "incident", "stepB", "ok")
	require.NoError(t, err)

	assert.Equal(t, 1, starts)
	assert.Equal(t, []domain.Quality{domain.QualityGood, domain.QualityGood}, decisions)
	assert.Equal(t, []domain.Outcome{domain.OutcomeCompleted}, outcomes)
}
