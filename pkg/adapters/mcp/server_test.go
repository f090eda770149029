package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/gambit/internal/runtime"
	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/dsl"
	"github.com/aretw0/gambit/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	b := dsl.New()
	s := b.Scenario("outage").Title("Database Outage").Role("SRE")
	s.Step("alert").Root().
		Context("The pager fires.").
		Option("look", "Check dashboards", 20).Go("cause")
	s.Step("cause").
		Context("The disk is full.").
		Option("rotate", "Rotate logs", 30).End()

	engine := runtime.NewEngine(b.MustBuild(), session.NewManager(memory.NewStore()))
	return NewServer(engine, "test\n")
}

func args(kv ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}

func TestTools_Traversal(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	list, err := s.handleListScenarios(ctx, req, args("search", "database"))
	require.NoError(t, err)
	require.Len(t, list.Scenarios, 1)

	started, err := s.handleStart(ctx, req, args("user_id", "agent", "scenario_id", "outage"))
	require.NoError(t, err)
	assert.Equal(t, "alert", started.Step.StepID)

	step, err := s.handleGetStep(ctx, req, args("user_id", "agent", "scenario_id", "outage", "step_id", "alert"))
	require.NoError(t, err)
	assert.Len(t, step.Step.Options, 1)

	answer, err := s.handleSubmit(ctx, req, args("user_id", "agent", "scenario_id", "outage", "step_id", "alert", "option_id", "look"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAdvanced, answer.Outcome)

	answer, err = s.handleSubmit(ctx, req, args("user_id", "agent", "scenario_id", "outage", "step_id", "cause", "option_id", "rotate"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, answer.Outcome)

	progress, err := s.handleProgress(ctx, req, args("user_id", "agent", "scenario_id", "outage"))
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseCompleted, progress.Phase)

	summary, err := s.handleSummary(ctx, req, args("user_id", "agent", "scenario_id", "outage"))
	require.NoError(t, err)
	assert.Equal(t, 50, summary.TotalScore)
}

func TestTools_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, args("user_id", "agent", "scenario_id", "ghost"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.handleGetStep(ctx, req, args("user_id", "agent", "scenario_id", "outage", "step_id", "alert"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.handleListScenarios(ctx, req, args("difficulty", "impossible"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.handleSummary(ctx, req, args("user_id", "agent", "scenario_id", "outage"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStringArg(t *testing.T) {
	a := map[string]interface{}{"s": "  x ", "n": 3}
	assert.Equal(t, "x", stringArg(a, "s"))
	assert.Equal(t, "", stringArg(a, "n"))
	assert.Equal(t, "", stringArg(a, "missing"))
}
