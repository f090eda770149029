package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/gambit/internal/runtime"
	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/dsl"
	"github.com/aretw0/gambit/pkg/narrative"
	"github.com/aretw0/gambit/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	b := dsl.New()
	s := b.Scenario("outage").
		Title("Database Outage").
		Role("SRE").
		Difficulty(domain.DifficultyHard).
		Description("Writes are failing.")
	s.Step("alert").Root().
		Context("The pager fires.").
		Option("look", "Check dashboards", 20).Go("cause").
		Option("sleep", "Go back to sleep", -10).Go("alert")
	s.Step("cause").
		Context("The disk is full.").
		Option("rotate", "Rotate logs", 30).End().
		Option("reboot", "Reboot the primary", -20).End()

	return runtime.NewEngine(b.MustBuild(), session.NewManager(memory.NewStore()), opts...)
}

func TestPlayer_Completes(t *testing.T) {
	var out bytes.Buffer
	p := NewPlayer(newTestEngine(t), strings.NewReader("1\nrotate\n"), &out, WithUserID("u1"))

	summary, err := p.Play(context.Background(), "outage")
	require.NoError(t, err)
	assert.True(t, summary.Completed)
	assert.Equal(t, 50, summary.TotalScore)

	text := out.String()
	assert.Contains(t, text, "# Database Outage")
	assert.Contains(t, text, "1. Check dashboards")
	assert.Contains(t, text, "Good decision (+20)")
	assert.Contains(t, text, "Scenario completed.")
	assert.Contains(t, text, "- Final score: 50 (good)")
}

func TestPlayer_RejectsInvalidChoices(t *testing.T) {
	var out bytes.Buffer
	p := NewPlayer(newTestEngine(t), strings.NewReader("7\nnope\nLOOK\n2\n"), &out)

	summary, err := p.Play(context.Background(), "outage")
	require.NoError(t, err)
	assert.True(t, summary.Completed)
	assert.Equal(t, 1, summary.BadDecisions)
	assert.Equal(t, 2, strings.Count(out.String(), "Pick 1-2 or an option ID."))
}

func TestPlayer_FailsAfterThreeBadDecisions(t *testing.T) {
	var out bytes.Buffer
	p := NewPlayer(newTestEngine(t), strings.NewReader("2\n2\n2\n"), &out)

	summary, err := p.Play(context.Background(), "outage")
	require.NoError(t, err)
	assert.True(t, summary.Failed)
	assert.Contains(t, out.String(), "Too many bad decisions.")
}

func TestPlayer_QuitAndEOF(t *testing.T) {
	p := NewPlayer(newTestEngine(t), strings.NewReader("q\n"), &bytes.Buffer{})
	_, err := p.Play(context.Background(), "outage")
	assert.ErrorIs(t, err, ErrQuit)

	p = NewPlayer(newTestEngine(t), strings.NewReader("1\n"), &bytes.Buffer{})
	_, err = p.Play(context.Background(), "outage")
	assert.ErrorIs(t, err, ErrQuit)
}

func TestPlayer_UnknownScenario(t *testing.T) {
	p := NewPlayer(newTestEngine(t), strings.NewReader(""), &bytes.Buffer{})
	_, err := p.Play(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlayer_Analysis(t *testing.T) {
	provider := narrative.NewMockProvider(narrative.MockResponse{Content: narrative.DemoNarrative})
	engine := newTestEngine(t, runtime.WithNarrator(narrative.NewNarrator(provider)))

	var out bytes.Buffer
	p := NewPlayer(engine, strings.NewReader("1\n1\n"), &out, WithAnalysis(true))

	_, err := p.Play(context.Background(), "outage")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "## Review")
	assert.Contains(t, out.String(), "### Senior perspective")
}

func TestPlayer_AnalysisUnavailable(t *testing.T) {
	var out bytes.Buffer
	p := NewPlayer(newTestEngine(t), strings.NewReader("1\n1\n"), &out, WithAnalysis(true))

	_, err := p.Play(context.Background(), "outage")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Analysis unavailable")
}

func TestSanitizeInput(t *testing.T) {
	got, err := SanitizeInput(" 2\x1b[31m\r\n")
	require.NoError(t, err)
	assert.Equal(t, "2[31m", got)

	_, err = SanitizeInput(strings.Repeat("a", MaxInputSize+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = SanitizeInput("\xff")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
