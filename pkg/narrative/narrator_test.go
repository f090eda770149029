package narrative

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{
  "summary": "Solid triage.",
  "strengths": ["Checked dashboards first"],
  "mistakes": [],
  "recommendations": ["Page the owner sooner"],
  "seniorPerspective": "Stabilise, then investigate."
}`

func sampleInput() domain.AnalysisInput {
	return domain.AnalysisInput{
		Scenario: domain.Scenario{
			ID:          "db-outage",
			Title:       "Database Outage",
			Role:        "SRE",
			Difficulty:  domain.DifficultyMedium,
			Description: "Primary database stops accepting writes.",
		},
		Summary: domain.Summary{TotalScore: 10, TotalDecisions: 2, Completed: true, BadDecisionCount: 1},
		Decisions: []domain.EnrichedDecision{
			{Decision: domain.Decision{StepID: "alert", OptionID: "a", XPChange: 20}, StepContext: "Pager fires", OptionText: "Check dashboards"},
			{Decision: domain.Decision{StepID: "diagnose", OptionID: "b", XPChange: -10}, StepContext: "Disk full", OptionText: "Restart everything"},
		},
	}
}

func TestNarrator_Narrate(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: validReply})
	n := NewNarrator(mock, WithMaxTokens(512))

	got, err := n.Narrate(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "Solid triage.", got.Summary)
	assert.Equal(t, []string{"Checked dashboards first"}, got.Strengths)
	assert.Empty(t, got.Mistakes)
	assert.Equal(t, "Stabilise, then investigate.", got.SeniorPerspective)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, 512, req.MaxTokens)
	assert.Same(t, NarrativeSchema, req.Schema)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "Database Outage")
}

func TestNarrator_StripsFences(t *testing.T) {
	for _, reply := range []string{
		"```json\n" + validReply + "\n```",
		"```\n" + validReply + "\n```",
		"  \n" + validReply + "\n ",
	} {
		n := NewNarrator(NewMockProvider(MockResponse{Content: reply}))
		got, err := n.Narrate(context.Background(), sampleInput())
		require.NoError(t, err)
		assert.Equal(t, "Solid triage.", got.Summary)
	}
}

func TestNarrator_InvalidReplies(t *testing.T) {
	cases := map[string]string{
		"not json":          "Here is my analysis: great job",
		"missing field":     `{"summary":"x","strengths":[],"mistakes":[],"recommendations":[]}`,
		"wrong type":        `{"summary":"x","strengths":"none","mistakes":[],"recommendations":[],"seniorPerspective":"y"}`,
		"null field":        `{"summary":"x","strengths":null,"mistakes":[],"recommendations":[],"seniorPerspective":"y"}`,
		"empty summary":     `{"summary":"","strengths":[],"mistakes":[],"recommendations":[],"seniorPerspective":"y"}`,
		"extra field":       `{"summary":"x","strengths":[],"mistakes":[],"recommendations":[],"seniorPerspective":"y","score":3}`,
		"array reply":       `[]`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			n := NewNarrator(NewMockProvider(MockResponse{Content: reply}))
			_, err := n.Narrate(context.Background(), sampleInput())
			var invalid *ErrInvalidResponse
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestNarrator_MaxTokens(t *testing.T) {
	n := NewNarrator(NewMockProvider(MockResponse{Content: `{"summary":`, StopReason: "max_tokens"}))
	_, err := n.Narrate(context.Background(), sampleInput())
	var truncated *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &truncated)
}

func TestNarrator_ProviderErrorIsNotRetried(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockProvider(MockResponse{Err: boom}, MockResponse{Content: validReply})
	n := NewNarrator(mock)

	_, err := n.Narrate(context.Background(), sampleInput())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, mock.CallCount())
}

func TestNarrator_EmptyQueue(t *testing.T) {
	n := NewNarrator(NewMockProvider())
	_, err := n.Narrate(context.Background(), sampleInput())
	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavailable)
}

func TestDecode_DemoNarrative(t *testing.T) {
	got, err := Decode(DemoNarrative)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Recommendations)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
}
