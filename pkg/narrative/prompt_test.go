package narrative

import (
	"testing"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleInput())

	assert.Contains(t, p, "- Title: Database Outage")
	assert.Contains(t, p, "- Role: SRE")
	assert.Contains(t, p, "- Difficulty: medium")
	assert.Contains(t, p, "- Final outcome: COMPLETED")
	assert.Contains(t, p, "- Final score: 10")
	assert.Contains(t, p, "- Poor decisions made: 1")
	assert.Contains(t, p, "- Total decisions: 2")
	assert.Contains(t, p, "Decision 1:")
	assert.Contains(t, p, "- Context: Pager fires")
	assert.Contains(t, p, "- Chosen option: Restart everything")
	assert.Contains(t, p, "- Impact: +20")
	assert.Contains(t, p, "- Impact: -10")
	assert.Contains(t, p, `"seniorPerspective"`)
}

func TestBuildPrompt_OutcomeStatus(t *testing.T) {
	in := sampleInput()
	in.Summary.Completed = false
	in.Summary.Failed = true
	assert.Contains(t, BuildPrompt(in), "- Final outcome: FAILED")

	in.Summary.Failed = false
	assert.Contains(t, BuildPrompt(in), "- Final outcome: INCOMPLETE")
}

func TestBuildPrompt_NoDecisions(t *testing.T) {
	in := sampleInput()
	in.Decisions = nil
	in.Summary = domain.Summary{Completed: true}

	p := BuildPrompt(in)
	assert.Contains(t, p, "- Total decisions: 0")
	assert.Contains(t, p, "without any recorded decisions")
	assert.NotContains(t, p, "Decision 1:")
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+5", signed(5))
	assert.Equal(t, "0", signed(0))
	assert.Equal(t, "-3", signed(-3))
}
