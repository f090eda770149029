package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleScenario(t *testing.T) {
	b := New()
	s := b.Scenario("outage").
		Title("Outage").
		Role("SRE").
		Difficulty(domain.DifficultyHard)

	s.Step("alert").Root().
		Context("Pager fires.").
		Option("look", "Look at graphs", 20).Go("fix").
		Option("panic", "Panic", -10).End()

	s.Step("fix").
		Context("Disk is full.").
		Option("clean", "Clean up", 30).End()

	catalog, err := b.Build()
	require.NoError(t, err)

	ctx := context.Background()
	sc, err := catalog.Scenario(ctx, "outage")
	require.NoError(t, err)
	assert.Equal(t, "SRE", sc.Role)
	assert.Equal(t, domain.DifficultyHard, sc.Difficulty)

	root, err := catalog.RootStep(ctx, "outage")
	require.NoError(t, err)
	assert.Equal(t, "alert", root.ID)
	require.Len(t, root.Options, 2)
	assert.Equal(t, "fix", *root.Options[0].NextStepID)
	assert.Nil(t, root.Options[1].NextStepID)
	assert.False(t, root.IsFinal())

	fix, err := catalog.Step(ctx, "fix", "outage")
	require.NoError(t, err)
	assert.True(t, fix.IsFinal())
}

func TestBuilder_ReusesBuilders(t *testing.T) {
	b := New()
	b.Scenario("s").Step("a").Root()
	b.Scenario("s").Step("a").Context("again")

	catalog, err := b.Build()
	require.NoError(t, err)

	steps, err := catalog.ListSteps(context.Background(), "s")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "again", steps[0].Context)
	assert.True(t, steps[0].Root)
}
