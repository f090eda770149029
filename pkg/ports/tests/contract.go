package tests

import (
	"context"
	"testing"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CatalogFixture describes the scenario an adapter was seeded with.
type CatalogFixture struct {
	ScenarioID string
	RootStepID string
	StepIDs    []string
}

// CatalogContractTest is a reusable test suite that verifies if an adapter complies with ports.ScenarioCatalog.
func CatalogContractTest(t *testing.T, catalog ports.ScenarioCatalog, fx CatalogFixture) {
	t.Helper()
	ctx := context.Background()

	t.Run("Scenario", func(t *testing.T) {
		s, err := catalog.Scenario(ctx, fx.ScenarioID)
		require.NoError(t, err)
		assert.Equal(t, fx.ScenarioID, s.ID)
	})

	t.Run("Scenario_NotFound", func(t *testing.T) {
		_, err := catalog.Scenario(ctx, "non-existent-scenario")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("RootStep", func(t *testing.T) {
		root, err := catalog.RootStep(ctx, fx.ScenarioID)
		require.NoError(t, err)
		assert.Equal(t, fx.RootStepID, root.ID)
		assert.Equal(t, fx.ScenarioID, root.ScenarioID)
		assert.True(t, root.Root)
	})

	t.Run("RootStep_UnknownScenario", func(t *testing.T) {
		_, err := catalog.RootStep(ctx, "non-existent-scenario")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Step", func(t *testing.T) {
		for _, id := range fx.StepIDs {
			step, err := catalog.Step(ctx, id, fx.ScenarioID)
			require.NoError(t, err, "step %s", id)
			assert.Equal(t, id, step.ID)
		}
	})

	t.Run("Step_WrongScenario", func(t *testing.T) {
		_, err := catalog.Step(ctx, fx.RootStepID, "non-existent-scenario")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListSteps", func(t *testing.T) {
		steps, err := catalog.ListSteps(ctx, fx.ScenarioID)
		require.NoError(t, err)
		ids := make([]string, 0, len(steps))
		for _, s := range steps {
			ids = append(ids, s.ID)
		}
		assert.ElementsMatch(t, fx.StepIDs, ids)
	})

	t.Run("ListScenarios", func(t *testing.T) {
		list, err := catalog.ListScenarios(ctx)
		require.NoError(t, err)
		found := false
		for _, s := range list {
			found = found || s.ID == fx.ScenarioID
		}
		assert.True(t, found)
	})
}
