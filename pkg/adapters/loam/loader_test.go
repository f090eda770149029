package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/gambit/internal/testutils"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports/tests"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = map[string]string{
	"db-outage.md": `---
kind: scenario
id: db-outage
title: Primary Database Outage
role: Backend Engineer
difficulty: hard
created_at: "2026-02-01T10:00:00Z"
---
The primary stops accepting writes.`,
	"alert.md": `---
kind: step
id: alert
scenario: db-outage
root: true
options:
  - id: dashboards
    text: Check the dashboards
    xp: 20
    next: diagnose
  - id: restart
    text: Restart the primary
    xp: -10
---
Write latency is climbing.`,
	"diagnose.md": `---
kind: step
id: diagnose
scenario: db-outage
options:
  - id: failover
    text: Fail over
    xp: 30
---
The disk is full.`,
}

func seed(t *testing.T, files map[string]string) *loam.TypedRepository[DocumentMetadata] {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	for filename, content := range files {
		err := os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644)
		require.NoError(t, err)
	}
	return loam.NewTypedRepository[DocumentMetadata](repo)
}

func TestLoad_Contract(t *testing.T) {
	catalog, err := Load(context.Background(), seed(t, fixture))
	require.NoError(t, err)

	tests.CatalogContractTest(t, catalog, tests.CatalogFixture{
		ScenarioID: "db-outage",
		RootStepID: "alert",
		StepIDs:    []string{"alert", "diagnose"},
	})
}

func TestLoad_Decoding(t *testing.T) {
	ctx := context.Background()
	catalog, err := Load(ctx, seed(t, fixture))
	require.NoError(t, err)

	s, err := catalog.Scenario(ctx, "db-outage")
	require.NoError(t, err)
	assert.Equal(t, "Primary Database Outage", s.Title)
	assert.Equal(t, domain.DifficultyHard, s.Difficulty)
	assert.Equal(t, "The primary stops accepting writes.", s.Description)
	assert.Equal(t, 2026, s.CreatedAt.Year())

	alert, err := catalog.Step(ctx, "alert", "db-outage")
	require.NoError(t, err)
	assert.Equal(t, "Write latency is climbing.", alert.Context)
	require.Len(t, alert.Options, 2)
	assert.Equal(t, 20, alert.Options[0].XPChange)
	require.NotNil(t, alert.Options[0].NextStepID)
	assert.Equal(t, "diagnose", *alert.Options[0].NextStepID)
	assert.Equal(t, -10, alert.Options[1].XPChange)
	assert.Nil(t, alert.Options[1].NextStepID)
}

func TestLoad_DetectsCollisions(t *testing.T) {
	files := map[string]string{
		"db-outage.md": fixture["db-outage.md"],
		"a.md":         "---\nkind: step\nid: alert\nscenario: db-outage\n---\nOne",
		"b.md":         "---\nkind: step\nid: alert\nscenario: db-outage\n---\nTwo",
	}
	_, err := Load(context.Background(), seed(t, files))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLoad_RejectsUnknownOptionFields(t *testing.T) {
	files := map[string]string{
		"db-outage.md": fixture["db-outage.md"],
		"alert.md":     "---\nkind: step\nid: alert\nscenario: db-outage\noptions:\n  - id: a\n    xpp: 3\n---\nHi",
	}
	_, err := Load(context.Background(), seed(t, files))
	assert.Error(t, err)
}
