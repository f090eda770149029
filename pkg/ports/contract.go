package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunProgressStoreContract runs a suite of tests to verify that a ProgressStore
// implementation adheres to the defined interface contract.
func RunProgressStoreContract(t *testing.T, store ProgressStore) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405.000000")

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, userID, "missing")
		assert.ErrorIs(t, err, domain.ErrProgressNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Reset Creates", func(t *testing.T) {
		p, err := store.Reset(ctx, userID, "create", "root")
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, userID, p.UserID)
		assert.Equal(t, "create", p.ScenarioID)
		require.NotNil(t, p.CurrentStepID)
		assert.Equal(t, "root", *p.CurrentStepID)
		assert.Zero(t, p.Score)
		assert.Empty(t, p.Decisions)
		assert.False(t, p.Terminal())

		loaded, err := store.Load(ctx, userID, "create")
		require.NoError(t, err)
		assert.Equal(t, p.ID, loaded.ID)
		assert.Equal(t, p.Version, loaded.Version)
	})

	t.Run("Save and Load", func(t *testing.T) {
		p, err := store.Reset(ctx, userID, "save", "root")
		require.NoError(t, err)

		next := "second"
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		p.Record(domain.Option{ID: "a", XPChange: -5, NextStepID: &next}, at)

		saved, err := store.Save(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, p.Version+1, saved.Version)

		loaded, err := store.Load(ctx, userID, "save")
		require.NoError(t, err)
		require.NotNil(t, loaded.CurrentStepID)
		assert.Equal(t, "second", *loaded.CurrentStepID)
		assert.Equal(t, -5, loaded.Score)
		assert.Equal(t, 1, loaded.BadDecisionCount)
		assert.Equal(t, saved.Version, loaded.Version)
		require.Len(t, loaded.Decisions, 1)
		assert.Equal(t, "root", loaded.Decisions[0].StepID)
		assert.Equal(t, "a", loaded.Decisions[0].OptionID)
		assert.Equal(t, -5, loaded.Decisions[0].XPChange)
		assert.True(t, at.Equal(loaded.Decisions[0].Timestamp))
	})

	t.Run("Terminal Round Trip", func(t *testing.T) {
		p, err := store.Reset(ctx, userID, "terminal", "root")
		require.NoError(t, err)
		p.Record(domain.Option{ID: "end", XPChange: 30}, time.Now())

		_, err = store.Save(ctx, p)
		require.NoError(t, err)

		loaded, err := store.Load(ctx, userID, "terminal")
		require.NoError(t, err)
		assert.Nil(t, loaded.CurrentStepID)
		assert.True(t, loaded.Completed)
		assert.False(t, loaded.Failed)
	})

	t.Run("Stale Save Conflicts", func(t *testing.T) {
		p, err := store.Reset(ctx, userID, "stale", "root")
		require.NoError(t, err)

		first := p.Clone()
		first.Score = 10
		_, err = store.Save(ctx, first)
		require.NoError(t, err)

		second := p.Clone()
		second.Score = 99
		_, err = store.Save(ctx, second)
		assert.ErrorIs(t, err, domain.ErrConflict)

		loaded, err := store.Load(ctx, userID, "stale")
		require.NoError(t, err)
		assert.Equal(t, 10, loaded.Score)
	})

	t.Run("Save Without Record", func(t *testing.T) {
		p := domain.NewProgress("orphan", userID, "never-started", "root")
		_, err := store.Save(ctx, p)
		assert.ErrorIs(t, err, domain.ErrProgressNotFound)
	})

	t.Run("Reset Overwrites In Place", func(t *testing.T) {
		p, err := store.Reset(ctx, userID, "overwrite", "root")
		require.NoError(t, err)
		p.Record(domain.Option{ID: "end", XPChange: -1}, time.Now())
		_, err = store.Save(ctx, p)
		require.NoError(t, err)

		again, err := store.Reset(ctx, userID, "overwrite", "root")
		require.NoError(t, err)
		assert.Equal(t, p.ID, again.ID)
		assert.Greater(t, again.Version, p.Version)
		assert.Zero(t, again.Score)
		assert.Zero(t, again.BadDecisionCount)
		assert.Empty(t, again.Decisions)
		assert.False(t, again.Completed)
		assert.False(t, again.Failed)
		require.NotNil(t, again.CurrentStepID)
		assert.Equal(t, "root", *again.CurrentStepID)
	})

	t.Run("Reset Invalidates Pending Saves", func(t *testing.T) {
		p, err := store.Reset(ctx, userID, "reset-race", "root")
		require.NoError(t, err)

		_, err = store.Reset(ctx, userID, "reset-race", "root")
		require.NoError(t, err)

		p.Score = 50
		_, err = store.Save(ctx, p)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Concurrent Saves Single Winner", func(t *testing.T) {
		p, err := store.Reset(ctx, userID, "race", "root")
		require.NoError(t, err)

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			wins      int
			conflicts int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(score int) {
				defer wg.Done()
				c := p.Clone()
				c.Score = score
				_, err := store.Save(ctx, c)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case assert.ErrorIs(t, err, domain.ErrConflict):
					conflicts++
				}
			}(i + 1)
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
		assert.Equal(t, workers-1, conflicts)
	})

	t.Run("List", func(t *testing.T) {
		other := userID + "-list"
		_, err := store.Reset(ctx, other, "one", "root")
		require.NoError(t, err)
		_, err = store.Reset(ctx, other, "two", "root")
		require.NoError(t, err)

		list, err := store.List(ctx, other)
		require.NoError(t, err)
		ids := make([]string, 0, len(list))
		for _, p := range list {
			assert.Equal(t, other, p.UserID)
			ids = append(ids, p.ScenarioID)
		}
		assert.ElementsMatch(t, []string{"one", "two"}, ids)
	})

	t.Run("Separators In Identifiers", func(t *testing.T) {
		a, err := store.Reset(ctx, "alice:x", "y", "root")
		require.NoError(t, err)

		_, err = store.Load(ctx, "alice", "x:y")
		assert.ErrorIs(t, err, domain.ErrProgressNotFound)

		b, err := store.Reset(ctx, "alice", "x:y", "root")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)

		loaded, err := store.Load(ctx, "alice:x", "y")
		require.NoError(t, err)
		assert.Equal(t, "alice:x", loaded.UserID)
		assert.Equal(t, "y", loaded.ScenarioID)
		assert.Equal(t, a.ID, loaded.ID)

		list, err := store.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "x:y", list[0].ScenarioID)
	})
}
