package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/adapters/sqlite"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gambit.db")
	s, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunProgressStoreContract(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	store, path := newStore(t)

	p, err := store.Reset(ctx, "u1", "s1", "root")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, p.Version, loaded.Version)
}

func TestSQLiteStore_SaveReturnsWrittenRow(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	p, err := store.Reset(ctx, "u1", "s1", "root")
	require.NoError(t, err)

	next := "step2"
	p.Record(domain.Option{ID: "a", XPChange: 20, NextStepID: &next}, time.Now())
	saved, err := store.Save(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, saved.ID)
	assert.Equal(t, p.Version+1, saved.Version)
	assert.Equal(t, 20, saved.Score)
	require.Len(t, saved.Decisions, 1)
	assert.Equal(t, "step2", *saved.CurrentStepID)
}

func TestSQLiteStore_SaveRacingReset(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	_, err := store.Reset(ctx, "u1", "s1", "root")
	require.NoError(t, err)

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, _ = store.Reset(ctx, "u1", "s1", "root")
		}
	}()

	results := make(chan *domain.Progress, rounds)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			p, err := store.Load(ctx, "u1", "s1")
			if err != nil {
				continue
			}
			p.Record(domain.Option{ID: "a", XPChange: 20}, time.Now())
			saved, err := store.Save(ctx, p)
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			if err == nil {
				results <- saved
			}
		}
	}()
	wg.Wait()
	close(results)

	for saved := range results {
		assert.NotEmpty(t, saved.Decisions, "a successful save returns its own write")
		assert.True(t, saved.Completed)
	}
}
