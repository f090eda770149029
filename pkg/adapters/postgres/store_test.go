package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/adapters/postgres"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresStore_Contract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("gambit"),
		tcpostgres.WithUsername("gambit"),
		tcpostgres.WithPassword("gambit"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	ports.RunProgressStoreContract(t, store)
}
