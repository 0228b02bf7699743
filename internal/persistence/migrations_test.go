package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ticket-dashboard/internal/persistence"
	"github.com/spec-kit/ticket-dashboard/internal/testutil"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	require.NoError(t, persistence.RunMigrations(ctx, pool, logger))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	require.GreaterOrEqual(t, count, 1)

	require.NoError(t, persistence.RunMigrations(ctx, pool, logger))

	var again int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&again))
	require.Equal(t, count, again)
}

func TestRunMigrations_NilPool(t *testing.T) {
	require.NoError(t, persistence.RunMigrations(context.Background(), nil, zaptest.NewLogger(t)))
}
