package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/openagents-sub011/internal/db"
)

func TestMigrateUpAndDown(t *testing.T) {
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	defer database.Close()
	ctx := context.Background()

	applied, err := database.MigrateUp(ctx)
	require.NoError(t, err)
	assert.Greater(t, applied, 0)

	version, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Greater(t, version, 0)

	// Migrating again is a no-op.
	applied, err = database.MigrateUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	rolled, err := database.MigrateDown(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rolled)

	downVersion, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, version-1, downVersion)
}

func TestMigrateCreatesTables(t *testing.T) {
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	defer database.Close()
	ctx := context.Background()

	require.NoError(t, database.Migrate(ctx))

	for _, table := range []string{"run_records", "episodes"} {
		var name string
		err := database.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "expected table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestHealthCheck(t *testing.T) {
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	defer database.Close()

	assert.NoError(t, database.HealthCheck(context.Background()))
}
