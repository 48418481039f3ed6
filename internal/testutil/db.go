// Package testutil provides shared helpers for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/openagents-sub011/internal/db"
)

// NewTestDB creates an in-memory SQLite database for testing.
// It runs migrations and returns a cleanup function.
func NewTestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	database, err := db.OpenInMemory()
	require.NoError(t, err, "failed to open test database")

	ctx := context.Background()
	err = database.Migrate(ctx)
	require.NoError(t, err, "failed to run migrations")

	cleanup := func() {
		_ = database.Close()
	}

	return database, cleanup
}

// TestDBEnv provides a database test environment with all repositories.
type TestDBEnv struct {
	DB          *db.DB
	RunRepo     *db.RunRecordRepository
	EpisodeRepo *db.EpisodeRepository
	cleanup     func()
	t           *testing.T
}

// NewTestDBEnv creates a complete test database environment.
func NewTestDBEnv(t *testing.T) *TestDBEnv {
	t.Helper()
	database, cleanup := NewTestDB(t)

	return &TestDBEnv{
		DB:          database,
		RunRepo:     db.NewRunRecordRepository(database),
		EpisodeRepo: db.NewEpisodeRepository(database),
		cleanup:     cleanup,
		t:           t,
	}
}

// Close releases the environment's database.
func (e *TestDBEnv) Close() {
	e.t.Helper()
	e.cleanup()
}
