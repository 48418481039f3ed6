package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/openagents-sub011/internal/learner"
	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
	"github.com/OpenAgentsInc/openagents-sub011/internal/testutil"
)

func sampleEpisode(runID string, category models.FailureCategory, occurredAt time.Time) *models.EpisodeRecord {
	return &models.EpisodeRecord{
		RunID:            runID,
		TaskID:           "task-1",
		Passed:           false,
		Category:         category,
		ErrorMessage:     "TS2322: type mismatch",
		CorrectiveAction: "check the interface definition",
		OccurredAt:       occurredAt,
	}
}

func TestEpisodeCreateAndRecent(t *testing.T) {
	env := testutil.NewTestDBEnv(t)
	defer env.Close()
	ctx := context.Background()

	episode := sampleEpisode("run-1", models.CategoryTypeError, time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	require.NoError(t, env.EpisodeRepo.Create(ctx, episode))
	assert.NotEmpty(t, episode.ID)

	episodes, err := env.EpisodeRepo.Recent(ctx, 10)
	require.NoError(t, err)

	require.Len(t, episodes, 1)
	assert.Equal(t, "run-1", episodes[0].RunID)
	assert.Equal(t, models.CategoryTypeError, episodes[0].Category)
	assert.Equal(t, "check the interface definition", episodes[0].CorrectiveAction)
	assert.False(t, episodes[0].Passed)
	assert.True(t, episode.OccurredAt.Equal(episodes[0].OccurredAt))
}

func TestEpisodeRecentOrdersAndLimits(t *testing.T) {
	env := testutil.NewTestDBEnv(t)
	defer env.Close()
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	categories := []models.FailureCategory{
		models.CategoryTypeError,
		models.CategoryTimeout,
		models.CategoryBuildError,
		models.CategoryTestFailure,
	}
	for i, category := range categories {
		episode := sampleEpisode("run-1", category, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, env.EpisodeRepo.Create(ctx, episode))
	}

	episodes, err := env.EpisodeRepo.Recent(ctx, 2)
	require.NoError(t, err)

	require.Len(t, episodes, 2)
	assert.Equal(t, models.CategoryTestFailure, episodes[0].Category, "newest first")
	assert.Equal(t, models.CategoryBuildError, episodes[1].Category)
}

func TestEpisodeListByRun(t *testing.T) {
	env := testutil.NewTestDBEnv(t)
	defer env.Close()
	ctx := context.Background()

	at := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	require.NoError(t, env.EpisodeRepo.Create(ctx, sampleEpisode("run-a", models.CategoryTimeout, at)))
	require.NoError(t, env.EpisodeRepo.Create(ctx, sampleEpisode("run-b", models.CategoryTypeError, at)))

	episodes, err := env.EpisodeRepo.ListByRun(ctx, "run-a")
	require.NoError(t, err)

	require.Len(t, episodes, 1)
	assert.Equal(t, models.CategoryTimeout, episodes[0].Category)
}

func TestEpisodePassedRoundTrip(t *testing.T) {
	env := testutil.NewTestDBEnv(t)
	defer env.Close()
	ctx := context.Background()

	passed := &models.EpisodeRecord{
		RunID:      "run-1",
		TaskID:     "task-ok",
		Passed:     true,
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, env.EpisodeRepo.Create(ctx, passed))

	episodes, err := env.EpisodeRepo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.True(t, episodes[0].Passed)
	assert.Empty(t, episodes[0].Category)
}

func TestEpisodeRepositorySatisfiesLearnerSource(t *testing.T) {
	env := testutil.NewTestDBEnv(t)
	defer env.Close()
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, env.EpisodeRepo.Create(ctx, sampleEpisode("run-1", models.CategoryTimeout, base.Add(time.Duration(i)*time.Minute))))
	}

	summarizer := learner.New(env.EpisodeRepo)
	summary, err := summarizer.Summarize(ctx, 10)
	require.NoError(t, err)

	require.Len(t, summary.Reflections, 1)
	assert.Equal(t, models.CategoryTimeout, summary.Reflections[0].Category)
	assert.Equal(t, 3, summary.Reflections[0].Occurrences)
}
