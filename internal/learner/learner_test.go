package learner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

type stubSource struct {
	episodes []models.EpisodeRecord
	err      error
}

func (s *stubSource) Recent(ctx context.Context, n int) ([]models.EpisodeRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if n < len(s.episodes) {
		return s.episodes[:n], nil
	}
	return s.episodes, nil
}

func failure(category models.FailureCategory, action string, occurredAt time.Time) models.EpisodeRecord {
	return models.EpisodeRecord{
		Category:         category,
		CorrectiveAction: action,
		OccurredAt:       occurredAt,
		Passed:           false,
	}
}

func TestSummarizeOrdersByFrequency(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	source := &stubSource{episodes: []models.EpisodeRecord{
		failure(models.CategoryTypeError, "pin the interface", base),
		failure(models.CategoryTypeError, "pin the interface", base.Add(time.Minute)),
		failure(models.CategoryTypeError, "check generics first", base.Add(2*time.Minute)),
		failure(models.CategoryTimeout, "split the task", base.Add(3*time.Minute)),
	}}

	summary, err := New(source).Summarize(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, summary.Reflections, 2)
	assert.Equal(t, models.CategoryTypeError, summary.Reflections[0].Category)
	assert.Equal(t, 3, summary.Reflections[0].Occurrences)
	assert.Equal(t, models.CategoryTimeout, summary.Reflections[1].Category)
	assert.Equal(t, 1, summary.Reflections[1].Occurrences)
	assert.Equal(t, []models.FailureCategory{models.CategoryTypeError, models.CategoryTimeout}, summary.TopCategories)
}

func TestSummarizeRecencyBreaksFrequencyTies(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	source := &stubSource{episodes: []models.EpisodeRecord{
		failure(models.CategoryBuildError, "fix imports", base),
		failure(models.CategoryTimeout, "split the task", base.Add(time.Hour)),
	}}

	summary, err := New(source).Summarize(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, summary.Reflections, 2)
	assert.Equal(t, models.CategoryTimeout, summary.Reflections[0].Category, "equal counts order by last seen")
	assert.Equal(t, models.CategoryBuildError, summary.Reflections[1].Category)
}

func TestSummarizeDeterministicOnEqualCountAndTime(t *testing.T) {
	at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	source := &stubSource{episodes: []models.EpisodeRecord{
		failure(models.CategoryToolError, "", at),
		failure(models.CategoryBuildError, "", at),
	}}

	learner := New(source)
	first, err := learner.Summarize(context.Background(), 10)
	require.NoError(t, err)
	second, err := learner.Summarize(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, first.TopCategories, second.TopCategories)
	assert.Equal(t, models.CategoryBuildError, first.Reflections[0].Category, "category name breaks full ties")
}

func TestSummarizeMostRecentCorrectiveActionWins(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	source := &stubSource{episodes: []models.EpisodeRecord{
		failure(models.CategoryTestFailure, "old advice", base),
		failure(models.CategoryTestFailure, "new advice", base.Add(time.Hour)),
	}}

	summary, err := New(source).Summarize(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, summary.Reflections, 1)
	assert.Equal(t, "new advice", summary.Reflections[0].CorrectiveAction)
}

func TestSummarizeSkipsPassedEpisodes(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	source := &stubSource{episodes: []models.EpisodeRecord{
		{Passed: true, OccurredAt: base},
		failure(models.CategoryRuntime, "guard nil", base),
	}}

	summary, err := New(source).Summarize(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, summary.Reflections, 1)
	assert.Equal(t, models.CategoryRuntime, summary.Reflections[0].Category)
	assert.Equal(t, 2, summary.EpisodesScanned)
	assert.Equal(t, 0, summary.SkippedEpisodes, "passed episodes are not failures to skip-count")
}

func TestSummarizeCountsMalformedEpisodes(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	source := &stubSource{episodes: []models.EpisodeRecord{
		{Passed: false, Category: "", OccurredAt: base},
		{Passed: false, Category: "made-up-category", OccurredAt: base},
		failure(models.CategorySyntaxError, "balance the braces", base),
	}}

	summary, err := New(source).Summarize(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SkippedEpisodes)
	require.Len(t, summary.Reflections, 1)
	assert.Equal(t, models.CategorySyntaxError, summary.Reflections[0].Category)
}

func TestSummarizeSourceError(t *testing.T) {
	source := &stubSource{err: errors.New("database locked")}

	_, err := New(source).Summarize(context.Background(), 10)

	var sourceErr *SourceError
	require.ErrorAs(t, err, &sourceErr)
	assert.Contains(t, err.Error(), "database locked")
}

func TestSummarizeZeroWindow(t *testing.T) {
	source := &stubSource{episodes: []models.EpisodeRecord{
		failure(models.CategoryTimeout, "", time.Now()),
	}}

	summary, err := New(source).Summarize(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, summary.Reflections)
	assert.Equal(t, 0, summary.EpisodesScanned)
}

func TestConfidenceGrowsAndSaturates(t *testing.T) {
	learner := New(&stubSource{})

	assert.InDelta(t, 0.5, learner.confidence(1), 1e-9)
	assert.InDelta(t, 0.7, learner.confidence(3), 1e-9)
	assert.InDelta(t, 1.0, learner.confidence(6), 1e-9)
	assert.InDelta(t, 1.0, learner.confidence(50), 1e-9)
}
