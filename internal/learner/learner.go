// Package learner converts a window of past episodes into reflections
// that bias future benchmark iterations.
package learner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/OpenAgentsInc/openagents-sub011/internal/logging"
	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// EpisodeSource is the external read of prior episode logs.
type EpisodeSource interface {
	Recent(ctx context.Context, n int) ([]models.EpisodeRecord, error)
}

// SourceError means the episode source was unreachable. Malformed
// individual episodes never raise this; they are skipped and counted.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("episode source unreachable: %v", e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Learner aggregates failing episodes into a learning summary.
type Learner struct {
	Source EpisodeSource
	Logger zerolog.Logger

	// MinConfidence is assigned to single-occurrence reflections; the
	// weight grows with occurrence count and saturates at 1.
	MinConfidence float64
}

// New creates a Learner over the given source.
func New(source EpisodeSource) *Learner {
	return &Learner{
		Source:        source,
		Logger:        logging.Component("learner"),
		MinConfidence: 0.5,
	}
}

type categoryGroup struct {
	category models.FailureCategory
	count    int
	lastSeen time.Time
	action   string
}

// Summarize selects the most recent n episodes, groups failures by
// category, and produces one reflection per category, ordered by
// descending frequency with most-recent-occurrence breaking ties.
// The result is deterministic for identical inputs. The summary never
// merges with a previous one; each call supersedes the last.
func (l *Learner) Summarize(ctx context.Context, n int) (*models.LearningSummary, error) {
	if n <= 0 {
		return &models.LearningSummary{GeneratedAt: time.Now().UTC()}, nil
	}

	episodes, err := l.Source.Recent(ctx, n)
	if err != nil {
		return nil, &SourceError{Err: err}
	}

	summary := &models.LearningSummary{
		GeneratedAt:     time.Now().UTC(),
		WindowSize:      n,
		EpisodesScanned: len(episodes),
	}

	groups := make(map[models.FailureCategory]*categoryGroup)
	for _, episode := range episodes {
		if episode.Passed {
			continue
		}
		if err := episode.Validate(); err != nil {
			summary.SkippedEpisodes++
			l.Logger.Warn().Str("episode_id", episode.ID).Err(err).Msg("skipping malformed episode")
			continue
		}

		group, ok := groups[episode.Category]
		if !ok {
			group = &categoryGroup{category: episode.Category}
			groups[episode.Category] = group
		}
		group.count++
		if episode.OccurredAt.After(group.lastSeen) {
			group.lastSeen = episode.OccurredAt
			// The most recent corrective action wins: later lessons
			// reflect the current state of the workspace.
			if episode.CorrectiveAction != "" {
				group.action = episode.CorrectiveAction
			}
		}
		if group.action == "" && episode.CorrectiveAction != "" {
			group.action = episode.CorrectiveAction
		}
	}

	ordered := make([]*categoryGroup, 0, len(groups))
	for _, group := range groups {
		ordered = append(ordered, group)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		if !ordered[i].lastSeen.Equal(ordered[j].lastSeen) {
			return ordered[i].lastSeen.After(ordered[j].lastSeen)
		}
		return ordered[i].category < ordered[j].category
	})

	for _, group := range ordered {
		summary.TopCategories = append(summary.TopCategories, group.category)
		summary.Reflections = append(summary.Reflections, models.Reflection{
			Category:         group.category,
			CorrectiveAction: group.action,
			Occurrences:      group.count,
			Confidence:       l.confidence(group.count),
			LastSeen:         group.lastSeen,
		})
	}

	l.Logger.Debug().
		Int("episodes", summary.EpisodesScanned).
		Int("skipped", summary.SkippedEpisodes).
		Int("reflections", len(summary.Reflections)).
		Msg("learning summary generated")

	return summary, nil
}

func (l *Learner) confidence(occurrences int) float64 {
	minConfidence := l.MinConfidence
	if minConfidence <= 0 || minConfidence > 1 {
		minConfidence = 0.5
	}
	confidence := minConfidence + 0.1*float64(occurrences-1)
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}
