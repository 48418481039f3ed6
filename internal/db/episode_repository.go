package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// Episode repository errors.
var (
	ErrEpisodeNotFound = errors.New("episode not found")
)

// EpisodeRepository handles episode persistence. It implements the
// learner's EpisodeSource over the local database.
type EpisodeRepository struct {
	db *DB
}

// NewEpisodeRepository creates a new EpisodeRepository.
func NewEpisodeRepository(db *DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

// Create adds a new episode record.
func (r *EpisodeRepository) Create(ctx context.Context, episode *models.EpisodeRecord) error {
	if episode.ID == "" {
		episode.ID = uuid.New().String()
	}
	if episode.OccurredAt.IsZero() {
		episode.OccurredAt = time.Now().UTC()
	}

	passed := 0
	if episode.Passed {
		passed = 1
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO episodes (
			id, run_id, task_id, passed, category,
			error_message, corrective_action, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		episode.ID,
		nullableString(episode.RunID),
		nullableString(episode.TaskID),
		passed,
		nullableString(string(episode.Category)),
		nullableString(episode.ErrorMessage),
		nullableString(episode.CorrectiveAction),
		episode.OccurredAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}

	return nil
}

// Recent retrieves the n most recent episodes, newest first.
func (r *EpisodeRepository) Recent(ctx context.Context, n int) ([]models.EpisodeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, task_id, passed, category,
			error_message, corrective_action, occurred_at
		FROM episodes
		ORDER BY occurred_at DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	episodes := make([]models.EpisodeRecord, 0)
	for rows.Next() {
		episode, err := r.scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, *episode)
	}

	return episodes, rows.Err()
}

// ListByRun retrieves episodes belonging to one run record.
func (r *EpisodeRepository) ListByRun(ctx context.Context, runID string) ([]models.EpisodeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, task_id, passed, category,
			error_message, corrective_action, occurred_at
		FROM episodes
		WHERE run_id = ?
		ORDER BY occurred_at DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	episodes := make([]models.EpisodeRecord, 0)
	for rows.Next() {
		episode, err := r.scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, *episode)
	}

	return episodes, rows.Err()
}

func (r *EpisodeRepository) scanEpisode(scanner interface{ Scan(...any) error }) (*models.EpisodeRecord, error) {
	var (
		id               string
		runID            sql.NullString
		taskID           sql.NullString
		passed           int
		category         sql.NullString
		errorMessage     sql.NullString
		correctiveAction sql.NullString
		occurredAt       string
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&taskID,
		&passed,
		&category,
		&errorMessage,
		&correctiveAction,
		&occurredAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("failed to scan episode: %w", err)
	}

	episode := &models.EpisodeRecord{
		ID:               id,
		RunID:            runID.String,
		TaskID:           taskID.String,
		Passed:           passed == 1,
		Category:         models.FailureCategory(category.String),
		ErrorMessage:     errorMessage.String,
		CorrectiveAction: correctiveAction.String,
	}

	if t, err := time.Parse(time.RFC3339, occurredAt); err == nil {
		episode.OccurredAt = t
	}

	return episode, nil
}
