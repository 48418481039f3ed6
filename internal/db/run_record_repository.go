package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// Run record repository errors.
var (
	ErrRunRecordNotFound = errors.New("run record not found")
)

// RunRecordRepository handles run record persistence. The collection is
// append-only: records are created once and never updated.
type RunRecordRepository struct {
	db *DB
}

// NewRunRecordRepository creates a new RunRecordRepository.
func NewRunRecordRepository(db *DB) *RunRecordRepository {
	return &RunRecordRepository{db: db}
}

// Create appends a new run record.
func (r *RunRecordRepository) Create(ctx context.Context, record *models.RunRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := record.Validate(); err != nil {
		return err
	}

	var metadataJSON *string
	if record.Metadata != nil {
		data, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal run record metadata: %w", err)
		}
		value := string(data)
		metadataJSON = &value
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO run_records (
			id, iteration, suite_path, started_at, finished_at,
			task_count, passed, failed, timed_out, errored,
			duration_ms, tokens_in, tokens_out, cost_usd,
			detail_path, metadata_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Iteration,
		record.SuitePath,
		record.StartedAt.Format(time.RFC3339),
		stringTimePtr(record.FinishedAt),
		record.TaskCount,
		record.Passed,
		record.Failed,
		record.TimedOut,
		record.Errored,
		record.DurationMs,
		record.TokensIn,
		record.TokensOut,
		record.CostUSD,
		nullableString(record.DetailPath),
		metadataJSON,
		record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	return nil
}

// Get retrieves a run record by ID.
func (r *RunRecordRepository) Get(ctx context.Context, id string) (*models.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, iteration, suite_path, started_at, finished_at,
			task_count, passed, failed, timed_out, errored,
			duration_ms, tokens_in, tokens_out, cost_usd,
			detail_path, metadata_json, created_at
		FROM run_records WHERE id = ?
	`, id)

	return r.scanRunRecord(row)
}

// ListRecent retrieves the n most recent run records, newest first.
func (r *RunRecordRepository) ListRecent(ctx context.Context, n int) ([]*models.RunRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, iteration, suite_path, started_at, finished_at,
			task_count, passed, failed, timed_out, errored,
			duration_ms, tokens_in, tokens_out, cost_usd,
			detail_path, metadata_json, created_at
		FROM run_records
		ORDER BY started_at DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.RunRecord, 0)
	for rows.Next() {
		record, err := r.scanRunRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func (r *RunRecordRepository) scanRunRecord(scanner interface{ Scan(...any) error }) (*models.RunRecord, error) {
	var (
		id           string
		iteration    int
		suitePath    string
		startedAt    string
		finishedAt   sql.NullString
		taskCount    int
		passed       int
		failed       int
		timedOut     int
		errored      int
		durationMs   int64
		tokensIn     int64
		tokensOut    int64
		costUSD      float64
		detailPath   sql.NullString
		metadataJSON sql.NullString
		createdAt    string
	)

	if err := scanner.Scan(
		&id,
		&iteration,
		&suitePath,
		&startedAt,
		&finishedAt,
		&taskCount,
		&passed,
		&failed,
		&timedOut,
		&errored,
		&durationMs,
		&tokensIn,
		&tokensOut,
		&costUSD,
		&detailPath,
		&metadataJSON,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunRecordNotFound
		}
		return nil, fmt.Errorf("failed to scan run record: %w", err)
	}

	record := &models.RunRecord{
		ID:         id,
		Iteration:  iteration,
		SuitePath:  suitePath,
		TaskCount:  taskCount,
		Passed:     passed,
		Failed:     failed,
		TimedOut:   timedOut,
		Errored:    errored,
		DurationMs: durationMs,
		TokensIn:   tokensIn,
		TokensOut:  tokensOut,
		CostUSD:    costUSD,
		DetailPath: detailPath.String,
	}

	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		record.StartedAt = t
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		record.CreatedAt = t
	}
	if finishedAt.Valid && finishedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, finishedAt.String); err == nil {
			record.FinishedAt = &t
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		_ = json.Unmarshal([]byte(metadataJSON.String), &record.Metadata)
	}

	return record, nil
}

func stringTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := t.UTC().Format(time.RFC3339)
	return &value
}
