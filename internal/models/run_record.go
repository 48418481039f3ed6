package models

import "time"

// RunRecord captures one completed benchmark iteration. Records are
// append-only: once written by the loop runner they are never updated.
type RunRecord struct {
	ID         string     `json:"id"`
	Iteration  int        `json:"iteration"`
	SuitePath  string     `json:"suite_path"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Per-task outcome counts. Passed+Failed+TimedOut+Errored == TaskCount.
	TaskCount int `json:"task_count"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	TimedOut  int `json:"timed_out"`
	Errored   int `json:"errored"`

	DurationMs int64   `json:"duration_ms"`
	TokensIn   int64   `json:"tokens_in"`
	TokensOut  int64   `json:"tokens_out"`
	CostUSD    float64 `json:"cost_usd"`

	// DetailPath points at the full run log on disk.
	DetailPath string         `json:"detail_path,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PassRate returns the fraction of tasks that passed, 0 for an empty run.
func (r *RunRecord) PassRate() float64 {
	if r.TaskCount == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.TaskCount)
}

// Validate checks if the run record is internally consistent.
func (r *RunRecord) Validate() error {
	validation := &ValidationErrors{}
	if r.SuitePath == "" {
		validation.Add("suite_path", ErrInvalidRunRecordSuite)
	}
	if r.Passed+r.Failed+r.TimedOut+r.Errored != r.TaskCount {
		validation.Add("task_count", ErrInvalidRunRecordCounts)
	}
	if r.Iteration < 0 {
		validation.AddMessage("iteration", "iteration must be >= 0")
	}
	return validation.Err()
}
