package models

import "time"

// Reflection is a distilled lesson extracted from failing episodes that
// share a failure category. Read-only once created.
type Reflection struct {
	Category         FailureCategory `json:"category"`
	CorrectiveAction string          `json:"corrective_action"`
	Occurrences      int             `json:"occurrences"`
	Confidence       float64         `json:"confidence"`
	LastSeen         time.Time       `json:"last_seen"`
}

// LearningSummary aggregates reflections across a window of episodes.
// Each run of the learner supersedes the previous summary wholesale.
type LearningSummary struct {
	GeneratedAt     time.Time         `json:"generated_at"`
	WindowSize      int               `json:"window_size"`
	EpisodesScanned int               `json:"episodes_scanned"`
	SkippedEpisodes int               `json:"skipped_episodes"`
	TopCategories   []FailureCategory `json:"top_categories"`
	Reflections     []Reflection      `json:"reflections"`
}
