package models

import "time"

// FailureCategory classifies why an episode failed. The set is closed:
// unknown inputs are mapped to CategoryUnknown at the boundary, never
// carried through as free-form strings.
type FailureCategory string

const (
	CategoryTypeError   FailureCategory = "type_error"
	CategoryImportError FailureCategory = "import_error"
	CategorySyntaxError FailureCategory = "syntax_error"
	CategoryRuntime     FailureCategory = "runtime_error"
	CategoryTestFailure FailureCategory = "test_failure"
	CategoryBuildError  FailureCategory = "build_error"
	CategoryTimeout     FailureCategory = "timeout"
	CategoryToolError   FailureCategory = "tool_error"
	CategoryLogicError  FailureCategory = "logic_error"
	CategoryUnknown     FailureCategory = "unknown"
)

// KnownCategory reports whether the tag belongs to the closed category set.
func KnownCategory(c FailureCategory) bool {
	switch c {
	case CategoryTypeError, CategoryImportError, CategorySyntaxError,
		CategoryRuntime, CategoryTestFailure, CategoryBuildError,
		CategoryTimeout, CategoryToolError, CategoryLogicError, CategoryUnknown:
		return true
	default:
		return false
	}
}

// EpisodeRecord is the recorded trace of one agent attempt at one task.
// The learner only requires the failure category and corrective action;
// everything else is context.
type EpisodeRecord struct {
	ID               string          `json:"id"`
	RunID            string          `json:"run_id,omitempty"`
	TaskID           string          `json:"task_id,omitempty"`
	Passed           bool            `json:"passed"`
	Category         FailureCategory `json:"category"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	CorrectiveAction string          `json:"corrective_action,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// Validate checks required fields on a failing episode.
func (e *EpisodeRecord) Validate() error {
	validation := &ValidationErrors{}
	if !e.Passed && e.Category == "" {
		validation.Add("category", ErrInvalidEpisodeCategory)
	}
	if e.Category != "" && !KnownCategory(e.Category) {
		validation.AddMessage("category", "unknown failure category "+string(e.Category))
	}
	return validation.Err()
}
