package models

import "time"

// CheckKind identifies which command list a health check came from.
type CheckKind string

const (
	CheckKindTypecheck CheckKind = "typecheck"
	CheckKindTest      CheckKind = "test"
	CheckKindE2E       CheckKind = "e2e"
)

// HealthCheckResult is one command's outcome inside a health gate run.
// Non-zero exit codes are data here, not errors.
type HealthCheckResult struct {
	Kind     CheckKind     `json:"kind"`
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration_ms"`
}

// HealthVerdict reduces a battery of checks to one pass/fail answer
// while keeping every result visible.
type HealthVerdict struct {
	OK      bool                `json:"ok"`
	Results []HealthCheckResult `json:"results"`
}

// FailingResults returns the subset of results with non-zero exit codes.
func (v *HealthVerdict) FailingResults() []HealthCheckResult {
	failing := make([]HealthCheckResult, 0)
	for _, result := range v.Results {
		if result.ExitCode != 0 {
			failing = append(failing, result)
		}
	}
	return failing
}
