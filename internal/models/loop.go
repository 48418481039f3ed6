package models

import "time"

// LoopState represents the loop runner's position in its lifecycle.
type LoopState string

const (
	LoopStateIdle      LoopState = "idle"
	LoopStateRunning   LoopState = "running"
	LoopStateCompleted LoopState = "completed"
	LoopStateHalted    LoopState = "halted"
	LoopStateFailed    LoopState = "failed"
)

// Terminal reports whether the state ends an invocation.
func (s LoopState) Terminal() bool {
	switch s {
	case LoopStateCompleted, LoopStateHalted, LoopStateFailed:
		return true
	default:
		return false
	}
}

// LoopConfig is the caller-supplied configuration for one loop invocation.
type LoopConfig struct {
	// SuitePath is the benchmark suite to run each iteration. Ignored when
	// SuiteSequence is set (progressive mode).
	SuitePath string `json:"suite_path,omitempty"`

	// SuiteSequence enables progressive mode: suites ordered by difficulty,
	// each gated on health and pass rate before advancing.
	SuiteSequence []string `json:"suite_sequence,omitempty"`

	// IterationBudget is the total number of iterations to run.
	IterationBudget int `json:"iteration_budget"`

	// PerIterationTimeout bounds a single benchmark invocation.
	PerIterationTimeout time.Duration `json:"per_iteration_timeout"`

	// HaltOnConsecutiveFailures halts the loop after this many iterations
	// in a row below the pass-rate floor.
	HaltOnConsecutiveFailures int `json:"halt_on_consecutive_failures"`

	// PassRateFloor is the pass rate at or above which an iteration resets
	// the consecutive-failure counter. Also gates progressive advancement.
	PassRateFloor float64 `json:"pass_rate_floor"`

	// RequireHealthGate halts the loop when the health gate fails.
	RequireHealthGate bool `json:"require_health_gate"`

	// Overnight marks an unattended invocation. The state machine is
	// identical; callers pair it with a large iteration budget.
	Overnight bool `json:"overnight"`

	// LearningWindow is how many recent episodes the learner considers.
	LearningWindow int `json:"learning_window"`
}

// Validate checks the loop configuration.
func (c *LoopConfig) Validate() error {
	validation := &ValidationErrors{}
	if c.IterationBudget <= 0 {
		validation.Add("iteration_budget", ErrInvalidIterationBudget)
	}
	if c.HaltOnConsecutiveFailures <= 0 {
		validation.Add("halt_on_consecutive_failures", ErrInvalidHaltThreshold)
	}
	if c.SuitePath == "" && len(c.SuiteSequence) == 0 {
		validation.Add("suite_path", ErrMissingSuite)
	}
	if c.PassRateFloor < 0 || c.PassRateFloor > 1 {
		validation.AddMessage("pass_rate_floor", "pass_rate_floor must be between 0 and 1")
	}
	if c.LearningWindow < 0 {
		validation.AddMessage("learning_window", "learning_window must be >= 0")
	}
	return validation.Err()
}
