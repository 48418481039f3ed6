package models

import "errors"

// Validation errors for models
var (
	// Run record errors
	ErrInvalidRunRecordSuite  = errors.New("run record suite path is required")
	ErrInvalidRunRecordCounts = errors.New("task outcome counts must sum to task count")

	// Episode errors
	ErrInvalidEpisodeCategory = errors.New("episode failure category is required")

	// Loop config errors
	ErrInvalidIterationBudget = errors.New("iteration budget must be positive")
	ErrInvalidHaltThreshold   = errors.New("consecutive-failure halt threshold must be positive")
	ErrMissingSuite           = errors.New("a suite path or suite sequence is required")

	// Profile errors
	ErrInvalidProfileName     = errors.New("profile name is required")
	ErrInvalidProfileHarness  = errors.New("unknown harness")
	ErrInvalidCommandTemplate = errors.New("command template is required")
)
