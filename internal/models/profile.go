package models

import "errors"

// Harness identifies an agent harness implementation. The set is closed;
// Profile.Validate rejects unknown tags at the boundary.
type Harness string

const (
	HarnessClaude   Harness = "claude"
	HarnessCodex    Harness = "codex"
	HarnessOpenCode Harness = "opencode"
	HarnessPi       Harness = "pi"
)

// PromptMode controls how the learning context and suite prompt are
// delivered to a harness.
type PromptMode string

const (
	PromptModeEnv   PromptMode = "env"
	PromptModeStdin PromptMode = "stdin"
	PromptModePath  PromptMode = "path"
)

// Profile represents a harness+model combination used to run benchmarks.
type Profile struct {
	Name            string            `json:"name"`
	Harness         Harness           `json:"harness"`
	PromptMode      PromptMode        `json:"prompt_mode"`
	CommandTemplate string            `json:"command_template"`
	Model           string            `json:"model,omitempty"`
	ExtraArgs       []string          `json:"extra_args,omitempty"`
	Env             map[string]string `json:"env,omitempty"`
}

// Validate checks if the profile configuration is valid.
func (p *Profile) Validate() error {
	validation := &ValidationErrors{}
	if p.Name == "" {
		validation.Add("name", ErrInvalidProfileName)
	}
	if p.CommandTemplate == "" {
		validation.Add("command_template", ErrInvalidCommandTemplate)
	}
	if validation.Err() != nil {
		return validation.Err()
	}

	switch p.Harness {
	case HarnessClaude, HarnessCodex, HarnessOpenCode, HarnessPi:
		// ok
	default:
		return ErrInvalidProfileHarness
	}

	switch p.PromptMode {
	case "", PromptModeEnv, PromptModeStdin, PromptModePath:
		return nil
	default:
		return errors.New("invalid prompt_mode")
	}
}

// DefaultPromptMode returns the default prompt mode for profiles.
func DefaultPromptMode() PromptMode {
	return PromptModeEnv
}
