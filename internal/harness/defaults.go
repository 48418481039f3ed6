package harness

import "github.com/OpenAgentsInc/openagents-sub011/internal/models"

// DefaultCommandTemplate returns the default command template for a harness.
func DefaultCommandTemplate(harness models.Harness, model string) string {
	switch harness {
	case models.HarnessPi:
		return "pi -p \"$" + PromptContentEnv + "\""
	case models.HarnessClaude:
		return "claude -p \"$" + PromptContentEnv + "\" --dangerously-skip-permissions"
	case models.HarnessCodex:
		return "codex exec --full-auto -"
	case models.HarnessOpenCode:
		if model == "" {
			model = "anthropic/claude-opus-4-5"
		}
		return "opencode run --model " + model + " \"$" + PromptContentEnv + "\""
	default:
		return ""
	}
}

// DefaultPromptMode returns the default prompt mode for a harness.
func DefaultPromptMode(harness models.Harness) models.PromptMode {
	switch harness {
	case models.HarnessCodex:
		return models.PromptModeStdin
	case models.HarnessPi, models.HarnessClaude, models.HarnessOpenCode:
		return models.PromptModeEnv
	default:
		return models.PromptModeEnv
	}
}
