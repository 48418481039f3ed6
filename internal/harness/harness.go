// Package harness prepares agent child-process executions from a profile
// and a prompt. It knows how each supported harness wants its prompt
// delivered but nothing about loops or benchmarks.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// PromptContentEnv is the environment variable used for env-mode prompt
// delivery.
const PromptContentEnv = "TRAINLOOP_PROMPT_CONTENT"

// Execution represents a prepared harness execution.
type Execution struct {
	Cmd   *exec.Cmd
	Stdin io.Reader
	Env   []string
}

// BuildExecution prepares a harness command based on profile and prompt settings.
func BuildExecution(ctx context.Context, profile models.Profile, promptPath, promptContent string) (*Execution, error) {
	command := strings.TrimSpace(profile.CommandTemplate)
	if command == "" {
		command = DefaultCommandTemplate(profile.Harness, profile.Model)
	}
	if command == "" {
		return nil, errors.New("command template is required")
	}

	if len(profile.ExtraArgs) > 0 {
		command = command + " " + strings.Join(profile.ExtraArgs, " ")
	}

	promptMode := profile.PromptMode
	if promptMode == "" {
		promptMode = DefaultPromptMode(profile.Harness)
	}

	switch promptMode {
	case models.PromptModePath:
		if promptPath == "" {
			return nil, errors.New("prompt path is required for path mode")
		}
		command = strings.ReplaceAll(command, "{prompt}", promptPath)
	case models.PromptModeEnv, models.PromptModeStdin:
		// no-op
	default:
		return nil, fmt.Errorf("unknown prompt mode %q", promptMode)
	}

	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	stdin := io.Reader(nil)

	env := baseEnv(profile, promptMode, promptContent)
	cmd.Env = env
	if promptMode == models.PromptModeStdin {
		stdin = strings.NewReader(promptContent)
		cmd.Stdin = stdin
	}

	return &Execution{Cmd: cmd, Stdin: stdin, Env: env}, nil
}

func baseEnv(profile models.Profile, mode models.PromptMode, promptContent string) []string {
	env := append([]string{}, os.Environ()...)

	if mode == models.PromptModeEnv {
		env = append(env, PromptContentEnv+"="+promptContent)
	}

	for key, value := range profile.Env {
		env = append(env, key+"="+value)
	}

	return env
}
