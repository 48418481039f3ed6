package looprunner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/OpenAgentsInc/openagents-sub011/internal/harness"
	"github.com/OpenAgentsInc/openagents-sub011/internal/logging"
	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// SuiteOptions carries per-invocation context into the benchmark
// capability.
type SuiteOptions struct {
	// WorkDir is the workspace the suite runs against.
	WorkDir string

	// LearningContext is the rendered learning summary folded into the
	// agent's prompt.
	LearningContext string

	// Timeout is advisory; the orchestrator already bounds the context.
	Timeout time.Duration
}

// AgentRunner is the external benchmark-running capability. The
// orchestrator treats it as a black box that resolves with a run record
// or fails with an infrastructure error.
type AgentRunner interface {
	RunSuite(ctx context.Context, suitePath string, opts SuiteOptions) (*models.RunRecord, error)
}

// EpisodeSink receives per-task episodes extracted from a suite run.
type EpisodeSink interface {
	Create(ctx context.Context, episode *models.EpisodeRecord) error
}

// suiteSummary is the trailing JSON line a harness emits when a suite
// finishes.
type suiteSummary struct {
	Tasks     int     `json:"tasks"`
	Passed    int     `json:"passed"`
	Failed    int     `json:"failed"`
	TimedOut  int     `json:"timedOut"`
	Errored   int     `json:"errored"`
	TokensIn  int64   `json:"tokensIn"`
	TokensOut int64   `json:"tokensOut"`
	CostUSD   float64 `json:"costUsd"`
	Episodes  []struct {
		TaskID           string `json:"taskId"`
		Passed           bool   `json:"passed"`
		Category         string `json:"category"`
		ErrorMessage     string `json:"errorMessage"`
		CorrectiveAction string `json:"correctiveAction"`
	} `json:"episodes"`
}

// HarnessRunner is the default AgentRunner: it shells the configured
// agent harness out once per suite and reads the trailing summary line
// from its output.
type HarnessRunner struct {
	Profile   models.Profile
	RunLogDir string
	Episodes  EpisodeSink
	Logger    zerolog.Logger
}

// NewHarnessRunner creates a HarnessRunner for a profile.
func NewHarnessRunner(profile models.Profile, runLogDir string, episodes EpisodeSink) *HarnessRunner {
	return &HarnessRunner{
		Profile:   profile,
		RunLogDir: runLogDir,
		Episodes:  episodes,
		Logger:    logging.Component("agent"),
	}
}

// RunSuite runs the harness against one suite. Task-level parallelism is
// owned by the harness; the context deadline bounds the whole iteration.
func (h *HarnessRunner) RunSuite(ctx context.Context, suitePath string, opts SuiteOptions) (*models.RunRecord, error) {
	runID := uuid.New().String()
	prompt := buildSuitePrompt(suitePath, opts.LearningContext)

	promptFile, err := writePromptFile(prompt)
	if err != nil {
		return nil, err
	}
	defer os.Remove(promptFile)

	execution, err := harness.BuildExecution(ctx, h.Profile, promptFile, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare harness execution: %w", err)
	}
	execution.Cmd.Dir = opts.WorkDir

	detailPath, detailFile, err := h.openDetailLog(runID)
	if err != nil {
		return nil, err
	}
	if detailFile != nil {
		defer detailFile.Close()
	}

	var output strings.Builder
	writer := io.Writer(&output)
	if detailFile != nil {
		writer = io.MultiWriter(&output, detailFile)
	}
	execution.Cmd.Stdout = writer
	execution.Cmd.Stderr = writer

	start := time.Now().UTC()
	runErr := execution.Cmd.Run()
	finished := time.Now().UTC()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("suite run cancelled: %w", ctx.Err())
	}
	if runErr != nil {
		return nil, fmt.Errorf("harness exited abnormally: %w", runErr)
	}

	summary, err := parseSuiteSummary(output.String())
	if err != nil {
		return nil, err
	}

	record := &models.RunRecord{
		ID:         runID,
		SuitePath:  suitePath,
		StartedAt:  start,
		FinishedAt: &finished,
		TaskCount:  summary.Tasks,
		Passed:     summary.Passed,
		Failed:     summary.Failed,
		TimedOut:   summary.TimedOut,
		Errored:    summary.Errored,
		DurationMs: finished.Sub(start).Milliseconds(),
		TokensIn:   summary.TokensIn,
		TokensOut:  summary.TokensOut,
		CostUSD:    summary.CostUSD,
		DetailPath: detailPath,
	}

	h.recordEpisodes(ctx, record, summary)

	return record, nil
}

func (h *HarnessRunner) openDetailLog(runID string) (string, *os.File, error) {
	if h.RunLogDir == "" {
		return "", nil, nil
	}
	if err := os.MkdirAll(h.RunLogDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create run log dir: %w", err)
	}
	path := filepath.Join(h.RunLogDir, runID+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open run log: %w", err)
	}
	return path, file, nil
}

func (h *HarnessRunner) recordEpisodes(ctx context.Context, record *models.RunRecord, summary *suiteSummary) {
	if h.Episodes == nil {
		return
	}
	for _, entry := range summary.Episodes {
		episode := &models.EpisodeRecord{
			RunID:            record.ID,
			TaskID:           entry.TaskID,
			Passed:           entry.Passed,
			Category:         models.FailureCategory(entry.Category),
			ErrorMessage:     entry.ErrorMessage,
			CorrectiveAction: entry.CorrectiveAction,
			OccurredAt:       time.Now().UTC(),
		}
		if !models.KnownCategory(episode.Category) {
			episode.Category = models.CategoryUnknown
		}
		if err := h.Episodes.Create(ctx, episode); err != nil {
			h.Logger.Warn().Err(err).Str("task_id", entry.TaskID).Msg("failed to record episode")
		}
	}
}

func writePromptFile(prompt string) (string, error) {
	file, err := os.CreateTemp("", "trainloop-prompt-*.md")
	if err != nil {
		return "", fmt.Errorf("failed to create prompt file: %w", err)
	}
	if _, err := file.WriteString(prompt); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write prompt file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to close prompt file: %w", err)
	}
	return file.Name(), nil
}

func buildSuitePrompt(suitePath, learningContext string) string {
	var b strings.Builder
	b.WriteString("Run the benchmark suite at " + suitePath + " and report results.\n")
	b.WriteString("Finish by printing a single JSON line with fields: tasks, passed, failed, timedOut, errored, tokensIn, tokensOut, costUsd, episodes.\n")
	if learningContext != "" {
		b.WriteString("\n")
		b.WriteString(learningContext)
	}
	return b.String()
}

// parseSuiteSummary finds the last parseable summary line in the harness
// output.
func parseSuiteSummary(output string) (*suiteSummary, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var summary suiteSummary
		if err := json.Unmarshal([]byte(line), &summary); err != nil {
			continue
		}
		if summary.Tasks == 0 && summary.Passed == 0 && summary.Failed == 0 &&
			summary.TimedOut == 0 && summary.Errored == 0 {
			continue
		}
		if summary.Passed+summary.Failed+summary.TimedOut+summary.Errored != summary.Tasks {
			return nil, fmt.Errorf("suite summary counts do not add up: %s", line)
		}
		return &summary, nil
	}
	return nil, fmt.Errorf("no suite summary line found in harness output")
}
