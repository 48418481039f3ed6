// Package looprunner sequences benchmark iterations: it runs the agent
// against a suite, persists the run record, consults the health gate,
// refreshes the learning summary, and decides whether to continue, back
// off, or stop.
package looprunner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/OpenAgentsInc/openagents-sub011/internal/learner"
	"github.com/OpenAgentsInc/openagents-sub011/internal/logging"
	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

const defaultBackoffInterval = 10 * time.Second

// HealthGate is the runnable-workspace check consulted after each
// iteration.
type HealthGate interface {
	Check(ctx context.Context, root string) (*models.HealthVerdict, error)
}

// RunRecordStore persists run records. Append-only.
type RunRecordStore interface {
	Create(ctx context.Context, record *models.RunRecord) error
}

// Summarizer refreshes the learning summary between iterations.
type Summarizer interface {
	Summarize(ctx context.Context, n int) (*models.LearningSummary, error)
}

// Runner is the training loop orchestrator. Iterations run strictly
// sequentially: the benchmark capability may parallelize tasks inside
// one iteration, but two iterations never overlap on one workspace.
// Callers must not run two invocations against the same root
// concurrently; the runner does not lock the workspace.
type Runner struct {
	Agent   AgentRunner
	Gate    HealthGate
	Learner Summarizer
	Records RunRecordStore

	// Root is the workspace directory the health gate inspects.
	Root string

	// BackoffInterval is slept after an iteration below the pass-rate
	// floor, before the next dispatch. Cancellable.
	BackoffInterval time.Duration

	Logger zerolog.Logger
}

// NewRunner creates a Runner with default dependencies.
func NewRunner(agent AgentRunner, gate HealthGate, summarizer Summarizer, records RunRecordStore, root string) *Runner {
	return &Runner{
		Agent:           agent,
		Gate:            gate,
		Learner:         summarizer,
		Records:         records,
		Root:            root,
		BackoffInterval: defaultBackoffInterval,
		Logger:          logging.Component("looprunner"),
	}
}

// Run executes one loop invocation. The returned Outcome is never nil:
// terminal state, last run record, and last gate verdict remain
// observable even when err is non-nil.
//
// Cancellation is cooperative: the context is checked at iteration
// boundaries and before dispatching the benchmark capability, never in
// the middle of a task.
func (r *Runner) Run(ctx context.Context, cfg models.LoopConfig) (*Outcome, error) {
	st := newState()

	if err := cfg.Validate(); err != nil {
		st.phase = models.LoopStateFailed
		return st.outcome(), &RunError{Iteration: 0, Err: err}
	}
	if r.Agent == nil || r.Records == nil {
		st.phase = models.LoopStateFailed
		return st.outcome(), &RunError{Iteration: 0, Err: errors.New("runner requires an agent and a record store")}
	}

	if len(cfg.SuiteSequence) > 0 {
		return r.runProgressive(ctx, cfg, st)
	}

	st.phase = models.LoopStateRunning
	r.Logger.Info().
		Str("suite", cfg.SuitePath).
		Int("budget", cfg.IterationBudget).
		Bool("overnight", cfg.Overnight).
		Msg("loop started")

	if err := r.refreshSummary(ctx, cfg, st); err != nil {
		st.phase = models.LoopStateFailed
		return st.outcome(), &RunError{Iteration: st.iteration, Err: err}
	}

	for {
		if ctx.Err() != nil {
			r.Logger.Info().Msg("loop cancelled between iterations")
			st.phase = models.LoopStateHalted
			return st.outcome(), ctx.Err()
		}

		result, err := r.runIteration(ctx, cfg, cfg.SuitePath, st)
		if err != nil {
			st.phase = models.LoopStateFailed
			return st.outcome(), err
		}
		st.absorb(*result)
		r.updateFailureCounter(cfg, st, result.record)

		if st.consecutiveFailures >= cfg.HaltOnConsecutiveFailures {
			// A persistently broken workspace; more iterations would be
			// wasted.
			r.Logger.Warn().
				Int("consecutive_failures", st.consecutiveFailures).
				Msg("halting on consecutive failures")
			st.phase = models.LoopStateHalted
			return st.outcome(), nil
		}

		if cfg.RequireHealthGate && result.verdict != nil && !result.verdict.OK {
			// Halted, not Failed: this is a recoverable needs-human state,
			// resumable from the next iteration by a fresh invocation.
			r.Logger.Warn().
				Int("failing_checks", len(result.verdict.FailingResults())).
				Msg("halting on health gate failure")
			st.phase = models.LoopStateHalted
			return st.outcome(), nil
		}

		if st.iteration >= cfg.IterationBudget {
			st.phase = models.LoopStateCompleted
			r.Logger.Info().Int("iterations", st.iteration).Msg("iteration budget exhausted")
			return st.outcome(), nil
		}

		if err := r.refreshSummary(ctx, cfg, st); err != nil {
			st.phase = models.LoopStateFailed
			return st.outcome(), &RunError{Iteration: st.iteration, Err: err}
		}

		if result.record != nil && result.record.PassRate() < cfg.PassRateFloor {
			r.sleep(ctx, r.BackoffInterval)
		}
	}
}

// runIteration dispatches the benchmark capability once and persists the
// resulting run record. Any unexpected error here is an infrastructure
// error, not an expected per-task failure.
func (r *Runner) runIteration(ctx context.Context, cfg models.LoopConfig, suitePath string, st *state) (*iterationResult, error) {
	iteration := st.iteration + 1

	iterCtx := ctx
	cancel := context.CancelFunc(func() {})
	if cfg.PerIterationTimeout > 0 {
		iterCtx, cancel = context.WithTimeout(ctx, cfg.PerIterationTimeout)
	}
	defer cancel()

	record, err := r.Agent.RunSuite(iterCtx, suitePath, SuiteOptions{
		WorkDir:         r.Root,
		LearningContext: learner.FormatForPrompt(st.lastSummary),
		Timeout:         cfg.PerIterationTimeout,
	})
	if err != nil {
		return nil, &RunError{Iteration: iteration, Err: err}
	}

	record.Iteration = iteration
	if err := r.Records.Create(ctx, record); err != nil {
		return nil, &RunError{Iteration: iteration, Err: err}
	}

	r.Logger.Info().
		Int("iteration", iteration).
		Int("tasks", record.TaskCount).
		Int("passed", record.Passed).
		Float64("pass_rate", record.PassRate()).
		Msg("iteration recorded")

	result := &iterationResult{
		record:          record,
		learningApplied: st.lastSummary != nil && len(st.lastSummary.Reflections) > 0,
	}

	if r.Gate != nil {
		verdict, err := r.Gate.Check(ctx, r.Root)
		if err != nil {
			// Includes ConfigNotFound: configuration errors are fatal and
			// surfaced immediately, no retry.
			return nil, &RunError{Iteration: iteration, Err: err}
		}
		result.verdict = verdict
	}

	return result, nil
}

func (r *Runner) updateFailureCounter(cfg models.LoopConfig, st *state, record *models.RunRecord) {
	if record != nil && record.PassRate() >= cfg.PassRateFloor && record.TaskCount > 0 {
		st.consecutiveFailures = 0
		return
	}
	st.consecutiveFailures++
}

func (r *Runner) refreshSummary(ctx context.Context, cfg models.LoopConfig, st *state) error {
	if r.Learner == nil || cfg.LearningWindow <= 0 {
		return nil
	}
	summary, err := r.Learner.Summarize(ctx, cfg.LearningWindow)
	if err != nil {
		return err
	}
	st.lastSummary = summary
	return nil
}

func (r *Runner) sleep(ctx context.Context, duration time.Duration) {
	if duration <= 0 {
		return
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
