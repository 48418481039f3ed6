package looprunner

import (
	"context"

	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// runProgressive advances through suites of increasing difficulty. A
// suite is passed only when the health gate is ok and the pass rate
// meets the floor; the runner never scores a harder suite with a
// demonstrably broken toolchain.
func (r *Runner) runProgressive(ctx context.Context, cfg models.LoopConfig, st *state) (*Outcome, error) {
	st.phase = models.LoopStateRunning
	r.Logger.Info().
		Int("suites", len(cfg.SuiteSequence)).
		Int("budget", cfg.IterationBudget).
		Msg("progressive loop started")

	if err := r.refreshSummary(ctx, cfg, st); err != nil {
		st.phase = models.LoopStateFailed
		return st.outcome(), &RunError{Iteration: st.iteration, Err: err}
	}

	for {
		if ctx.Err() != nil {
			r.Logger.Info().Msg("progressive loop cancelled between iterations")
			st.phase = models.LoopStateHalted
			return st.outcome(), ctx.Err()
		}

		if st.suiteIndex >= len(cfg.SuiteSequence) {
			st.phase = models.LoopStateCompleted
			r.Logger.Info().Int("suites", st.suiteIndex).Msg("all suites passed")
			return st.outcome(), nil
		}

		if st.iteration >= cfg.IterationBudget {
			st.phase = models.LoopStateCompleted
			r.Logger.Info().
				Int("iterations", st.iteration).
				Int("suites_completed", st.suiteIndex).
				Msg("iteration budget exhausted before final suite")
			return st.outcome(), nil
		}

		suite := cfg.SuiteSequence[st.suiteIndex]
		result, err := r.runIteration(ctx, cfg, suite, st)
		if err != nil {
			st.phase = models.LoopStateFailed
			return st.outcome(), err
		}
		st.absorb(*result)
		r.updateFailureCounter(cfg, st, result.record)

		gateOK := result.verdict == nil || result.verdict.OK
		passed := result.record != nil &&
			result.record.TaskCount > 0 &&
			result.record.PassRate() >= cfg.PassRateFloor

		if gateOK && passed {
			r.Logger.Info().
				Str("suite", suite).
				Float64("pass_rate", result.record.PassRate()).
				Msg("suite gate satisfied, advancing")
			st.suiteIndex++
			st.consecutiveFailures = 0
			if err := r.refreshSummary(ctx, cfg, st); err != nil {
				st.phase = models.LoopStateFailed
				return st.outcome(), &RunError{Iteration: st.iteration, Err: err}
			}
			continue
		}

		if st.consecutiveFailures >= cfg.HaltOnConsecutiveFailures {
			r.Logger.Warn().
				Str("suite", suite).
				Int("consecutive_failures", st.consecutiveFailures).
				Msg("halting on consecutive failures")
			st.phase = models.LoopStateHalted
			return st.outcome(), nil
		}

		if cfg.RequireHealthGate && !gateOK {
			r.Logger.Warn().Str("suite", suite).Msg("halting on health gate failure")
			st.phase = models.LoopStateHalted
			return st.outcome(), nil
		}

		if err := r.refreshSummary(ctx, cfg, st); err != nil {
			st.phase = models.LoopStateFailed
			return st.outcome(), &RunError{Iteration: st.iteration, Err: err}
		}

		r.sleep(ctx, r.BackoffInterval)
	}
}
