package looprunner

import (
	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// state is the process-scoped loop runner state. Its lifecycle is bound
// to one invocation: reset on entry, mutated only by the runner, never
// shared across invocations.
type state struct {
	phase               models.LoopState
	iteration           int
	consecutiveFailures int
	suiteIndex          int

	totalTasks  int
	totalPassed int
	tokensIn    int64
	tokensOut   int64
	costUSD     float64

	lastRecord  *models.RunRecord
	lastVerdict *models.HealthVerdict
	lastSummary *models.LearningSummary
}

func newState() *state {
	return &state{phase: models.LoopStateIdle}
}

// iterationResult is the runner's internal synthesis of one iteration.
// It lives for one loop pass and is folded into the state.
type iterationResult struct {
	record          *models.RunRecord
	verdict         *models.HealthVerdict
	learningApplied bool
}

func (s *state) absorb(result iterationResult) {
	s.iteration++
	s.lastRecord = result.record
	if result.verdict != nil {
		s.lastVerdict = result.verdict
	}
	if result.record != nil {
		s.totalTasks += result.record.TaskCount
		s.totalPassed += result.record.Passed
		s.tokensIn += result.record.TokensIn
		s.tokensOut += result.record.TokensOut
		s.costUSD += result.record.CostUSD
	}
}

// Outcome is the caller-visible result of one invocation. It is always
// produced, including on fatal error paths, so the terminal state, last
// run record, and last gate verdict stay observable.
type Outcome struct {
	State               models.LoopState        `json:"state"`
	Iterations          int                     `json:"iterations"`
	ConsecutiveFailures int                     `json:"consecutive_failures"`
	TotalTasks          int                     `json:"total_tasks"`
	TotalPassed         int                     `json:"total_passed"`
	TokensIn            int64                   `json:"tokens_in"`
	TokensOut           int64                   `json:"tokens_out"`
	CostUSD             float64                 `json:"cost_usd"`
	SuitesCompleted     int                     `json:"suites_completed,omitempty"`
	LastRecord          *models.RunRecord       `json:"last_record,omitempty"`
	LastVerdict         *models.HealthVerdict   `json:"last_verdict,omitempty"`
	LastSummary         *models.LearningSummary `json:"last_summary,omitempty"`
}

func (s *state) outcome() *Outcome {
	return &Outcome{
		State:               s.phase,
		Iterations:          s.iteration,
		ConsecutiveFailures: s.consecutiveFailures,
		TotalTasks:          s.totalTasks,
		TotalPassed:         s.totalPassed,
		TokensIn:            s.tokensIn,
		TokensOut:           s.tokensOut,
		CostUSD:             s.costUSD,
		SuitesCompleted:     s.suiteIndex,
		LastRecord:          s.lastRecord,
		LastVerdict:         s.lastVerdict,
		LastSummary:         s.lastSummary,
	}
}
