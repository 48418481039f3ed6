package looprunner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

func progressiveConfig(suites ...string) models.LoopConfig {
	return models.LoopConfig{
		SuiteSequence:             suites,
		IterationBudget:           10,
		HaltOnConsecutiveFailures: 3,
		PassRateFloor:             0.5,
		RequireHealthGate:         true,
		LearningWindow:            10,
	}
}

func TestProgressiveAdvancesThroughSuites(t *testing.T) {
	agent := &fakeAgent{records: []*models.RunRecord{record("", 10, 10)}}
	runner := newTestRunner(agent, &fakeGate{}, &fakeSummarizer{}, &fakeStore{})

	outcome, err := runner.Run(context.Background(), progressiveConfig("easy", "medium", "hard"))
	require.NoError(t, err)

	assert.Equal(t, models.LoopStateCompleted, outcome.State)
	assert.Equal(t, 3, outcome.SuitesCompleted)
	assert.Equal(t, []string{"easy", "medium", "hard"}, agent.suites)
}

func TestProgressiveRetriesSuiteBelowFloor(t *testing.T) {
	agent := &fakeAgent{records: []*models.RunRecord{
		record("", 10, 2), // easy, below floor
		record("", 10, 9), // easy again, passes
		record("", 10, 10),
	}}
	runner := newTestRunner(agent, &fakeGate{}, &fakeSummarizer{}, &fakeStore{})

	outcome, err := runner.Run(context.Background(), progressiveConfig("easy", "medium"))
	require.NoError(t, err)

	assert.Equal(t, models.LoopStateCompleted, outcome.State)
	assert.Equal(t, 2, outcome.SuitesCompleted)
	assert.Equal(t, []string{"easy", "easy", "medium"}, agent.suites)
}

func TestProgressiveNeverAdvancesWhileGateFails(t *testing.T) {
	agent := &fakeAgent{records: []*models.RunRecord{record("", 10, 10)}}
	gate := &fakeGate{verdicts: []*models.HealthVerdict{{OK: false}}}
	runner := newTestRunner(agent, gate, &fakeSummarizer{}, &fakeStore{})

	outcome, err := runner.Run(context.Background(), progressiveConfig("easy", "medium"))
	require.NoError(t, err)

	assert.Equal(t, models.LoopStateHalted, outcome.State)
	assert.Equal(t, 0, outcome.SuitesCompleted, "a perfect score cannot advance past a failing gate")
	assert.Equal(t, []string{"easy"}, agent.suites)
}

func TestProgressiveGateRecoveryAllowsAdvance(t *testing.T) {
	agent := &fakeAgent{records: []*models.RunRecord{record("", 10, 10)}}
	gate := &fakeGate{verdicts: []*models.HealthVerdict{{OK: false}, {OK: true}}}
	cfg := progressiveConfig("easy", "medium")
	cfg.RequireHealthGate = false // broken gate retries instead of halting

	runner := newTestRunner(agent, gate, &fakeSummarizer{}, &fakeStore{})
	outcome, err := runner.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, models.LoopStateCompleted, outcome.State)
	assert.Equal(t, []string{"easy", "easy", "medium"}, agent.suites)
}

func TestProgressiveHaltsOnConsecutiveFailures(t *testing.T) {
	agent := &fakeAgent{records: []*models.RunRecord{record("", 10, 0)}}
	runner := newTestRunner(agent, &fakeGate{}, &fakeSummarizer{}, &fakeStore{})

	cfg := progressiveConfig("easy", "medium")
	cfg.HaltOnConsecutiveFailures = 2

	outcome, err := runner.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, models.LoopStateHalted, outcome.State)
	assert.Equal(t, 2, outcome.Iterations)
	assert.Equal(t, 0, outcome.SuitesCompleted)
}

func TestProgressiveStopsAtIterationBudget(t *testing.T) {
	agent := &fakeAgent{records: []*models.RunRecord{record("", 10, 4)}} // always below floor
	cfg := progressiveConfig("easy", "medium")
	cfg.IterationBudget = 4
	cfg.HaltOnConsecutiveFailures = 100

	runner := newTestRunner(agent, &fakeGate{}, &fakeSummarizer{}, &fakeStore{})
	outcome, err := runner.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, models.LoopStateCompleted, outcome.State)
	assert.Equal(t, 4, outcome.Iterations)
	assert.Equal(t, 0, outcome.SuitesCompleted)
}

func TestProgressiveCancelledBetweenSuites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(&fakeAgent{}, &fakeGate{}, &fakeSummarizer{}, &fakeStore{})
	outcome, err := runner.Run(ctx, progressiveConfig("easy"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.LoopStateHalted, outcome.State)
}
