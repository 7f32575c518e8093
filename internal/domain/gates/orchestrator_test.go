package gates_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/abdidvp/kraftgate/internal/domain/gates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byID(results []domain.GateResult) map[domain.GateID]domain.GateResult {
	m := make(map[domain.GateID]domain.GateResult, len(results))
	for _, r := range results {
		m[r.GateID] = r
	}
	return m
}

func passing(_ context.Context, id domain.GateID, _ *gates.Input) (domain.GateResult, error) {
	time.Sleep(2 * time.Millisecond)
	return domain.GateResult{GateID: id, Status: domain.StatusPass, Score: 100}, nil
}

func TestRun_OneResultPerGateInOrder(t *testing.T) {
	results, err := gates.NewOrchestrator(gates.WithEvaluator(passing)).Run(context.Background(), &gates.Input{})
	require.NoError(t, err)
	require.Len(t, results, len(domain.AllGates))
	for i, id := range domain.AllGates {
		assert.Equal(t, id, results[i].GateID)
		assert.Equal(t, domain.StatusPass, results[i].Status)
	}
}

func TestRun_DependentsStartAfterPredecessorsComplete(t *testing.T) {
	g := gates.DefaultGraph()
	results, err := gates.NewOrchestrator(gates.WithEvaluator(passing), gates.WithMaxParallel(6)).
		Run(context.Background(), &gates.Input{})
	require.NoError(t, err)

	m := byID(results)
	for id, deps := range g {
		for _, dep := range deps {
			assert.False(t, m[id].StartedAt.Before(m[dep].CompletedAt),
				"%s started before %s completed", id, dep)
		}
	}
}

func TestRun_RealGatesOnEmptyInput(t *testing.T) {
	results, err := gates.NewOrchestrator().Run(context.Background(), &gates.Input{})
	require.NoError(t, err)
	m := byID(results)
	assert.Equal(t, domain.StatusPass, m[domain.GatePatternCompliance].Status)
	for _, id := range domain.AllGates[1:] {
		assert.Equal(t, domain.StatusSkip, m[id].Status, id)
	}
}

func TestRun_TimeoutFailsAndSkipsDependents(t *testing.T) {
	eval := func(ctx context.Context, id domain.GateID, in *gates.Input) (domain.GateResult, error) {
		if id == domain.GatePatternCompliance {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
		}
		return passing(ctx, id, in)
	}
	results, err := gates.NewOrchestrator(gates.WithEvaluator(eval), gates.WithTimeout(20*time.Millisecond)).
		Run(context.Background(), &gates.Input{})
	require.NoError(t, err)

	m := byID(results)
	pc := m[domain.GatePatternCompliance]
	assert.Equal(t, domain.StatusFail, pc.Status)
	assert.True(t, pc.TimedOut)
	assert.Contains(t, pc.Details, "timeout")

	for _, id := range []domain.GateID{domain.GateConstraintVerification, domain.GateSecurityBoundaries} {
		assert.Equal(t, domain.StatusSkip, m[id].Status)
		assert.Equal(t, domain.SkipDependency, m[id].SkipReason)
	}
	assert.Equal(t, domain.StatusPass, m[domain.GateTestCoverage].Status)
}

func TestRun_PlainFailDoesNotSkipDependents(t *testing.T) {
	eval := func(ctx context.Context, id domain.GateID, in *gates.Input) (domain.GateResult, error) {
		if id == domain.GatePatternCompliance {
			return domain.GateResult{Status: domain.StatusFail}, nil
		}
		return passing(ctx, id, in)
	}
	results, err := gates.NewOrchestrator(gates.WithEvaluator(eval)).Run(context.Background(), &gates.Input{})
	require.NoError(t, err)
	m := byID(results)
	assert.Equal(t, domain.StatusFail, m[domain.GatePatternCompliance].Status)
	assert.Equal(t, domain.StatusPass, m[domain.GateSecurityBoundaries].Status)
}

func TestRun_PanicAndErrorRecoveredLocally(t *testing.T) {
	eval := func(ctx context.Context, id domain.GateID, in *gates.Input) (domain.GateResult, error) {
		switch id {
		case domain.GateTestCoverage:
			panic("boom")
		case domain.GateErrorHandling:
			return domain.GateResult{}, errors.New("store read failed")
		}
		return passing(ctx, id, in)
	}
	results, err := gates.NewOrchestrator(gates.WithEvaluator(eval)).Run(context.Background(), &gates.Input{})
	require.NoError(t, err)
	m := byID(results)
	assert.Equal(t, domain.StatusFail, m[domain.GateTestCoverage].Status)
	assert.Contains(t, m[domain.GateTestCoverage].Error, "boom")
	assert.Equal(t, domain.StatusFail, m[domain.GateErrorHandling].Status)
	assert.Equal(t, domain.StatusPass, m[domain.GateRegression].Status)
}

func TestRun_CancelledGatesAreSkippedNotFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	eval := func(c context.Context, id domain.GateID, in *gates.Input) (domain.GateResult, error) {
		if id == domain.GatePatternCompliance {
			cancel()
		}
		return passing(c, id, in)
	}
	results, err := gates.NewOrchestrator(gates.WithEvaluator(eval), gates.WithMaxParallel(1)).Run(ctx, &gates.Input{})
	require.NoError(t, err)
	require.Len(t, results, 6)

	m := byID(results)
	assert.Equal(t, domain.StatusPass, m[domain.GatePatternCompliance].Status, "in-flight gate finishes")
	for _, id := range domain.AllGates[1:] {
		assert.Equal(t, domain.StatusSkip, m[id].Status)
		assert.Equal(t, domain.SkipCancelled, m[id].SkipReason)
	}
}

func TestRun_CancelledBeforeStartStillEvaluatesPatternCompliance(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := gates.NewOrchestrator(gates.WithEvaluator(passing)).Run(ctx, &gates.Input{})
	require.NoError(t, err)
	require.Len(t, results, 6)

	m := byID(results)
	assert.Equal(t, domain.StatusPass, m[domain.GatePatternCompliance].Status)
	for _, id := range domain.AllGates[1:] {
		assert.Equal(t, domain.StatusSkip, m[id].Status, "%s", id)
		assert.Equal(t, domain.SkipCancelled, m[id].SkipReason, "%s", id)
	}
}

func TestRun_BoundedParallelism(t *testing.T) {
	var running, peak atomic.Int32
	eval := func(ctx context.Context, id domain.GateID, in *gates.Input) (domain.GateResult, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return domain.GateResult{Status: domain.StatusPass}, nil
	}
	_, err := gates.NewOrchestrator(gates.WithEvaluator(eval), gates.WithMaxParallel(2)).Run(context.Background(), &gates.Input{})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_CycleAbortsBeforeAnyGate(t *testing.T) {
	var mu sync.Mutex
	called := 0
	eval := func(ctx context.Context, id domain.GateID, in *gates.Input) (domain.GateResult, error) {
		mu.Lock()
		called++
		mu.Unlock()
		return domain.GateResult{}, nil
	}
	g := gates.Graph{
		domain.GatePatternCompliance:  {domain.GateSecurityBoundaries},
		domain.GateSecurityBoundaries: {domain.GatePatternCompliance},
	}
	results, err := gates.NewOrchestrator(gates.WithEvaluator(eval), gates.WithGraph(g)).Run(context.Background(), &gates.Input{})
	assert.Nil(t, results)
	assert.True(t, domain.IsConfigError(err))
	assert.Zero(t, called)
}

func TestRun_DeterministicOrderAcrossRuns(t *testing.T) {
	o := gates.NewOrchestrator(gates.WithEvaluator(passing))
	var first []domain.GateID
	for i := 0; i < 5; i++ {
		results, err := o.Run(context.Background(), &gates.Input{})
		require.NoError(t, err)
		var ids []domain.GateID
		for _, r := range results {
			ids = append(ids, r.GateID)
		}
		if first == nil {
			first = ids
		}
		assert.Equal(t, first, ids)
	}
}
