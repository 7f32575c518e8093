package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/kraftgate/internal/adapters/outbound/metrics"
	"github.com/abdidvp/kraftgate/internal/domain"
)

func sampleReport() *domain.CheckReport {
	return &domain.CheckReport{
		RunID:  "r1",
		Policy: domain.PolicyResult{OverallPassed: true},
		Gates: []domain.GateResult{
			{GateID: domain.GatePatternCompliance, Status: domain.StatusPass, Score: 92, ExecutionTime: 5 * time.Millisecond},
			{GateID: domain.GateRegression, Status: domain.StatusSkip, SkipReason: domain.SkipNoPriorRun},
		},
		Violations: []domain.Violation{
			{File: "a.go", Line: 1, Severity: domain.SeverityError},
			{File: "a.go", Line: 2, Severity: domain.SeverityWarning},
			{File: "a.go", Line: 3, Severity: domain.SeverityError, Suppressed: true},
		},
		Health: domain.AuditSnapshot{HealthScore: 83.75},
	}
}

func TestRecorder_ObserveCheck(t *testing.T) {
	r := metrics.New()
	r.ObserveCheck(sampleReport())

	assert.Equal(t, 1, testutil.CollectAndCount(r.Registry(), "kraftgate_policy_passed"))
	assert.InDelta(t, 83.75, gauge(t, r, "kraftgate_health_score"), 1e-9)
	assert.Equal(t, 2, testutil.CollectAndCount(r.Registry(), "kraftgate_gate_results_total"))
	assert.Equal(t, 4, testutil.CollectAndCount(r.Registry(), "kraftgate_violations"))
}

func TestRecorder_ObserveFeedback(t *testing.T) {
	r := metrics.New()
	rec := domain.FeedbackRecord{ViolationID: "v", DetectorID: "d", Action: domain.ActionDismiss, DismissalReason: domain.ReasonFalsePositive}

	r.ObserveFeedback(domain.FeedbackOutcome{Record: rec})
	r.ObserveFeedback(domain.FeedbackOutcome{Record: rec, Duplicate: true})
	r.ObserveFeedback(domain.FeedbackOutcome{Record: rec, Disabled: true})
	r.ObserveFeedback(domain.FeedbackOutcome{Record: rec, Disabled: true})

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		switch mf.GetName() {
		case "kraftgate_feedback_actions_total":
			assert.Equal(t, 3.0, mf.GetMetric()[0].GetCounter().GetValue(), "duplicates are not counted")
		case "kraftgate_detectors_disabled":
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := metrics.New()
	r.ObserveCheck(sampleReport())

	path := filepath.Join(t.TempDir(), "kraftgate.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kraftgate_health_score 83.75")
	assert.Contains(t, string(data), `kraftgate_gate_score{gate="pattern-compliance"} 92`)
}

// gauge returns the value of a single-series gauge.
func gauge(t *testing.T, r *metrics.Recorder, name string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
