package gates_test

import (
	"context"
	"testing"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/abdidvp/kraftgate/internal/domain/gates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patternViolation(sev domain.Severity) domain.Violation {
	return domain.Violation{File: "a.go", Line: 1, Source: domain.SourcePattern, Severity: sev, BaseSeverity: sev}
}

func locations(n int) []domain.Location {
	out := make([]domain.Location, n)
	for i := range out {
		out[i] = domain.Location{File: "a.go", Line: i + 1}
	}
	return out
}

func TestPatternCompliance_EmptyPassesAt100(t *testing.T) {
	res := gates.PatternCompliance(&gates.Input{})
	assert.Equal(t, domain.StatusPass, res.Status)
	assert.Equal(t, 100.0, res.Score)
}

func TestPatternCompliance_ScoreAndFail(t *testing.T) {
	in := &gates.Input{
		Evidence: &domain.Evidence{Patterns: []domain.PatternEvidence{
			{PatternID: "p", Category: "naming", Locations: locations(8)},
		}},
		Violations: []domain.Violation{
			patternViolation(domain.SeverityError),
			patternViolation(domain.SeverityInfo),
		},
	}
	res := gates.PatternCompliance(in)
	assert.Equal(t, domain.StatusFail, res.Status)
	assert.InDelta(t, 80.0, res.Score, 0.001)
	assert.Equal(t, 1, res.ViolationCount)
}

func TestPatternCompliance_WarnOnWarningTier(t *testing.T) {
	in := &gates.Input{
		Evidence:   &domain.Evidence{Patterns: []domain.PatternEvidence{{PatternID: "p", Locations: locations(3)}}},
		Violations: []domain.Violation{patternViolation(domain.SeverityWarning)},
	}
	res := gates.PatternCompliance(in)
	assert.Equal(t, domain.StatusWarn, res.Status)
	assert.Equal(t, 1, res.WarningCount)
}

func TestPatternCompliance_SuppressedExcluded(t *testing.T) {
	v := patternViolation(domain.SeverityError)
	v.Suppressed = true
	in := &gates.Input{
		Evidence:   &domain.Evidence{Patterns: []domain.PatternEvidence{{PatternID: "p", Locations: locations(3)}}},
		Violations: []domain.Violation{v},
	}
	res := gates.PatternCompliance(in)
	assert.Equal(t, domain.StatusPass, res.Status)
	assert.Equal(t, 100.0, res.Score)
}

func TestConstraintVerification(t *testing.T) {
	assert.Equal(t, domain.StatusSkip, gates.ConstraintVerification(&gates.Input{}).Status)

	in := &gates.Input{
		Evidence: &domain.Evidence{Constraints: []domain.ConstraintEvidence{
			{ID: "c1", Violations: []domain.ConstraintViolation{{File: "a.go", Line: 2}}},
			{ID: "c2"}, {ID: "c3"}, {ID: "c4"},
		}},
		Violations: []domain.Violation{{File: "a.go", Line: 2, PatternID: "c1", Source: domain.SourceConstraint}},
	}
	res := gates.ConstraintVerification(in)
	assert.Equal(t, domain.StatusFail, res.Status)
	assert.InDelta(t, 75.0, res.Score, 0.001)
}

func TestSecurityBoundaries_ScenarioA(t *testing.T) {
	var findings []domain.SecurityFinding
	for i := 0; i < 10; i++ {
		sev := domain.FindingLow
		if i < 3 {
			sev = domain.FindingCritical
		}
		findings = append(findings, domain.SecurityFinding{File: "s.go", Line: i + 1, Severity: sev})
	}
	res := gates.SecurityBoundaries(&gates.Input{Evidence: &domain.Evidence{SecurityFindings: findings}})
	assert.Equal(t, domain.StatusFail, res.Status)
	assert.InDelta(t, 70.0, res.Score, 0.0001)
	assert.Equal(t, 3, res.ViolationCount)
}

func TestSecurityBoundaries_MediumWarnsAndSkipEmpty(t *testing.T) {
	assert.Equal(t, domain.StatusSkip, gates.SecurityBoundaries(&gates.Input{}).Status)

	ev := &domain.Evidence{SecurityFindings: []domain.SecurityFinding{{File: "a.go", Line: 1, Severity: domain.FindingMedium}}}
	res := gates.SecurityBoundaries(&gates.Input{Evidence: ev})
	assert.Equal(t, domain.StatusWarn, res.Status)
	assert.Equal(t, 100.0, res.Score)
}

func TestSecurityBoundaries_SuppressedFindingIgnored(t *testing.T) {
	ev := &domain.Evidence{SecurityFindings: []domain.SecurityFinding{
		{File: "a.go", Line: 4, Severity: domain.FindingHigh},
		{File: "a.go", Line: 9, Severity: domain.FindingLow},
	}}
	in := &gates.Input{
		Evidence:   ev,
		Violations: []domain.Violation{{File: "a.go", Line: 4, Source: domain.SourceSecurity, Suppressed: true}},
	}
	res := gates.SecurityBoundaries(in)
	assert.Equal(t, domain.StatusPass, res.Status)
	assert.Equal(t, 100.0, res.Score)
}

func TestCoverage(t *testing.T) {
	assert.Equal(t, domain.StatusSkip, gates.Coverage(&gates.Input{}).Status)
	assert.Equal(t, domain.StatusSkip, gates.Coverage(&gates.Input{Evidence: &domain.Evidence{Coverage: &domain.CoverageEvidence{}}}).Status)

	ev := &domain.Evidence{Coverage: &domain.CoverageEvidence{Covered: 70, Uncovered: 30, Total: 100}}
	res := gates.Coverage(&gates.Input{Evidence: ev})
	assert.Equal(t, domain.StatusFail, res.Status, "default threshold is 80")
	assert.InDelta(t, 70.0, res.Score, 0.001)

	res = gates.Coverage(&gates.Input{Evidence: ev, CoverageThreshold: 60})
	assert.Equal(t, domain.StatusPass, res.Status)

	ev.Coverage.Threshold = 75
	res = gates.Coverage(&gates.Input{Evidence: ev, CoverageThreshold: 60})
	assert.Equal(t, domain.StatusFail, res.Status, "evidence threshold wins")
}

func TestErrorHandling(t *testing.T) {
	assert.Equal(t, domain.StatusSkip, gates.ErrorHandling(&gates.Input{}).Status)

	ev := &domain.Evidence{ErrorGaps: []domain.ErrorGap{
		{GapType: domain.GapSwallowed},
		{GapType: domain.GapGenericCatch},
		{GapType: domain.GapEmptyCatch},
		{GapType: domain.GapGenericCatch},
	}}
	res := gates.ErrorHandling(&gates.Input{Evidence: ev})
	assert.Equal(t, domain.StatusFail, res.Status)
	assert.InDelta(t, 75.0, res.Score, 0.001)

	ev.ErrorGaps = ev.ErrorGaps[1:]
	res = gates.ErrorHandling(&gates.Input{Evidence: ev})
	assert.Equal(t, domain.StatusWarn, res.Status)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, 3, res.WarningCount)
}

func TestRegression(t *testing.T) {
	res := gates.Regression(&gates.Input{})
	assert.Equal(t, domain.StatusSkip, res.Status)
	assert.Equal(t, domain.SkipNoPriorRun, res.SkipReason)

	base := &domain.Baseline{RunID: "r0", HealthScore: 80}
	tests := []struct {
		name    string
		current float64
		vs      []domain.Violation
		want    domain.GateStatus
	}{
		{"stable", 79, nil, domain.StatusPass},
		{"warn at -5", 75, nil, domain.StatusWarn},
		{"fail at -15", 65, nil, domain.StatusFail},
		{"new error", 85, []domain.Violation{{IsNew: true, Severity: domain.SeverityError}}, domain.StatusFail},
		{"suppressed new error", 85, []domain.Violation{{IsNew: true, Severity: domain.SeverityError, Suppressed: true}}, domain.StatusPass},
		{"old error", 85, []domain.Violation{{Severity: domain.SeverityError}}, domain.StatusPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := gates.Regression(&gates.Input{Baseline: base, CurrentHealth: tt.current, Violations: tt.vs})
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, 80.0, res.Score)
		})
	}
}

func TestEvaluate_DispatchesEveryGate(t *testing.T) {
	for _, id := range domain.AllGates {
		res, err := gates.Evaluate(context.Background(), id, &gates.Input{})
		require.NoError(t, err)
		assert.Equal(t, id, res.GateID)
	}
	_, err := gates.Evaluate(context.Background(), "lint", &gates.Input{})
	assert.ErrorIs(t, err, domain.ErrUnknownGate)
}
