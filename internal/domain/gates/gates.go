// Package gates holds the six quality gates, their static dependency graph
// and the orchestrator that runs them.
package gates

import (
	"context"
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// DefaultCoverageThreshold is the coverage percentage required when neither
// the evidence nor the configuration sets one.
const DefaultCoverageThreshold = 80.0

// Input is the immutable evidence slice handed to every gate of one run.
// Gates read it concurrently and must not modify it.
type Input struct {
	Violations        []domain.Violation
	Evidence          *domain.Evidence
	Stats             domain.FeedbackStats
	CoverageThreshold float64
	// Baseline and CurrentHealth feed the regression gate. A nil Baseline
	// means there is no prior run.
	Baseline      *domain.Baseline
	CurrentHealth float64
}

func (in *Input) evidence() *domain.Evidence {
	if in.Evidence == nil {
		return &domain.Evidence{}
	}
	return in.Evidence
}

func (in *Input) stats() domain.FeedbackStats {
	if in.Stats == nil {
		return domain.NoFeedback{}
	}
	return in.Stats
}

// Evaluate dispatches to the gate named by id.
func Evaluate(_ context.Context, id domain.GateID, in *Input) (domain.GateResult, error) {
	switch id {
	case domain.GatePatternCompliance:
		return PatternCompliance(in), nil
	case domain.GateConstraintVerification:
		return ConstraintVerification(in), nil
	case domain.GateSecurityBoundaries:
		return SecurityBoundaries(in), nil
	case domain.GateTestCoverage:
		return Coverage(in), nil
	case domain.GateErrorHandling:
		return ErrorHandling(in), nil
	case domain.GateRegression:
		return Regression(in), nil
	}
	return domain.GateResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownGate, id)
}

// ratio returns (total-bad)/total as a percentage.
func ratio(total, bad int) float64 {
	if total == 0 {
		return 100
	}
	return float64(total-bad) / float64(total) * 100
}

// suppressedKeys collects the identity keys of suppressed violations from
// one source.
func suppressedKeys(vs []domain.Violation, src domain.Source) map[string]bool {
	keys := make(map[string]bool)
	for _, v := range vs {
		if v.Source == src && v.Suppressed {
			keys[domain.ViolationKey(v.File, v.Line, "")] = true
		}
	}
	return keys
}
