package gates

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Health deltas at which the regression gate warns and fails.
const (
	RegressionWarnDelta = -5.0
	RegressionFailDelta = -15.0
)

// Regression compares this run against the prior one handed in through the
// baseline. It never fetches history itself.
func Regression(in *Input) domain.GateResult {
	if in.Baseline == nil {
		return domain.SkipResult(domain.GateRegression, domain.SkipNoPriorRun, "no prior run to compare")
	}

	newErrors, newWarnings := 0, 0
	for _, v := range in.Violations {
		if !v.IsNew || !v.Active() {
			continue
		}
		switch v.Severity {
		case domain.SeverityError:
			newErrors++
		case domain.SeverityWarning:
			newWarnings++
		}
	}

	prior := in.Baseline.HealthScore
	delta := in.CurrentHealth - prior
	res := domain.GateResult{
		GateID:         domain.GateRegression,
		Score:          prior,
		ViolationCount: newErrors,
		WarningCount:   newWarnings,
		Details: map[string]any{
			"prior_run":      in.Baseline.RunID,
			"prior_health":   prior,
			"current_health": in.CurrentHealth,
			"delta":          delta,
			"new_errors":     newErrors,
		},
	}
	switch {
	case newErrors > 0:
		res.Status = domain.StatusFail
		res.Summary = fmt.Sprintf("%d new error violations", newErrors)
	case delta <= RegressionFailDelta:
		res.Status = domain.StatusFail
		res.Summary = fmt.Sprintf("health dropped %.1f points", -delta)
	case delta <= RegressionWarnDelta:
		res.Status = domain.StatusWarn
		res.Summary = fmt.Sprintf("health dropped %.1f points", -delta)
	default:
		res.Status = domain.StatusPass
		res.Summary = fmt.Sprintf("health delta %+.1f", delta)
	}
	return res
}
