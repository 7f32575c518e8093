package gates

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// PatternCompliance scores conforming locations against active outliers.
// With no pattern input it passes at 100.
func PatternCompliance(in *Input) domain.GateResult {
	res := domain.GateResult{GateID: domain.GatePatternCompliance}
	stats := in.stats()

	locations := 0
	for _, p := range in.evidence().Patterns {
		if p.Status == domain.PatternIgnored || stats.IsDetectorDisabled(p.Detector()) {
			continue
		}
		locations += len(p.Locations)
	}

	outliers, errors, warnings := 0, 0, 0
	for _, v := range in.Violations {
		if v.Source != domain.SourcePattern || !v.Active() {
			continue
		}
		outliers++
		switch v.Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		}
	}

	if locations+outliers == 0 {
		res.Status = domain.StatusPass
		res.Score = 100
		res.Summary = "no pattern evidence"
		return res
	}

	res.Score = float64(locations) / float64(locations+outliers) * 100
	res.ViolationCount = errors
	res.WarningCount = warnings
	res.Details = map[string]any{
		"locations": locations,
		"outliers":  outliers,
	}
	switch {
	case errors > 0:
		res.Status = domain.StatusFail
		res.Summary = fmt.Sprintf("%d error-tier outliers", errors)
	case warnings > 0:
		res.Status = domain.StatusWarn
		res.Summary = fmt.Sprintf("%d warning-tier outliers", warnings)
	default:
		res.Status = domain.StatusPass
		res.Summary = fmt.Sprintf("%.1f%% compliant", res.Score)
	}
	return res
}
