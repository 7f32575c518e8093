package gates

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// SecurityBoundaries fails on critical or high findings and warns on medium
// ones. Findings at suppressed locations are not counted.
func SecurityBoundaries(in *Input) domain.GateResult {
	findings := in.evidence().SecurityFindings
	if len(findings) == 0 {
		return domain.SkipResult(domain.GateSecurityBoundaries, domain.SkipNoInput, "no security findings evidence")
	}

	suppressed := suppressedKeys(in.Violations, domain.SourceSecurity)
	total, blocking, medium, excluded := 0, 0, 0, 0
	for _, f := range findings {
		if suppressed[domain.ViolationKey(f.File, f.Line, "")] {
			excluded++
			continue
		}
		total++
		switch {
		case f.Blocking():
			blocking++
		case f.Severity == domain.FindingMedium:
			medium++
		}
	}

	res := domain.GateResult{
		GateID:         domain.GateSecurityBoundaries,
		Score:          ratio(total, blocking),
		ViolationCount: blocking,
		WarningCount:   medium,
		Details: map[string]any{
			"total":      total,
			"blocking":   blocking,
			"medium":     medium,
			"suppressed": excluded,
		},
	}
	switch {
	case blocking > 0:
		res.Status = domain.StatusFail
		res.Summary = fmt.Sprintf("%d critical/high findings", blocking)
	case medium > 0:
		res.Status = domain.StatusWarn
		res.Summary = fmt.Sprintf("%d medium findings", medium)
	default:
		res.Status = domain.StatusPass
		res.Summary = "no blocking security findings"
	}
	return res
}
