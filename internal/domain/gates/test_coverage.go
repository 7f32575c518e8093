package gates

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Coverage compares the coverage ratio with the threshold carried by the
// evidence, falling back to the configured one.
func Coverage(in *Input) domain.GateResult {
	cov := in.evidence().Coverage
	if cov == nil || cov.Total == 0 {
		return domain.SkipResult(domain.GateTestCoverage, domain.SkipNoInput, "no coverage evidence")
	}

	threshold := cov.Threshold
	if threshold == 0 {
		threshold = in.CoverageThreshold
	}
	if threshold == 0 {
		threshold = DefaultCoverageThreshold
	}

	pct := cov.Percent()
	res := domain.GateResult{
		GateID: domain.GateTestCoverage,
		Score:  pct,
		Details: map[string]any{
			"covered":   cov.Covered,
			"uncovered": cov.Uncovered,
			"total":     cov.Total,
			"threshold": threshold,
		},
	}
	if pct < threshold {
		res.Status = domain.StatusFail
		res.ViolationCount = cov.Total - cov.Covered
		res.Summary = fmt.Sprintf("coverage %.1f%% below %.1f%%", pct, threshold)
	} else {
		res.Status = domain.StatusPass
		res.Summary = fmt.Sprintf("coverage %.1f%%", pct)
	}
	return res
}
