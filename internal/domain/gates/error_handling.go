package gates

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// ErrorHandling fails on swallowed or unhandled errors and warns on generic
// or empty catches.
func ErrorHandling(in *Input) domain.GateResult {
	gaps := in.evidence().ErrorGaps
	if len(gaps) == 0 {
		return domain.SkipResult(domain.GateErrorHandling, domain.SkipNoInput, "no error handling evidence")
	}

	suppressed := suppressedKeys(in.Violations, domain.SourceErrorGap)
	total, blocking, soft := 0, 0, 0
	byType := make(map[string]int)
	for _, g := range gaps {
		if g.File != "" && suppressed[domain.ViolationKey(g.File, g.Line, "")] {
			continue
		}
		total++
		byType[g.GapType]++
		switch {
		case g.Blocking():
			blocking++
		case g.GapType == domain.GapGenericCatch || g.GapType == domain.GapEmptyCatch:
			soft++
		}
	}

	res := domain.GateResult{
		GateID:         domain.GateErrorHandling,
		Score:          ratio(total, blocking),
		ViolationCount: blocking,
		WarningCount:   soft,
		Details: map[string]any{
			"total":   total,
			"by_type": byType,
		},
	}
	switch {
	case blocking > 0:
		res.Status = domain.StatusFail
		res.Summary = fmt.Sprintf("%d swallowed or unhandled errors", blocking)
	case soft > 0:
		res.Status = domain.StatusWarn
		res.Summary = fmt.Sprintf("%d generic or empty catches", soft)
	default:
		res.Status = domain.StatusPass
		res.Summary = "error handling complete"
	}
	return res
}
