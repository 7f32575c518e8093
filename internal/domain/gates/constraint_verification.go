package gates

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// ConstraintVerification fails when any constraint has an active violation.
func ConstraintVerification(in *Input) domain.GateResult {
	constraints := in.evidence().Constraints
	if len(constraints) == 0 {
		return domain.SkipResult(domain.GateConstraintVerification, domain.SkipNoInput, "no constraints declared")
	}

	broken := make(map[string]int)
	for _, v := range in.Violations {
		if v.Source == domain.SourceConstraint && v.Active() {
			broken[v.PatternID]++
		}
	}

	var failing []string
	violations := 0
	for _, c := range constraints {
		if n := broken[c.ID]; n > 0 {
			failing = append(failing, c.ID)
			violations += n
		}
	}

	total := len(constraints)
	passing := total - len(failing)
	res := domain.GateResult{
		GateID:         domain.GateConstraintVerification,
		Score:          float64(passing) / float64(total) * 100,
		ViolationCount: violations,
		Details: map[string]any{
			"total":   total,
			"passing": passing,
			"failing": failing,
		},
	}
	if len(failing) > 0 {
		res.Status = domain.StatusFail
		res.Summary = fmt.Sprintf("%d of %d constraints violated", len(failing), total)
	} else {
		res.Status = domain.StatusPass
		res.Summary = fmt.Sprintf("all %d constraints hold", total)
	}
	return res
}
