package domain

import "time"

type AggregationMode string

const (
	ModeAllMustPass AggregationMode = "all_must_pass"
	ModeAnyMustPass AggregationMode = "any_must_pass"
	ModeWeighted    AggregationMode = "weighted"
	ModeThreshold   AggregationMode = "threshold"
)

// GateBreakdown is one gate's contribution to a policy decision.
type GateBreakdown struct {
	GateID    GateID     `json:"gate_id"`
	Status    GateStatus `json:"status,omitempty"`
	Score     float64    `json:"score"`
	Weight    float64    `json:"weight"`
	Required  bool       `json:"required"`
	Present   bool       `json:"present"`
	Satisfied bool       `json:"satisfied"`
}

// PolicyResult is derived from a set of gate results and can be recomputed
// at any time.
type PolicyResult struct {
	Policy              string          `json:"policy"`
	AggregationMode     AggregationMode `json:"aggregation_mode"`
	OverallPassed       bool            `json:"overall_passed"`
	OverallScore        float64         `json:"overall_score"`
	RequiredGatesPassed bool            `json:"required_gates_passed"`
	PerGate             []GateBreakdown `json:"per_gate_breakdown"`
	Reason              string          `json:"reason,omitempty"`
}

// CheckReport is the in-memory result tree of one check run. Renderers
// consume it; the engine does no formatting itself.
type CheckReport struct {
	RunID      string               `json:"run_id"`
	Timestamp  time.Time            `json:"timestamp"`
	CommitHash string               `json:"commit_hash,omitempty"`
	Policy     PolicyResult         `json:"policy"`
	Gates      []GateResult         `json:"gates"`
	Violations []Violation          `json:"violations"`
	Health     AuditSnapshot        `json:"health"`
	Alerts     []DegradationAlert   `json:"alerts,omitempty"`
	Duplicates []DuplicateCandidate `json:"duplicates,omitempty"`
	Persisted  bool                 `json:"persisted"`
}

// Passed reports the overall verdict.
func (r *CheckReport) Passed() bool { return r.Policy.OverallPassed }

// Gate returns the result for id, if present.
func (r *CheckReport) Gate(id GateID) (GateResult, bool) {
	for _, g := range r.Gates {
		if g.GateID == id {
			return g, true
		}
	}
	return GateResult{}, false
}

// ActiveViolations returns violations that are not suppressed.
func (r *CheckReport) ActiveViolations() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Active() {
			out = append(out, v)
		}
	}
	return out
}
