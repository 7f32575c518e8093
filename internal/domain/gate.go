package domain

import (
	"fmt"
	"time"
)

// GateID identifies one of the six quality gates. The set is closed.
type GateID string

const (
	GatePatternCompliance      GateID = "pattern-compliance"
	GateConstraintVerification GateID = "constraint-verification"
	GateSecurityBoundaries     GateID = "security-boundaries"
	GateTestCoverage           GateID = "test-coverage"
	GateErrorHandling          GateID = "error-handling"
	GateRegression             GateID = "regression"
)

// AllGates lists the gates in static declaration order. Ties in the
// execution order are broken by this order.
var AllGates = []GateID{
	GatePatternCompliance,
	GateConstraintVerification,
	GateSecurityBoundaries,
	GateTestCoverage,
	GateErrorHandling,
	GateRegression,
}

// Valid reports whether id names a known gate.
func (id GateID) Valid() bool {
	for _, g := range AllGates {
		if g == id {
			return true
		}
	}
	return false
}

// ParseGateID validates a gate name from configuration.
func ParseGateID(s string) (GateID, error) {
	id := GateID(s)
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownGate, s)
	}
	return id, nil
}

type GateStatus string

const (
	StatusPass GateStatus = "pass"
	StatusFail GateStatus = "fail"
	StatusWarn GateStatus = "warn"
	StatusSkip GateStatus = "skip"
)

// SkipReason distinguishes why a gate produced no evaluation.
type SkipReason string

const (
	SkipNoInput    SkipReason = "no_input"
	SkipDependency SkipReason = "dependency_indeterminate"
	SkipCancelled  SkipReason = "cancelled"
	SkipNoPriorRun SkipReason = "no_prior_run"
)

// GateResult is written once per gate per orchestrator run.
type GateResult struct {
	GateID         GateID         `json:"gate_id"`
	Status         GateStatus     `json:"status"`
	Score          float64        `json:"score"`
	ViolationCount int            `json:"violation_count"`
	WarningCount   int            `json:"warning_count"`
	ExecutionTime  time.Duration  `json:"execution_time"`
	StartedAt      time.Time      `json:"started_at,omitempty"`
	CompletedAt    time.Time      `json:"completed_at,omitempty"`
	Summary        string         `json:"summary"`
	Details        map[string]any `json:"details,omitempty"`
	SkipReason     SkipReason     `json:"skip_reason,omitempty"`
	TimedOut       bool           `json:"timed_out,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// Evaluated reports whether the gate produced a determinate verdict.
func (r GateResult) Evaluated() bool {
	return r.Status != StatusSkip
}

// Determinate reports whether dependents may rely on this result.
func (r GateResult) Determinate() bool {
	return r.Evaluated() && !r.TimedOut && r.Error == ""
}

func SkipResult(id GateID, reason SkipReason, summary string) GateResult {
	return GateResult{
		GateID:     id,
		Status:     StatusSkip,
		SkipReason: reason,
		Summary:    summary,
	}
}

// TimeoutResult records a gate that exceeded its budget.
func TimeoutResult(id GateID, limit time.Duration) GateResult {
	msg := fmt.Sprintf("gate timed out after %s", limit)
	return GateResult{
		GateID:   id,
		Status:   StatusFail,
		Summary:  msg,
		TimedOut: true,
		Error:    msg,
		Details:  map[string]any{"timeout": limit.String()},
	}
}

// ErroredResult records a gate whose evaluation aborted.
func ErroredResult(id GateID, err error) GateResult {
	return GateResult{
		GateID:  id,
		Status:  StatusFail,
		Summary: "gate errored: " + err.Error(),
		Error:   err.Error(),
	}
}
