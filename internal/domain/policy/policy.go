// Package policy aggregates gate results into one verdict.
package policy

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Policy is a named aggregation configuration over gate results. Presets
// and custom policies share this schema.
type Policy struct {
	Name string
	Mode domain.AggregationMode
	// Gates are the gates the mode aggregates over. Empty means all six.
	Gates []domain.GateID
	// RequiredGates must each be present and passing. For AllMustPass and
	// AnyMustPass they replace Gates as the decision set.
	RequiredGates   []domain.GateID
	Weights         map[domain.GateID]float64
	Threshold       float64
	ThresholdMetric string
	// FailOnWarn makes a Warn on a required gate unmet in Weighted and
	// Threshold modes. AllMustPass and AnyMustPass only accept Pass.
	FailOnWarn bool
}

// Validate reports malformed policies as configuration errors.
func (p Policy) Validate() error {
	invalid := func(format string, args ...any) error {
		return &domain.ConfigError{
			Op:  "policy " + p.Name,
			Err: fmt.Errorf("%w: %s", domain.ErrInvalidPolicy, fmt.Sprintf(format, args...)),
		}
	}

	switch p.Mode {
	case domain.ModeAllMustPass, domain.ModeAnyMustPass, domain.ModeWeighted, domain.ModeThreshold:
	case "":
		return invalid("aggregation mode is required")
	default:
		return invalid("unknown aggregation mode %q", p.Mode)
	}
	for _, id := range append(append([]domain.GateID{}, p.Gates...), p.RequiredGates...) {
		if !id.Valid() {
			return invalid("unknown gate %q", id)
		}
	}
	if p.Threshold < 0 || p.Threshold > 100 {
		return invalid("threshold %.2f out of range 0-100", p.Threshold)
	}

	switch p.Mode {
	case domain.ModeWeighted:
		sum := 0.0
		for id, w := range p.Weights {
			if !id.Valid() {
				return invalid("weight for unknown gate %q", id)
			}
			if w < 0 {
				return invalid("negative weight %.2f for %s", w, id)
			}
			sum += w
		}
		if sum == 0 {
			return invalid("weighted mode needs at least one positive weight")
		}
	case domain.ModeThreshold:
		switch p.ThresholdMetric {
		case domain.MetricMeanScore, domain.MetricMinScore:
		default:
			return invalid("unknown threshold metric %q", p.ThresholdMetric)
		}
	}
	return nil
}

func (p Policy) considered() []domain.GateID {
	if len(p.Gates) > 0 {
		return p.Gates
	}
	return domain.AllGates
}

func (p Policy) decisionSet() []domain.GateID {
	if len(p.RequiredGates) > 0 {
		return p.RequiredGates
	}
	return p.considered()
}

func (p Policy) required(id domain.GateID) bool {
	for _, r := range p.RequiredGates {
		if r == id {
			return true
		}
	}
	return false
}

// satisfied reports whether a gate result meets the bar. Absent and skipped
// gates never do. The pass/fail modes count only Pass.
func (p Policy) satisfied(r domain.GateResult, present bool) bool {
	if !present {
		return false
	}
	switch r.Status {
	case domain.StatusPass:
		return true
	case domain.StatusWarn:
		switch p.Mode {
		case domain.ModeAllMustPass, domain.ModeAnyMustPass:
			return false
		}
		return !p.FailOnWarn
	default:
		return false
	}
}
