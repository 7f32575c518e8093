package policy

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Strict requires all six gates to pass without warnings.
func Strict() Policy {
	return Policy{
		Name:          domain.PresetStrict,
		Mode:          domain.ModeAllMustPass,
		RequiredGates: append([]domain.GateID{}, domain.AllGates...),
	}
}

// Standard weighs all gates and requires pattern compliance and security.
func Standard() Policy {
	return Policy{
		Name:          domain.PresetStandard,
		Mode:          domain.ModeWeighted,
		RequiredGates: []domain.GateID{domain.GatePatternCompliance, domain.GateSecurityBoundaries},
		Weights: map[domain.GateID]float64{
			domain.GatePatternCompliance:      0.25,
			domain.GateConstraintVerification: 0.15,
			domain.GateSecurityBoundaries:     0.25,
			domain.GateTestCoverage:           0.15,
			domain.GateErrorHandling:          0.10,
			domain.GateRegression:             0.10,
		},
		Threshold: 70,
	}
}

// Lenient passes when any gate passes.
func Lenient() Policy {
	return Policy{
		Name: domain.PresetLenient,
		Mode: domain.ModeAnyMustPass,
	}
}

// Preset returns a named preset.
func Preset(name string) (Policy, error) {
	switch name {
	case domain.PresetStrict:
		return Strict(), nil
	case domain.PresetStandard, "":
		return Standard(), nil
	case domain.PresetLenient:
		return Lenient(), nil
	}
	return Policy{}, &domain.ConfigError{
		Op:  "policy",
		Err: fmt.Errorf("%w: unknown preset %q", domain.ErrInvalidPolicy, name),
	}
}

// FromConfig builds a policy from its configuration: a preset base with
// explicit fields overriding it. A config with a mode but no preset is
// custom.
func FromConfig(cfg domain.PolicyConfig) (Policy, error) {
	var p Policy
	switch {
	case cfg.Preset == domain.PresetCustom || (cfg.Preset == "" && cfg.Mode != ""):
		p = Policy{Name: domain.PresetCustom, ThresholdMetric: domain.MetricMeanScore}
	default:
		base, err := Preset(cfg.Preset)
		if err != nil {
			return Policy{}, err
		}
		p = base
	}

	if cfg.Mode != "" {
		p.Mode = cfg.Mode
	}
	if cfg.Gates != nil {
		ids, err := parseGates(cfg.Gates)
		if err != nil {
			return Policy{}, err
		}
		p.Gates = ids
	}
	if cfg.RequiredGates != nil {
		ids, err := parseGates(cfg.RequiredGates)
		if err != nil {
			return Policy{}, err
		}
		p.RequiredGates = ids
	}
	if cfg.Weights != nil {
		p.Weights = make(map[domain.GateID]float64, len(cfg.Weights))
		for name, w := range cfg.Weights {
			id, err := domain.ParseGateID(name)
			if err != nil {
				return Policy{}, &domain.ConfigError{Op: "policy weights", Err: err}
			}
			p.Weights[id] = w
		}
	}
	if cfg.Threshold != nil {
		p.Threshold = *cfg.Threshold
	}
	if cfg.ThresholdMetric != "" {
		p.ThresholdMetric = cfg.ThresholdMetric
	}
	if p.Mode == domain.ModeThreshold && p.ThresholdMetric == "" {
		p.ThresholdMetric = domain.MetricMeanScore
	}
	if cfg.FailOnWarn != nil {
		p.FailOnWarn = *cfg.FailOnWarn
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func parseGates(names []string) ([]domain.GateID, error) {
	ids := make([]domain.GateID, 0, len(names))
	for _, name := range names {
		id, err := domain.ParseGateID(name)
		if err != nil {
			return nil, &domain.ConfigError{Op: "policy gates", Err: err}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
