package domain

import (
	"fmt"
	"time"
)

// Policy presets.
const (
	PresetStrict   = "strict"
	PresetStandard = "standard"
	PresetLenient  = "lenient"
	PresetCustom   = "custom"
)

// ValidPresets enumerates the named policy configurations.
var ValidPresets = []string{PresetStrict, PresetStandard, PresetLenient, PresetCustom}

// Threshold-mode metrics.
const (
	MetricMeanScore = "mean_score"
	MetricMinScore  = "min_score"
)

// ProjectConfig holds project-level configuration loaded from .kraftgate.yaml.
type ProjectConfig struct {
	Policy       PolicyConfig      `yaml:"policy"                  json:"policy"`
	Gates        GatesConfig       `yaml:"gates"                   json:"gates"`
	Progressive  ProgressiveConfig `yaml:"progressive"             json:"progressive"`
	Feedback     FeedbackConfig    `yaml:"feedback"                json:"feedback"`
	Audit        AuditConfig       `yaml:"audit"                   json:"audit"`
	Store        StoreConfig       `yaml:"store"                   json:"store"`
	ExcludePaths []string          `yaml:"exclude_paths,omitempty" json:"exclude_paths,omitempty"`
	Language     string            `yaml:"language,omitempty"      json:"language,omitempty"`
}

// PolicyConfig selects a preset or describes a custom policy. Explicit
// fields override the preset's values.
type PolicyConfig struct {
	Preset          string             `yaml:"preset,omitempty"           json:"preset,omitempty"`
	Mode            AggregationMode    `yaml:"mode,omitempty"             json:"mode,omitempty"`
	RequiredGates   []string           `yaml:"required_gates,omitempty"   json:"required_gates,omitempty"`
	Gates           []string           `yaml:"gates,omitempty"            json:"gates,omitempty"`
	Weights         map[string]float64 `yaml:"weights,omitempty"          json:"weights,omitempty"`
	Threshold       *float64           `yaml:"threshold,omitempty"        json:"threshold,omitempty"`
	ThresholdMetric string             `yaml:"threshold_metric,omitempty" json:"threshold_metric,omitempty"`
	FailOnWarn      *bool              `yaml:"fail_on_warn,omitempty"     json:"fail_on_warn,omitempty"`
}

type GatesConfig struct {
	Timeout           time.Duration `yaml:"timeout"            json:"timeout"`
	MaxParallel       int           `yaml:"max_parallel"       json:"max_parallel"`
	CoverageThreshold float64       `yaml:"coverage_threshold" json:"coverage_threshold"`
}

type ProgressiveConfig struct {
	Enabled  bool `yaml:"enabled"   json:"enabled"`
	RampDays int  `yaml:"ramp_days" json:"ramp_days"`
}

type FeedbackConfig struct {
	MinFindings        int           `yaml:"min_findings"         json:"min_findings"`
	AlertRate          float64       `yaml:"alert_rate"           json:"alert_rate"`
	DisableRate        float64       `yaml:"disable_rate"         json:"disable_rate"`
	DowngradeRate      float64       `yaml:"downgrade_rate"       json:"downgrade_rate"`
	SustainedDays      int           `yaml:"sustained_days"       json:"sustained_days"`
	AbuseWindow        time.Duration `yaml:"abuse_window"         json:"abuse_window"`
	AbuseFactor        float64       `yaml:"abuse_factor"         json:"abuse_factor"`
	AbuseMinDismissals int           `yaml:"abuse_min_dismissals" json:"abuse_min_dismissals"`
}

type AuditConfig struct {
	DuplicateThreshold float64 `yaml:"duplicate_threshold" json:"duplicate_threshold"`
	WarningDrop        float64 `yaml:"warning_drop"        json:"warning_drop"`
	CriticalDrop       float64 `yaml:"critical_drop"       json:"critical_drop"`
}

type StoreConfig struct {
	Path string `yaml:"path" json:"path"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		Policy: PolicyConfig{Preset: PresetStandard},
		Gates: GatesConfig{
			Timeout:           30 * time.Second,
			MaxParallel:       4,
			CoverageThreshold: 80,
		},
		Progressive: ProgressiveConfig{RampDays: 28},
		Feedback: FeedbackConfig{
			MinFindings:        10,
			AlertRate:          0.10,
			DisableRate:        0.20,
			DowngradeRate:      0.20,
			SustainedDays:      30,
			AbuseWindow:        24 * time.Hour,
			AbuseFactor:        3.0,
			AbuseMinDismissals: 10,
		},
		Audit: AuditConfig{
			DuplicateThreshold: 0.85,
			WarningDrop:        5,
			CriticalDrop:       15,
		},
		Store: StoreConfig{Path: ".kraftgate/db"},
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	d := DefaultConfig()
	if c.Policy.Preset == "" && c.Policy.Mode == "" {
		c.Policy.Preset = d.Policy.Preset
	}
	if c.Gates.Timeout == 0 {
		c.Gates.Timeout = d.Gates.Timeout
	}
	if c.Gates.MaxParallel == 0 {
		c.Gates.MaxParallel = d.Gates.MaxParallel
	}
	if c.Gates.CoverageThreshold == 0 {
		c.Gates.CoverageThreshold = d.Gates.CoverageThreshold
	}
	if c.Progressive.RampDays == 0 {
		c.Progressive.RampDays = d.Progressive.RampDays
	}
	f := &c.Feedback
	if f.MinFindings == 0 {
		f.MinFindings = d.Feedback.MinFindings
	}
	if f.AlertRate == 0 {
		f.AlertRate = d.Feedback.AlertRate
	}
	if f.DisableRate == 0 {
		f.DisableRate = d.Feedback.DisableRate
	}
	if f.DowngradeRate == 0 {
		f.DowngradeRate = d.Feedback.DowngradeRate
	}
	if f.SustainedDays == 0 {
		f.SustainedDays = d.Feedback.SustainedDays
	}
	if f.AbuseWindow == 0 {
		f.AbuseWindow = d.Feedback.AbuseWindow
	}
	if f.AbuseFactor == 0 {
		f.AbuseFactor = d.Feedback.AbuseFactor
	}
	if f.AbuseMinDismissals == 0 {
		f.AbuseMinDismissals = d.Feedback.AbuseMinDismissals
	}
	if c.Audit.DuplicateThreshold == 0 {
		c.Audit.DuplicateThreshold = d.Audit.DuplicateThreshold
	}
	if c.Audit.WarningDrop == 0 {
		c.Audit.WarningDrop = d.Audit.WarningDrop
	}
	if c.Audit.CriticalDrop == 0 {
		c.Audit.CriticalDrop = d.Audit.CriticalDrop
	}
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	return c
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	// 1. preset must be known or empty
	if p := c.Policy.Preset; p != "" && !contains(ValidPresets, p) {
		return fmt.Errorf("unknown policy.preset %q (valid: strict, standard, lenient, custom)", p)
	}

	// 2. mode must be known or empty
	switch c.Policy.Mode {
	case "", ModeAllMustPass, ModeAnyMustPass, ModeWeighted, ModeThreshold:
	default:
		return fmt.Errorf("unknown policy.mode %q (valid: all_must_pass, any_must_pass, weighted, threshold)", c.Policy.Mode)
	}

	// 3. gate names must be known
	for _, list := range [][]string{c.Policy.RequiredGates, c.Policy.Gates} {
		for _, g := range list {
			if _, err := ParseGateID(g); err != nil {
				return fmt.Errorf("policy: %w", err)
			}
		}
	}
	for g, w := range c.Policy.Weights {
		if _, err := ParseGateID(g); err != nil {
			return fmt.Errorf("policy.weights: %w", err)
		}
		if w < 0 {
			return fmt.Errorf("policy.weights[%q] = %.2f (must be >= 0)", g, w)
		}
	}

	// 4. threshold in 0-100
	if t := c.Policy.Threshold; t != nil && (*t < 0 || *t > 100) {
		return fmt.Errorf("policy.threshold = %.2f (must be between 0 and 100)", *t)
	}
	switch c.Policy.ThresholdMetric {
	case "", MetricMeanScore, MetricMinScore:
	default:
		return fmt.Errorf("unknown policy.threshold_metric %q (valid: mean_score, min_score)", c.Policy.ThresholdMetric)
	}

	// 5. gate execution settings
	if c.Gates.Timeout < 0 {
		return fmt.Errorf("gates.timeout must be >= 0 (got %s)", c.Gates.Timeout)
	}
	if c.Gates.MaxParallel < 0 {
		return fmt.Errorf("gates.max_parallel must be >= 0 (got %d)", c.Gates.MaxParallel)
	}
	if c.Gates.CoverageThreshold < 0 || c.Gates.CoverageThreshold > 100 {
		return fmt.Errorf("gates.coverage_threshold = %.2f (must be between 0 and 100)", c.Gates.CoverageThreshold)
	}

	// 6. progressive ramp
	if c.Progressive.RampDays < 0 {
		return fmt.Errorf("progressive.ramp_days must be >= 0 (got %d)", c.Progressive.RampDays)
	}

	// 7. feedback rates are fractions
	rates := map[string]float64{
		"alert_rate":     c.Feedback.AlertRate,
		"disable_rate":   c.Feedback.DisableRate,
		"downgrade_rate": c.Feedback.DowngradeRate,
	}
	for name, r := range rates {
		if r < 0 || r > 1 {
			return fmt.Errorf("feedback.%s must be between 0.0 and 1.0 (got %.2f)", name, r)
		}
	}
	if c.Feedback.MinFindings < 0 || c.Feedback.SustainedDays < 0 || c.Feedback.AbuseMinDismissals < 0 {
		return fmt.Errorf("feedback counts must be >= 0")
	}

	// 8. audit thresholds
	if t := c.Audit.DuplicateThreshold; t < 0 || t > 1 {
		return fmt.Errorf("audit.duplicate_threshold must be between 0.0 and 1.0 (got %.2f)", t)
	}
	if c.Audit.WarningDrop < 0 || c.Audit.CriticalDrop < 0 {
		return fmt.Errorf("audit drops must be >= 0")
	}
	if c.Audit.CriticalDrop > 0 && c.Audit.WarningDrop > c.Audit.CriticalDrop {
		return fmt.Errorf("audit.warning_drop (%.1f) must not exceed audit.critical_drop (%.1f)", c.Audit.WarningDrop, c.Audit.CriticalDrop)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
