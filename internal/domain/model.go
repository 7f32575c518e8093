package domain

import (
	"fmt"
	"strings"
)

// Severity is the ordered weight of a violation. Higher values are more severe.
type Severity int

const (
	SeverityHint Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"hint", "info", "warning", "error"}

func (s Severity) String() string {
	if s < SeverityHint || s > SeverityError {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// Downgrade returns the next lower severity, flooring at Hint.
func (s Severity) Downgrade() Severity {
	if s <= SeverityHint {
		return SeverityHint
	}
	return s - 1
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}

func ParseSeverity(s string) (Severity, error) {
	for i, name := range severityNames {
		if strings.EqualFold(s, name) {
			return Severity(i), nil
		}
	}
	return SeverityHint, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	parsed, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ConfidenceTier is a discretized bucket of a continuous evidence confidence.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
	TierNote   ConfidenceTier = "note"
)

// Tier boundaries on the confidence scale.
const (
	HighConfidence   = 0.90
	MediumConfidence = 0.70
	LowConfidence    = 0.50
)

// TierFor buckets a deviation's confidence. Scores under LowConfidence are
// structural notes rather than deviations.
func TierFor(confidence float64) ConfidenceTier {
	switch {
	case confidence >= HighConfidence:
		return TierHigh
	case confidence >= MediumConfidence:
		return TierMedium
	case confidence >= LowConfidence:
		return TierLow
	default:
		return TierNote
	}
}

// BaseSeverity maps a tier onto the severity scale.
func (t ConfidenceTier) BaseSeverity() Severity {
	switch t {
	case TierHigh:
		return SeverityError
	case TierMedium:
		return SeverityWarning
	case TierLow:
		return SeverityInfo
	default:
		return SeverityHint
	}
}

// Source identifies which evidence stream produced a violation.
type Source string

const (
	SourcePattern    Source = "pattern"
	SourceConstraint Source = "constraint"
	SourceSecurity   Source = "security"
	SourceErrorGap   Source = "error_handling"
)

// Violation is a single located, severity-tagged finding. Violations are
// created fresh on every run and only the Suppressed flag is set after
// construction, once, from the source scan.
type Violation struct {
	ID              string    `json:"id,omitempty"`
	File            string    `json:"file"`
	Line            int       `json:"line"`
	Column          int       `json:"column,omitempty"`
	EndLine         int       `json:"end_line,omitempty"`
	EndColumn       int       `json:"end_column,omitempty"`
	Severity        Severity  `json:"severity"`
	BaseSeverity    Severity  `json:"base_severity"`
	PatternID       string    `json:"pattern_id"`
	RuleID          string    `json:"rule_id"`
	DetectorID      string    `json:"detector_id,omitempty"`
	Category        string    `json:"category,omitempty"`
	Source          Source    `json:"source"`
	Message         string    `json:"message"`
	QuickFix        *QuickFix `json:"quick_fix,omitempty"`
	CWEIDs          []int     `json:"cwe_ids,omitempty"`
	OWASPCategories []string  `json:"owasp_categories,omitempty"`
	Suppressed      bool      `json:"suppressed"`
	IsNew           bool      `json:"is_new"`
}

// Key is the identity of a violation across runs.
func (v Violation) Key() string {
	return ViolationKey(v.File, v.Line, v.RuleID)
}

func ViolationKey(file string, line int, ruleID string) string {
	return fmt.Sprintf("%s:%d:%s", file, line, ruleID)
}

// Active reports whether the violation counts towards gate scoring.
func (v Violation) Active() bool { return !v.Suppressed }

// QuickFixStrategy names one of the fixed remediation strategies.
type QuickFixStrategy string

const (
	FixRename                 QuickFixStrategy = "rename"
	FixWrapInErrorHandler     QuickFixStrategy = "wrap_in_error_handler"
	FixAddImport              QuickFixStrategy = "add_import"
	FixAddTypeAnnotation      QuickFixStrategy = "add_type_annotation"
	FixAddDocumentation       QuickFixStrategy = "add_documentation"
	FixAddTest                QuickFixStrategy = "add_test"
	FixExtractFunction        QuickFixStrategy = "extract_function"
	FixUseParameterizedAccess QuickFixStrategy = "use_parameterized_access"
)

// QuickFix is either a templated replacement or a free-text suggestion.
type QuickFix struct {
	Strategy    QuickFixStrategy `json:"strategy"`
	Description string           `json:"description"`
	Replacement string           `json:"replacement,omitempty"`
}

// Templated reports whether the fix carries replacement text.
func (q QuickFix) Templated() bool { return q.Replacement != "" }
