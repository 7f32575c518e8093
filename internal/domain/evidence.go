package domain

import "path/filepath"

// DefaultEvidencePath is where upstream detectors write the evidence
// snapshot, relative to the project root.
const DefaultEvidencePath = ".kraftgate/evidence.json"

// EvidencePath returns override when set, or the default location under
// projectPath.
func EvidencePath(projectPath, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(projectPath, DefaultEvidencePath)
}

// Evidence is the immutable snapshot consumed by one check run. It is
// produced by upstream detectors and never mutated during evaluation.
type Evidence struct {
	Files            []string             `json:"files,omitempty"`
	Language         string               `json:"language,omitempty"`
	Patterns         []PatternEvidence    `json:"patterns,omitempty"       validate:"dive"`
	Constraints      []ConstraintEvidence `json:"constraints,omitempty"    validate:"dive"`
	SecurityFindings []SecurityFinding    `json:"security_findings,omitempty" validate:"dive"`
	Coverage         *CoverageEvidence    `json:"coverage,omitempty"`
	ErrorGaps        []ErrorGap           `json:"error_gaps,omitempty"     validate:"dive"`
}

// PatternStatus is the review state of a learned pattern.
type PatternStatus string

const (
	PatternDiscovered PatternStatus = "discovered"
	PatternApproved   PatternStatus = "approved"
	PatternIgnored    PatternStatus = "ignored"
)

type Location struct {
	File   string `json:"file"   validate:"required"`
	Line   int    `json:"line"   validate:"gte=0"`
	Column int    `json:"column,omitempty"`
}

type Outlier struct {
	Location
	EndLine        int     `json:"end_line,omitempty"`
	EndColumn      int     `json:"end_column,omitempty"`
	DeviationScore float64 `json:"deviation_score"`
	Message        string  `json:"message"`
}

// PatternEvidence is a learned convention with its conforming locations and
// the outliers that deviate from it.
type PatternEvidence struct {
	PatternID       string        `json:"pattern_id"       validate:"required"`
	DetectorID      string        `json:"detector_id,omitempty"`
	Category        string        `json:"category"         validate:"required"`
	Confidence      float64       `json:"confidence"       validate:"gte=0,lte=1"`
	DetectionMethod string        `json:"detection_method,omitempty"`
	Status          PatternStatus `json:"status,omitempty"`
	InCallGraph     bool          `json:"in_call_graph,omitempty"`
	Locations       []Location    `json:"locations,omitempty" validate:"dive"`
	Outliers        []Outlier     `json:"outliers,omitempty"  validate:"dive"`
	CWEIDs          []int         `json:"cwe_ids,omitempty"`
	OWASPCategories []string      `json:"owasp_categories,omitempty"`
}

// Detector returns the detector id, defaulting to the pattern id.
func (p PatternEvidence) Detector() string {
	if p.DetectorID != "" {
		return p.DetectorID
	}
	return p.PatternID
}

type ConstraintViolation struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

type ConstraintEvidence struct {
	ID          string                `json:"id"          validate:"required"`
	Description string                `json:"description,omitempty"`
	Violations  []ConstraintViolation `json:"violations,omitempty"`
}

// Passed reports whether the constraint holds everywhere.
func (c ConstraintEvidence) Passed() bool { return len(c.Violations) == 0 }

// Security finding severities as reported upstream.
const (
	FindingCritical = "critical"
	FindingHigh     = "high"
	FindingMedium   = "medium"
	FindingLow      = "low"
)

type SecurityFinding struct {
	File        string   `json:"file"     validate:"required"`
	Line        int      `json:"line"`
	Severity    string   `json:"severity" validate:"required,oneof=critical high medium low info"`
	CWE         []int    `json:"cwe,omitempty"`
	OWASP       []string `json:"owasp,omitempty"`
	Description string   `json:"description,omitempty"`
	DetectorID  string   `json:"detector_id,omitempty"`
}

// Blocking reports whether the finding is critical or high.
func (f SecurityFinding) Blocking() bool {
	return f.Severity == FindingCritical || f.Severity == FindingHigh
}

// CoverageEvidence maps source to tests. Threshold is a percentage; zero
// means the configured default applies.
type CoverageEvidence struct {
	Covered   int      `json:"covered"   validate:"gte=0"`
	Uncovered int      `json:"uncovered" validate:"gte=0"`
	Total     int      `json:"total"     validate:"gte=0"`
	Threshold float64  `json:"threshold,omitempty" validate:"gte=0,lte=100"`
	Files     []string `json:"uncovered_files,omitempty"`
}

// Percent returns covered/total as a percentage.
func (c CoverageEvidence) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Covered) / float64(c.Total) * 100
}

// Error-handling gap types.
const (
	GapSwallowed    = "swallowed"
	GapUnhandled    = "unhandled"
	GapGenericCatch = "generic_catch"
	GapEmptyCatch   = "empty_catch"
)

type ErrorGap struct {
	GapType    string `json:"gap_type" validate:"required,oneof=swallowed unhandled generic_catch empty_catch"`
	Severity   string `json:"severity,omitempty"`
	File       string `json:"file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Message    string `json:"message,omitempty"`
	DetectorID string `json:"detector_id,omitempty"`
}

// Blocking reports whether the gap fails the error-handling gate.
func (g ErrorGap) Blocking() bool {
	return g.GapType == GapSwallowed || g.GapType == GapUnhandled
}

// Baseline is the prior run's state handed to the regression gate.
type Baseline struct {
	RunID        string          `json:"run_id"`
	HealthScore  float64         `json:"health_score"`
	ViolationIDs map[string]bool `json:"violation_ids"`
}

// Known reports whether the violation identity existed in the prior run.
func (b *Baseline) Known(key string) bool {
	if b == nil {
		return false
	}
	return b.ViolationIDs[key]
}
