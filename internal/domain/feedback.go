package domain

import (
	"fmt"
	"time"
)

type FeedbackAction string

const (
	ActionFix      FeedbackAction = "fix"
	ActionDismiss  FeedbackAction = "dismiss"
	ActionSuppress FeedbackAction = "suppress"
	ActionEscalate FeedbackAction = "escalate"
)

func ParseFeedbackAction(s string) (FeedbackAction, error) {
	switch a := FeedbackAction(s); a {
	case ActionFix, ActionDismiss, ActionSuppress, ActionEscalate:
		return a, nil
	}
	return "", fmt.Errorf("unknown feedback action %q (valid: fix, dismiss, suppress, escalate)", s)
}

type DismissalReason string

const (
	ReasonFalsePositive DismissalReason = "false_positive"
	ReasonNotApplicable DismissalReason = "not_applicable"
	ReasonWontFix       DismissalReason = "wont_fix"
	ReasonDuplicate     DismissalReason = "duplicate"
)

func ParseDismissalReason(s string) (DismissalReason, error) {
	switch r := DismissalReason(s); r {
	case "", ReasonFalsePositive, ReasonNotApplicable, ReasonWontFix, ReasonDuplicate:
		return r, nil
	}
	return "", fmt.Errorf("unknown dismissal reason %q (valid: false_positive, not_applicable, wont_fix, duplicate)", s)
}

// FeedbackRecord is one developer action on a violation. Records are
// append-only and deduplicated on (violation, action, timestamp).
type FeedbackRecord struct {
	ViolationID     string          `json:"violation_id"`
	PatternID       string          `json:"pattern_id"`
	DetectorID      string          `json:"detector_id"`
	Action          FeedbackAction  `json:"action"`
	DismissalReason DismissalReason `json:"dismissal_reason,omitempty"`
	Author          string          `json:"author,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// DedupKey identifies duplicate submissions of the same action.
func (r FeedbackRecord) DedupKey() string {
	return fmt.Sprintf("%s|%s|%d", r.ViolationID, r.Action, r.Timestamp.UnixNano())
}

// FalsePositive reports whether the record marks its finding as incorrect.
func (r FeedbackRecord) FalsePositive() bool {
	return r.Action == ActionDismiss && r.DismissalReason == ReasonFalsePositive
}

func (r FeedbackRecord) Validate() error {
	if r.ViolationID == "" {
		return fmt.Errorf("feedback record: violation id is required")
	}
	if r.PatternID == "" && r.DetectorID == "" {
		return fmt.Errorf("feedback record: pattern id or detector id is required")
	}
	if _, err := ParseFeedbackAction(string(r.Action)); err != nil {
		return fmt.Errorf("feedback record: %w", err)
	}
	if r.DismissalReason != "" && r.Action != ActionDismiss {
		return fmt.Errorf("feedback record: dismissal reason given for %s action", r.Action)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("feedback record: timestamp is required")
	}
	return nil
}

// PatternConfidence is the Beta-distribution state of a pattern. The state
// is owned by the evidence producer and adjusted by feedback.
type PatternConfidence struct {
	PatternID string  `json:"pattern_id"`
	Alpha     float64 `json:"alpha"`
	Beta      float64 `json:"beta"`
}

// Value returns the posterior mean alpha/(alpha+beta).
func (c PatternConfidence) Value() float64 {
	if c.Alpha+c.Beta == 0 {
		return 0
	}
	return c.Alpha / (c.Alpha + c.Beta)
}

// FeedbackStats is the read-only view of feedback statistics consumed by
// rules and gates. It lets them depend on feedback without depending on the
// tracker that produces it.
type FeedbackStats interface {
	PatternFalsePositiveRate(patternID string) float64
	IsDetectorDisabled(detectorID string) bool
	DetectorFeedbackCount(detectorID string) int
}

// NoFeedback is the FeedbackStats of a project with no recorded actions.
type NoFeedback struct{}

func (NoFeedback) PatternFalsePositiveRate(string) float64 { return 0 }
func (NoFeedback) IsDetectorDisabled(string) bool          { return false }
func (NoFeedback) DetectorFeedbackCount(string) int        { return 0 }

// FeedbackOutcome is returned to the caller of the feedback operation.
type FeedbackOutcome struct {
	Record         FeedbackRecord `json:"record"`
	Duplicate      bool           `json:"duplicate"`
	Alpha          float64        `json:"alpha"`
	Beta           float64        `json:"beta"`
	Confidence     float64        `json:"confidence"`
	FalsePositive  float64        `json:"fp_rate"`
	Meaningful     bool           `json:"fp_rate_meaningful"`
	Alert          bool           `json:"alert"`
	Disabled       bool           `json:"detector_disabled"`
	AbusiveAuthors []string       `json:"abusive_authors,omitempty"`
}
