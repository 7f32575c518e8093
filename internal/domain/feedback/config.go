// Package feedback tracks developer reactions to violations and derives
// false-positive statistics, detector disablement and confidence updates.
package feedback

import (
	"time"

	"github.com/abdidvp/kraftgate/internal/domain"
)

type Config struct {
	MinFindings        int
	AlertRate          float64
	DisableRate        float64
	SustainedDays      int
	AbuseWindow        time.Duration
	AbuseFactor        float64
	AbuseMinDismissals int
}

func DefaultConfig() Config {
	return ConfigFrom(domain.DefaultConfig().Feedback)
}

// ConfigFrom converts the project configuration section.
func ConfigFrom(c domain.FeedbackConfig) Config {
	return Config{
		MinFindings:        c.MinFindings,
		AlertRate:          c.AlertRate,
		DisableRate:        c.DisableRate,
		SustainedDays:      c.SustainedDays,
		AbuseWindow:        c.AbuseWindow,
		AbuseFactor:        c.AbuseFactor,
		AbuseMinDismissals: c.AbuseMinDismissals,
	}
}

func (c Config) sustained() time.Duration {
	return time.Duration(c.SustainedDays) * 24 * time.Hour
}

// ConfidenceDelta returns the fixed Beta-distribution adjustment for an
// action.
func ConfidenceDelta(rec domain.FeedbackRecord) (dAlpha, dBeta float64) {
	switch rec.Action {
	case domain.ActionFix:
		return 1.0, 0
	case domain.ActionEscalate:
		return 0.5, 0
	case domain.ActionSuppress:
		return 0, 0.1
	case domain.ActionDismiss:
		switch rec.DismissalReason {
		case domain.ReasonFalsePositive:
			return 0, 0.5
		case domain.ReasonNotApplicable:
			return 0, 0.25
		}
	}
	return 0, 0
}
