package feedback

import "time"

// Metrics are the rolling counters of one detector or pattern.
type Metrics struct {
	ID             string  `json:"id"`
	Actions        int     `json:"actions"`
	Findings       int     `json:"findings"`
	FalsePositives int     `json:"false_positives"`
	Fixed          int     `json:"fixed"`
	Dismissed      int     `json:"dismissed"`
	Suppressed     int     `json:"suppressed"`
	Escalated      int     `json:"escalated"`
	FPRate         float64 `json:"fp_rate"`
	ActionRate     float64 `json:"action_rate"`
	Meaningful     bool    `json:"meaningful"`
	// AboveSince is when the rate last rose above the disable threshold
	// while meaningful. Zero when it is not above.
	AboveSince time.Time `json:"above_since,omitzero"`
	Disabled   bool      `json:"disabled"`
	DisabledAt time.Time `json:"disabled_at,omitzero"`
}

// counter keeps distinct-finding sets so repeated actions on one violation
// count it once.
type counter struct {
	Metrics
	findings map[string]bool
	fps      map[string]bool
}

func newCounter(id string) *counter {
	return &counter{
		Metrics:  Metrics{ID: id},
		findings: make(map[string]bool),
		fps:      make(map[string]bool),
	}
}

func (c *counter) snapshot() Metrics { return c.Metrics }

// streakMet reports whether the rate has stayed above the disable
// threshold for the sustained period as of now.
func (c *counter) streakMet(now time.Time, cfg Config) bool {
	if c.AboveSince.IsZero() {
		return false
	}
	return now.Sub(c.AboveSince) >= cfg.sustained()
}
