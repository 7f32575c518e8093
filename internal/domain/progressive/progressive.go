// Package progressive ramps enforcement up on pre-existing code while
// enforcing fully on new code.
package progressive

import (
	"time"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Phase boundaries on the ramp progress scale.
const (
	phaseInfoOnly = 0.25
	phaseSoftened = 0.50
)

// Remap applies the ramp to a base severity. progress is age/ramp. Hints are
// never raised to Info.
func Remap(base domain.Severity, progress float64) domain.Severity {
	switch {
	case progress < phaseInfoOnly:
		if base > domain.SeverityInfo {
			return domain.SeverityInfo
		}
		return base
	case progress < phaseSoftened:
		if base == domain.SeverityError || base == domain.SeverityWarning {
			return base.Downgrade()
		}
		return base
	default:
		return base
	}
}

// Enforcer remaps violation severities by the age of their locations.
type Enforcer struct {
	rampDays int
	history  domain.LocationHistory
	now      func() time.Time
}

// New returns an Enforcer. A nil history means no location has history, so
// every violation is fully enforced.
func New(rampDays int, history domain.LocationHistory) *Enforcer {
	return &Enforcer{rampDays: rampDays, history: history, now: time.Now}
}

// WithClock overrides the current time.
func (e *Enforcer) WithClock(now func() time.Time) *Enforcer {
	e.now = now
	return e
}

// Progress returns age/ramp for a location, and false when the location has
// no recorded history.
func (e *Enforcer) Progress(file string, line int) (float64, bool) {
	if e.history == nil || e.rampDays <= 0 {
		return 0, false
	}
	seen, ok := e.history.FirstSeen(file, line)
	if !ok {
		return 0, false
	}
	age := e.now().Sub(seen).Hours() / 24
	if age < 0 {
		age = 0
	}
	return age / float64(e.rampDays), true
}

// Apply sets each violation's Severity from its BaseSeverity. It derives
// from BaseSeverity every time, so applying it twice at the same phase
// changes nothing.
func (e *Enforcer) Apply(vs []domain.Violation) []domain.Violation {
	out := make([]domain.Violation, len(vs))
	for i, v := range vs {
		progress, ok := e.Progress(v.File, v.Line)
		if ok {
			v.Severity = Remap(v.BaseSeverity, progress)
		} else {
			v.Severity = v.BaseSeverity
		}
		out[i] = v
	}
	return out
}
