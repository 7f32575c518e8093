package audit

import (
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Thresholds are the health and confidence drops, in points, that raise
// warning and critical alerts.
type Thresholds struct {
	Warning  float64
	Critical float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 5, Critical: 15}
}

// Degradation compares a snapshot with the one immediately before it.
// Average confidence is compared in percentage points.
func Degradation(prev, cur domain.AuditSnapshot, th Thresholds) []domain.DegradationAlert {
	var alerts []domain.DegradationAlert
	check := func(metric string, before, after float64) {
		drop := before - after
		level := th.level(drop)
		if level == "" {
			return
		}
		alerts = append(alerts, domain.DegradationAlert{
			Level:         level,
			Metric:        metric,
			Previous:      before,
			Current:       after,
			Drop:          drop,
			PreviousRunID: prev.RunID,
			CurrentRunID:  cur.RunID,
			Message:       fmt.Sprintf("%s dropped %.1f points (%.1f -> %.1f)", metric, drop, before, after),
		})
	}
	check("health_score", prev.HealthScore, cur.HealthScore)
	check("avg_confidence", prev.Factors.AvgConfidence*100, cur.Factors.AvgConfidence*100)
	return alerts
}

func (th Thresholds) level(drop float64) domain.AlertLevel {
	const eps = 1e-9
	switch {
	case drop+eps >= th.Critical:
		return domain.AlertCritical
	case drop+eps >= th.Warning:
		return domain.AlertWarning
	}
	return ""
}
