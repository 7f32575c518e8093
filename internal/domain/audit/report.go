package audit

import "github.com/abdidvp/kraftgate/internal/domain"

// AnomalyZScore is the z-score beyond which the latest health score is
// reported as anomalous.
const AnomalyZScore = 2.0

// Report summarizes a snapshot history, oldest first. Direction,
// prediction and anomalies are computed over trend, the full health score
// series; when trend is empty the history scores are used.
func Report(history []domain.AuditSnapshot, trend []float64, th Thresholds) domain.AuditReport {
	rep := domain.AuditReport{
		History:   history,
		Direction: domain.TrendStable,
	}
	if len(history) == 0 {
		return rep
	}

	latest := history[len(history)-1]
	rep.Latest = &latest

	scores := trend
	if len(scores) == 0 {
		scores = make([]float64, len(history))
		for i, s := range history {
			scores[i] = s.HealthScore
		}
	}
	rep.Direction = Direction(scores)
	rep.Prediction = Predict(scores)
	rep.Anomalies = Anomalies("health_score", scores, AnomalyZScore)
	if len(history) >= 2 {
		rep.Alerts = Degradation(history[len(history)-2], latest, th)
	}
	return rep
}
