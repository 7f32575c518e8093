package audit

import (
	"fmt"
	"math"

	"github.com/abdidvp/kraftgate/internal/domain"
)

const (
	trendDelta     = 2.0
	trendWindow    = 7
	minPredictRuns = 5
	slopeStable    = 0.1
)

// Direction compares the recent average of scores with the older one.
// scores are oldest first.
func Direction(scores []float64) domain.TrendDirection {
	n := len(scores)
	if n < 2 {
		return domain.TrendStable
	}

	var recent, older float64
	if n >= trendWindow {
		recent = mean(scores[n-trendWindow:])
	} else {
		recent = mean(scores)
	}
	switch {
	case n >= 2*trendWindow:
		older = mean(scores[n-2*trendWindow : n-trendWindow])
	default:
		older = mean(scores[:n/2])
	}

	delta := recent - older
	switch {
	case delta > trendDelta:
		return domain.TrendImproving
	case delta < -trendDelta:
		return domain.TrendDeclining
	}
	return domain.TrendStable
}

// Predict fits a least-squares line through scores and extrapolates 7 and
// 30 runs ahead. It needs at least five points.
func Predict(scores []float64) *domain.TrendPrediction {
	if len(scores) < minPredictRuns {
		return nil
	}
	n := float64(len(scores))
	xMean := (n - 1) / 2
	yMean := mean(scores)

	var num, den float64
	for i, y := range scores {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den < math.SmallestNonzeroFloat64 {
		return nil
	}
	slope := num / den
	intercept := yMean - slope*xMean

	var ssRes, ssTot float64
	for i, y := range scores {
		fit := slope*float64(i) + intercept
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - yMean) * (y - yMean)
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	last := n - 1
	dir := domain.TrendStable
	switch {
	case slope > slopeStable:
		dir = domain.TrendImproving
	case slope < -slopeStable:
		dir = domain.TrendDeclining
	}
	return &domain.TrendPrediction{
		Predicted7:  clamp(slope*(last+7)+intercept, 0, 100),
		Predicted30: clamp(slope*(last+30)+intercept, 0, 100),
		Slope:       slope,
		RSquared:    r2,
		Direction:   dir,
	}
}

// Anomalies flags the latest value when its z-score exceeds threshold.
func Anomalies(metric string, values []float64, threshold float64) []domain.Anomaly {
	if len(values) < 3 {
		return nil
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	std := math.Sqrt(variance / float64(len(values)))
	if std < 1e-12 {
		return nil
	}
	last := values[len(values)-1]
	z := (last - m) / std
	if math.Abs(z) <= threshold {
		return nil
	}
	return []domain.Anomaly{{
		Metric:  metric,
		Value:   last,
		Mean:    m,
		StdDev:  std,
		ZScore:  z,
		Message: fmt.Sprintf("anomaly in %s: %.2f (z-score %.2f, mean %.2f)", metric, last, z, m),
	}}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
