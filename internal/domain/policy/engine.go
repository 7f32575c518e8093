package policy

import (
	"fmt"
	"math"
	"strings"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Evaluate aggregates results under p. It is pure and can be recomputed from
// stored gate results at any time. p is assumed valid.
func Evaluate(p Policy, results []domain.GateResult) domain.PolicyResult {
	byID := make(map[domain.GateID]domain.GateResult, len(results))
	for _, r := range results {
		byID[r.GateID] = r
	}

	weights := normalizedWeights(p)
	res := domain.PolicyResult{
		Policy:              p.Name,
		AggregationMode:     p.Mode,
		RequiredGatesPassed: true,
	}

	var unmet []string
	seen := make(map[domain.GateID]bool)
	for _, id := range append(append([]domain.GateID{}, p.considered()...), p.RequiredGates...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		r, present := byID[id]
		b := domain.GateBreakdown{
			GateID:    id,
			Status:    r.Status,
			Score:     r.Score,
			Weight:    weights[id],
			Required:  p.required(id),
			Present:   present,
			Satisfied: p.satisfied(r, present),
		}
		if b.Required && !b.Satisfied {
			res.RequiredGatesPassed = false
			unmet = append(unmet, describeUnmet(id, r, present))
		}
		res.PerGate = append(res.PerGate, b)
	}

	switch p.Mode {
	case domain.ModeAllMustPass:
		res.OverallScore = meanEvaluated(p.considered(), byID)
		res.OverallPassed = true
		for _, id := range p.decisionSet() {
			r, present := byID[id]
			if !p.satisfied(r, present) {
				res.OverallPassed = false
				res.Reason = describeUnmet(id, r, present)
				break
			}
		}
	case domain.ModeAnyMustPass:
		res.OverallScore = meanEvaluated(p.considered(), byID)
		for _, id := range p.decisionSet() {
			r, present := byID[id]
			if p.satisfied(r, present) {
				res.OverallPassed = true
				break
			}
		}
		if !res.OverallPassed {
			res.Reason = "no gate passed"
		}
	case domain.ModeWeighted:
		score := 0.0
		for _, id := range p.considered() {
			if r, ok := byID[id]; ok && r.Evaluated() {
				score += r.Score * weights[id]
			}
		}
		res.OverallScore = score
		res.OverallPassed = score >= p.Threshold && res.RequiredGatesPassed
		if score < p.Threshold {
			res.Reason = fmt.Sprintf("weighted score %.1f below %.1f", score, p.Threshold)
		}
	case domain.ModeThreshold:
		var metric float64
		if p.ThresholdMetric == domain.MetricMinScore {
			metric = minEvaluated(p.considered(), byID)
		} else {
			metric = meanEvaluated(p.considered(), byID)
		}
		res.OverallScore = metric
		res.OverallPassed = metric >= p.Threshold && res.RequiredGatesPassed
		if metric < p.Threshold {
			res.Reason = fmt.Sprintf("%s %.1f below %.1f", p.ThresholdMetric, metric, p.Threshold)
		}
	}

	if !res.RequiredGatesPassed && res.Reason == "" {
		res.Reason = "required gates not satisfied: " + strings.Join(unmet, ", ")
	}
	if res.OverallPassed {
		res.Reason = ""
	}
	return res
}

func describeUnmet(id domain.GateID, r domain.GateResult, present bool) string {
	if !present {
		return fmt.Sprintf("%s absent", id)
	}
	return fmt.Sprintf("%s %s", id, r.Status)
}

// normalizedWeights scales the configured weights of the considered gates
// to sum to one. Only weighted policies carry weights.
func normalizedWeights(p Policy) map[domain.GateID]float64 {
	out := make(map[domain.GateID]float64)
	if p.Mode != domain.ModeWeighted {
		return out
	}
	sum := 0.0
	for _, id := range p.considered() {
		sum += p.Weights[id]
	}
	if sum == 0 {
		return out
	}
	for _, id := range p.considered() {
		if w := p.Weights[id]; w > 0 {
			out[id] = w / sum
		}
	}
	return out
}

func meanEvaluated(ids []domain.GateID, byID map[domain.GateID]domain.GateResult) float64 {
	sum, n := 0.0, 0
	for _, id := range ids {
		if r, ok := byID[id]; ok && r.Evaluated() {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func minEvaluated(ids []domain.GateID, byID map[domain.GateID]domain.GateResult) float64 {
	minScore, found := math.Inf(1), false
	for _, id := range ids {
		if r, ok := byID[id]; ok && r.Evaluated() {
			minScore = math.Min(minScore, r.Score)
			found = true
		}
	}
	if !found {
		return 0
	}
	return minScore
}
