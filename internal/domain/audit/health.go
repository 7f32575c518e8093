// Package audit scores codebase health per run and watches the series for
// degradation, duplicates and trends.
package audit

import (
	"math"
	"sort"
	"time"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Health factor weights.
const (
	WeightConfidence      = 0.30
	WeightApproval        = 0.20
	WeightCompliance      = 0.20
	WeightCrossValidation = 0.15
	WeightDuplicateFree   = 0.15
)

// EmptyHealthScore is the score of a project with no patterns: only
// compliance and duplicate-freedom contribute.
const EmptyHealthScore = 30.0

// Score combines the five normalized factors into a 0-100 health score.
func Score(f domain.HealthFactors) float64 {
	raw := f.AvgConfidence*WeightConfidence +
		f.ApprovalRatio*WeightApproval +
		f.ComplianceRate*WeightCompliance +
		f.CrossValidationRate*WeightCrossValidation +
		f.DuplicateFreeRate*WeightDuplicateFree
	return clamp(raw*100, 0, 100)
}

// Factors derives the health factors of a pattern set. Ignored patterns do
// not count. duplicates are location-scope candidates.
func Factors(patterns []domain.PatternEvidence, duplicates []domain.DuplicateCandidate) domain.HealthFactors {
	active := activePatterns(patterns)
	if len(active) == 0 {
		return domain.HealthFactors{ComplianceRate: 1, DuplicateFreeRate: 1}
	}

	n := float64(len(active))
	var confidence float64
	approved, inGraph := 0, 0
	for _, p := range active {
		confidence += p.Confidence
		if p.Status == domain.PatternApproved {
			approved++
		}
		if p.InCallGraph {
			inGraph++
		}
	}

	return domain.HealthFactors{
		AvgConfidence:       confidence / n,
		ApprovalRatio:       float64(approved) / n,
		ComplianceRate:      complianceRate(active),
		CrossValidationRate: float64(inGraph) / n,
		DuplicateFreeRate:   duplicateFreeRate(active, duplicates),
	}
}

// Snapshot scores a run's patterns.
func Snapshot(runID string, patterns []domain.PatternEvidence, duplicates []domain.DuplicateCandidate, at time.Time) domain.AuditSnapshot {
	f := Factors(patterns, duplicates)
	return domain.AuditSnapshot{
		RunID:       runID,
		HealthScore: Score(f),
		Factors:     f,
		Categories:  Categories(patterns, duplicates),
		Timestamp:   at,
	}
}

// Categories scores each pattern category on its own.
func Categories(patterns []domain.PatternEvidence, duplicates []domain.DuplicateCandidate) map[string]domain.CategoryHealth {
	byCat := make(map[string][]domain.PatternEvidence)
	for _, p := range activePatterns(patterns) {
		byCat[p.Category] = append(byCat[p.Category], p)
	}
	if len(byCat) == 0 {
		return nil
	}

	out := make(map[string]domain.CategoryHealth, len(byCat))
	for cat, ps := range byCat {
		f := Factors(ps, duplicates)
		out[cat] = domain.CategoryHealth{
			Category:       cat,
			Score:          Score(f),
			PatternCount:   len(ps),
			AvgConfidence:  f.AvgConfidence,
			ComplianceRate: f.ComplianceRate,
		}
	}
	return out
}

func activePatterns(patterns []domain.PatternEvidence) []domain.PatternEvidence {
	out := make([]domain.PatternEvidence, 0, len(patterns))
	for _, p := range patterns {
		if p.Status != domain.PatternIgnored {
			out = append(out, p)
		}
	}
	return out
}

func complianceRate(patterns []domain.PatternEvidence) float64 {
	locations, outliers := 0, 0
	for _, p := range patterns {
		locations += len(p.Locations)
		outliers += len(p.Outliers)
	}
	if locations+outliers == 0 {
		return 1
	}
	return float64(locations) / float64(locations+outliers)
}

// duplicateFreeRate is the share of patterns not involved in any
// location-scope duplicate candidate.
func duplicateFreeRate(patterns []domain.PatternEvidence, duplicates []domain.DuplicateCandidate) float64 {
	ids := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		ids[p.PatternID] = true
	}
	involved := make(map[string]bool)
	for _, d := range duplicates {
		if d.Scope != domain.ScopeLocation {
			continue
		}
		if ids[d.PatternA] && ids[d.PatternB] {
			involved[d.PatternA] = true
			involved[d.PatternB] = true
		}
	}
	return math.Max(0, 1-float64(len(involved))/float64(len(patterns)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// sortedKeys returns map keys in order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
