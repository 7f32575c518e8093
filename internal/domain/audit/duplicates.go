package audit

import (
	"path"
	"sort"
	"strconv"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// DefaultDuplicateThreshold is the Jaccard similarity above which two
// patterns are surfaced as duplicate candidates.
const DefaultDuplicateThreshold = 0.85

var scopes = []domain.DuplicateScope{domain.ScopeLocation, domain.ScopeFile, domain.ScopeDirectory}

// Duplicates compares every pair of same-category patterns at each scope.
// Candidates are for review only and are never merged.
func Duplicates(patterns []domain.PatternEvidence, threshold float64) []domain.DuplicateCandidate {
	active := activePatterns(patterns)
	byCat := make(map[string][]domain.PatternEvidence)
	for _, p := range active {
		byCat[p.Category] = append(byCat[p.Category], p)
	}

	var out []domain.DuplicateCandidate
	for _, cat := range sortedKeys(byCat) {
		ps := byCat[cat]
		sort.Slice(ps, func(i, j int) bool { return ps[i].PatternID < ps[j].PatternID })
		for _, scope := range scopes {
			sets := make([]map[string]bool, len(ps))
			for i, p := range ps {
				sets[i] = features(p, scope)
			}
			for i := 0; i < len(ps); i++ {
				for j := i + 1; j < len(ps); j++ {
					sim := Jaccard(sets[i], sets[j])
					if sim > threshold {
						out = append(out, domain.DuplicateCandidate{
							PatternA:   ps[i].PatternID,
							PatternB:   ps[j].PatternID,
							Category:   cat,
							Scope:      scope,
							Similarity: sim,
						})
					}
				}
			}
		}
	}
	return out
}

// features is the set a pattern is compared on: its conforming locations
// reduced to the scope's granularity.
func features(p domain.PatternEvidence, scope domain.DuplicateScope) map[string]bool {
	set := make(map[string]bool, len(p.Locations))
	for _, loc := range p.Locations {
		switch scope {
		case domain.ScopeLocation:
			set[loc.File+":"+strconv.Itoa(loc.Line)] = true
		case domain.ScopeFile:
			set[loc.File] = true
		case domain.ScopeDirectory:
			set[path.Dir(loc.File)] = true
		}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
