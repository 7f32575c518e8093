package rules

import (
	"fmt"
	"strconv"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Candidate is an evidence-backed finding that has not yet been assigned a
// final severity or suppression state.
type Candidate struct {
	File            string
	Line            int
	Column          int
	EndLine         int
	EndColumn       int
	Tier            domain.ConfidenceTier
	PatternID       string
	RuleID          string
	DetectorID      string
	Category        string
	Source          domain.Source
	Message         string
	CWEIDs          []int
	OWASPCategories []string
}

// Candidates flattens every evidence stream into rule candidates. Patterns
// marked ignored produce none.
func Candidates(ev *domain.Evidence) []Candidate {
	if ev == nil {
		return nil
	}
	var out []Candidate

	for _, p := range ev.Patterns {
		if p.Status == domain.PatternIgnored {
			continue
		}
		tier := domain.TierFor(p.Confidence)
		for _, o := range p.Outliers {
			msg := o.Message
			if msg == "" {
				msg = fmt.Sprintf("deviates from pattern %s", p.PatternID)
			}
			out = append(out, Candidate{
				File:            o.File,
				Line:            o.Line,
				Column:          o.Column,
				EndLine:         o.EndLine,
				EndColumn:       o.EndColumn,
				Tier:            tier,
				PatternID:       p.PatternID,
				RuleID:          PatternRuleID(p),
				DetectorID:      p.Detector(),
				Category:        p.Category,
				Source:          domain.SourcePattern,
				Message:         msg,
				CWEIDs:          p.CWEIDs,
				OWASPCategories: p.OWASPCategories,
			})
		}
	}

	for _, c := range ev.Constraints {
		for _, v := range c.Violations {
			msg := v.Message
			if msg == "" {
				msg = c.Description
			}
			out = append(out, Candidate{
				File:       v.File,
				Line:       v.Line,
				Tier:       domain.TierHigh,
				PatternID:  c.ID,
				RuleID:     "constraint/" + c.ID,
				DetectorID: "constraint",
				Category:   "constraint",
				Source:     domain.SourceConstraint,
				Message:    msg,
			})
		}
	}

	for _, f := range ev.SecurityFindings {
		detector := f.DetectorID
		if detector == "" {
			detector = "security"
		}
		out = append(out, Candidate{
			File:            f.File,
			Line:            f.Line,
			Tier:            securityTier(f.Severity),
			PatternID:       detector,
			RuleID:          securityRuleID(f),
			DetectorID:      detector,
			Category:        "security",
			Source:          domain.SourceSecurity,
			Message:         f.Description,
			CWEIDs:          f.CWE,
			OWASPCategories: f.OWASP,
		})
	}

	for _, g := range ev.ErrorGaps {
		if g.File == "" {
			continue
		}
		detector := g.DetectorID
		if detector == "" {
			detector = "error_handling"
		}
		tier := domain.TierMedium
		if g.Blocking() {
			tier = domain.TierHigh
		}
		msg := g.Message
		if msg == "" {
			msg = fmt.Sprintf("%s error handling gap", g.GapType)
		}
		out = append(out, Candidate{
			File:       g.File,
			Line:       g.Line,
			Tier:       tier,
			PatternID:  detector,
			RuleID:     "error-handling/" + g.GapType,
			DetectorID: detector,
			Category:   "error_handling",
			Source:     domain.SourceErrorGap,
			Message:    msg,
		})
	}

	return out
}

// PatternRuleID is the rule id of an outlier of p.
func PatternRuleID(p domain.PatternEvidence) string {
	return p.Category + "/" + p.PatternID
}

func securityTier(severity string) domain.ConfidenceTier {
	switch severity {
	case domain.FindingCritical, domain.FindingHigh:
		return domain.TierHigh
	case domain.FindingMedium:
		return domain.TierMedium
	case domain.FindingLow:
		return domain.TierLow
	default:
		return domain.TierNote
	}
}

func securityRuleID(f domain.SecurityFinding) string {
	if len(f.CWE) > 0 {
		return "security/cwe-" + strconv.Itoa(f.CWE[0])
	}
	if f.DetectorID != "" {
		return "security/" + f.DetectorID
	}
	return "security/finding"
}
