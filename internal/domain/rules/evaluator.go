// Package rules turns evidence into severity-tagged, suppression-aware
// violations.
package rules

import (
	"sort"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/bmatcuk/doublestar/v4"
)

// DefaultDowngradeRate is the pattern false-positive rate above which base
// severity is lowered one level.
const DefaultDowngradeRate = 0.20

// Evaluator converts candidates into deduplicated violations. It reads
// feedback statistics only through the narrow FeedbackStats view.
type Evaluator struct {
	stats         domain.FeedbackStats
	language      string
	exclude       []string
	downgradeRate float64
}

type Option func(*Evaluator)

// WithLanguage selects quick-fix templates.
func WithLanguage(lang string) Option {
	return func(e *Evaluator) { e.language = lang }
}

// WithExcludePaths drops violations in files matching any doublestar glob.
func WithExcludePaths(globs []string) Option {
	return func(e *Evaluator) { e.exclude = globs }
}

func WithDowngradeRate(rate float64) Option {
	return func(e *Evaluator) {
		if rate > 0 {
			e.downgradeRate = rate
		}
	}
}

func New(stats domain.FeedbackStats, opts ...Option) *Evaluator {
	if stats == nil {
		stats = domain.NoFeedback{}
	}
	e := &Evaluator{stats: stats, downgradeRate: DefaultDowngradeRate}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate assigns severity, quick fixes and suppression to each candidate,
// then collapses (file, line, rule) duplicates keeping the maximum
// severity. sources maps files to their lines for the directive scan.
// Violations absent from a non-nil baseline are marked new. The result is
// sorted by file, line and rule.
func (e *Evaluator) Evaluate(cands []Candidate, sources map[string][]string, baseline *domain.Baseline) []domain.Violation {
	index := make(map[string]int, len(cands))
	var out []domain.Violation

	for _, c := range cands {
		if e.stats.IsDetectorDisabled(c.DetectorID) || e.excluded(c.File) {
			continue
		}
		v := e.build(c, sources)
		if baseline != nil {
			v.IsNew = !baseline.Known(v.Key())
		}

		key := v.Key()
		if i, ok := index[key]; ok {
			if v.Severity > out[i].Severity {
				v.Suppressed = v.Suppressed || out[i].Suppressed
				out[i] = v
			}
			continue
		}
		index[key] = len(out)
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}

func (e *Evaluator) build(c Candidate, sources map[string][]string) domain.Violation {
	sev := c.Tier.BaseSeverity()
	if e.stats.PatternFalsePositiveRate(c.PatternID) > e.downgradeRate {
		sev = sev.Downgrade()
	}
	return domain.Violation{
		File:            c.File,
		Line:            c.Line,
		Column:          c.Column,
		EndLine:         c.EndLine,
		EndColumn:       c.EndColumn,
		Severity:        sev,
		BaseSeverity:    sev,
		PatternID:       c.PatternID,
		RuleID:          c.RuleID,
		DetectorID:      c.DetectorID,
		Category:        c.Category,
		Source:          c.Source,
		Message:         c.Message,
		QuickFix:        QuickFix(c, e.language),
		CWEIDs:          c.CWEIDs,
		OWASPCategories: c.OWASPCategories,
		Suppressed:      Suppressed(sources[c.File], c.Line, c.RuleID),
	}
}

func (e *Evaluator) excluded(file string) bool {
	for _, glob := range e.exclude {
		if ok, _ := doublestar.Match(glob, file); ok {
			return true
		}
	}
	return false
}
