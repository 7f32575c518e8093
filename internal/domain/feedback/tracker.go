package feedback

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Update describes the effect of one recorded action.
type Update struct {
	Duplicate      bool
	Detector       Metrics
	Pattern        Metrics
	Alert          bool
	NewlyDisabled  bool
	AbusiveAuthors []string
}

type dismissal struct {
	author string
	at     time.Time
}

// Tracker maintains per-detector and per-pattern counters. Every Record is
// an atomic read-modify-write so concurrent actions never lose updates.
//
// Disablement is a pure function of the record sequence and the evaluation
// time, so replaying the log reproduces it. Once disabled a detector stays
// disabled.
type Tracker struct {
	mu         sync.RWMutex
	cfg        Config
	detectors  map[string]*counter
	patterns   map[string]*counter
	seen       map[string]bool
	dismissals []dismissal
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

func NewTracker(cfg Config, opts ...Option) *Tracker {
	t := &Tracker{
		cfg:       cfg,
		detectors: make(map[string]*counter),
		patterns:  make(map[string]*counter),
		seen:      make(map[string]bool),
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Replay builds a tracker from a stored log, applying records in timestamp
// order.
func Replay(cfg Config, records []domain.FeedbackRecord, opts ...Option) *Tracker {
	sorted := append([]domain.FeedbackRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	t := NewTracker(cfg, opts...)
	for _, rec := range sorted {
		t.Record(rec)
	}
	return t
}

// Record applies one action. Records with an already-seen dedup key change
// nothing and are reported as duplicates.
func (t *Tracker) Record(rec domain.FeedbackRecord) Update {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := rec.DedupKey()
	if t.seen[key] {
		return Update{Duplicate: true}
	}
	t.seen[key] = true

	detectorID := rec.DetectorID
	if detectorID == "" {
		detectorID = rec.PatternID
	}
	det := t.counterFor(t.detectors, detectorID)
	wasDisabled := det.Disabled
	t.apply(det, rec)
	if rec.PatternID != "" {
		t.apply(t.counterFor(t.patterns, rec.PatternID), rec)
	}

	if rec.Action == domain.ActionDismiss && rec.Author != "" {
		t.dismissals = append(t.dismissals, dismissal{author: rec.Author, at: rec.Timestamp})
	}

	up := Update{
		Detector:       det.snapshot(),
		Alert:          det.Meaningful && det.FPRate >= t.cfg.AlertRate,
		NewlyDisabled:  det.Disabled && !wasDisabled,
		AbusiveAuthors: t.abusiveLocked(rec.Timestamp),
	}
	if p, ok := t.patterns[rec.PatternID]; ok {
		up.Pattern = p.snapshot()
	}
	if up.NewlyDisabled {
		t.logger.Warn("detector auto-disabled",
			"detector", detectorID,
			"fp_rate", det.FPRate,
			"above_since", det.AboveSince,
		)
	}
	if len(up.AbusiveAuthors) > 0 {
		t.logger.Warn("dismissal abuse suspected", "authors", up.AbusiveAuthors)
	}
	return up
}

func (t *Tracker) counterFor(m map[string]*counter, id string) *counter {
	c, ok := m[id]
	if !ok {
		c = newCounter(id)
		m[id] = c
	}
	return c
}

// apply updates c and then re-evaluates its disable streak at the record
// time. A streak that completed before this record disables the counter
// even when the record brings the rate back down.
func (t *Tracker) apply(c *counter, rec domain.FeedbackRecord) {
	if c.streakMet(rec.Timestamp, t.cfg) && !c.Disabled {
		c.Disabled = true
		c.DisabledAt = c.AboveSince.Add(t.cfg.sustained())
	}

	c.Actions++
	c.findings[rec.ViolationID] = true
	switch rec.Action {
	case domain.ActionFix:
		c.Fixed++
	case domain.ActionDismiss:
		c.Dismissed++
		if rec.FalsePositive() {
			c.fps[rec.ViolationID] = true
		}
	case domain.ActionSuppress:
		c.Suppressed++
	case domain.ActionEscalate:
		c.Escalated++
	}

	c.Findings = len(c.findings)
	c.FalsePositives = len(c.fps)
	c.FPRate = float64(c.FalsePositives) / float64(c.Findings)
	c.ActionRate = float64(c.Fixed+c.Escalated) / float64(c.Actions)
	c.Meaningful = c.Findings >= t.cfg.MinFindings

	above := c.Meaningful && c.FPRate > t.cfg.DisableRate
	switch {
	case above && c.AboveSince.IsZero():
		c.AboveSince = rec.Timestamp
	case !above:
		c.AboveSince = time.Time{}
	}
}

// abusiveLocked flags authors whose dismissals in the window ending at end
// reach AbuseFactor times the mean of the other authors, with at least
// AbuseMinDismissals dismissals.
func (t *Tracker) abusiveLocked(end time.Time) []string {
	start := end.Add(-t.cfg.AbuseWindow)
	counts := make(map[string]int)
	total := 0
	for _, d := range t.dismissals {
		if d.at.After(start) && !d.at.After(end) {
			counts[d.author]++
			total++
		}
	}

	var flagged []string
	for author, n := range counts {
		if n < t.cfg.AbuseMinDismissals {
			continue
		}
		others := len(counts) - 1
		mean := 0.0
		if others > 0 {
			mean = float64(total-n) / float64(others)
		}
		if float64(n) >= t.cfg.AbuseFactor*mean {
			flagged = append(flagged, author)
		}
	}
	sort.Strings(flagged)
	return flagged
}

// AbusiveAuthors evaluates the abuse check for the window ending now.
func (t *Tracker) AbusiveAuthors() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.abusiveLocked(t.now())
}

func (t *Tracker) PatternFalsePositiveRate(patternID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.patterns[patternID]
	if !ok || !c.Meaningful {
		return 0
	}
	return c.FPRate
}

func (t *Tracker) IsDetectorDisabled(detectorID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.detectors[detectorID]
	if !ok {
		return false
	}
	return c.Disabled || c.streakMet(t.now(), t.cfg)
}

func (t *Tracker) DetectorFeedbackCount(detectorID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.detectors[detectorID]; ok {
		return c.Actions
	}
	return 0
}

// Detector returns the metrics of one detector.
func (t *Tracker) Detector(id string) (Metrics, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.detectors[id]
	if !ok {
		return Metrics{}, false
	}
	m := c.snapshot()
	m.Disabled = m.Disabled || c.streakMet(t.now(), t.cfg)
	return m, true
}

// Detectors returns all detector metrics sorted by id.
func (t *Tracker) Detectors() []Metrics {
	t.mu.RLock()
	ids := make([]string, 0, len(t.detectors))
	for id := range t.detectors {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	sort.Strings(ids)
	out := make([]Metrics, 0, len(ids))
	for _, id := range ids {
		if m, ok := t.Detector(id); ok {
			out = append(out, m)
		}
	}
	return out
}

var _ domain.FeedbackStats = (*Tracker)(nil)
