package application_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abdidvp/kraftgate/internal/adapters/outbound/evidence"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/source"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/store"
	"github.com/abdidvp/kraftgate/internal/application"
	"github.com/abdidvp/kraftgate/internal/domain"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// clock is a settable test clock.
type clock struct{ at atomic.Pointer[time.Time] }

func newClock(at time.Time) *clock {
	c := &clock{}
	c.set(at)
	return c
}

func (c *clock) set(at time.Time) { c.at.Store(&at) }
func (c *clock) now() time.Time   { return *c.at.Load() }

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%03d", n.Add(1)) }
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// staticConfig is a ConfigLoader that returns a fixed config.
type staticConfig struct {
	cfg domain.ProjectConfig
	err error
}

func (s staticConfig) Load(string) (domain.ProjectConfig, error) { return s.cfg, s.err }

// fakeGit reports a repository whose lines were all first seen at one
// time, except files listed in fresh which have no history.
type fakeGit struct {
	seen  time.Time
	fresh map[string]bool
}

func (g fakeGit) IsGitRepo(string) bool              { return true }
func (g fakeGit) CommitHash(string) (string, error) { return "abc123", nil }
func (g fakeGit) History(string) (domain.LocationHistory, error) {
	return g, nil
}
func (g fakeGit) FirstSeen(file string, _ int) (time.Time, bool) {
	if g.fresh[file] {
		return time.Time{}, false
	}
	return g.seen, true
}

// passingEvidence clears the standard policy: every gate with input passes.
func passingEvidence() *domain.Evidence {
	var locs []domain.Location
	for i := 1; i <= 10; i++ {
		locs = append(locs, domain.Location{File: "pkg/a.go", Line: i * 10})
	}
	return &domain.Evidence{
		Language: "go",
		Patterns: []domain.PatternEvidence{{
			PatternID:   "camelCase",
			DetectorID:  "naming",
			Category:    "naming",
			Confidence:  0.95,
			Status:      domain.PatternApproved,
			InCallGraph: true,
			Locations:   locs,
		}},
		Constraints:      []domain.ConstraintEvidence{{ID: "no-cycles"}},
		SecurityFindings: []domain.SecurityFinding{{File: "pkg/b.go", Line: 4, Severity: domain.FindingLow}},
		Coverage:         &domain.CoverageEvidence{Covered: 9, Uncovered: 1, Total: 10},
	}
}

// withOutlier adds a high-confidence outlier at pkg/a.go:7.
func withOutlier(ev *domain.Evidence) *domain.Evidence {
	ev.Patterns[0].Outliers = []domain.Outlier{{
		Location:       domain.Location{File: "pkg/a.go", Line: 7},
		DeviationScore: 2.5,
		Message:        "snake_case identifier",
	}}
	return ev
}

type fixture struct {
	dir   string
	store *store.Store
	clock *clock
	cfg   domain.ProjectConfig
	git   domain.GitInfo
	ids   func() string
}

func newFixture(t *testing.T, ev *domain.Evidence) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, evidence.Save(filepath.Join(dir, domain.DefaultEvidencePath), ev))
	return &fixture{
		dir:   dir,
		store: openStore(t),
		clock: newClock(t0),
		cfg:   domain.DefaultConfig(),
		ids:   sequentialIDs(),
	}
}

func (f *fixture) setEvidence(t *testing.T, ev *domain.Evidence) {
	t.Helper()
	require.NoError(t, evidence.Save(filepath.Join(f.dir, domain.DefaultEvidencePath), ev))
}

func (f *fixture) writeSource(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (f *fixture) check(opts ...application.Option) *application.CheckService {
	opts = append([]application.Option{
		application.WithClock(f.clock.now),
		application.WithIDs(f.ids),
	}, opts...)
	return application.NewCheckService(
		staticConfig{cfg: f.cfg},
		evidence.New(),
		source.New(),
		f.git,
		f.store,
		opts...,
	)
}

func (f *fixture) feedback() *application.FeedbackService {
	return application.NewFeedbackService(staticConfig{cfg: f.cfg}, f.store, application.WithClock(f.clock.now))
}
