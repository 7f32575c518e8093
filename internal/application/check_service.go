package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/abdidvp/kraftgate/internal/domain/audit"
	"github.com/abdidvp/kraftgate/internal/domain/feedback"
	"github.com/abdidvp/kraftgate/internal/domain/gates"
	"github.com/abdidvp/kraftgate/internal/domain/policy"
	"github.com/abdidvp/kraftgate/internal/domain/progressive"
	"github.com/abdidvp/kraftgate/internal/domain/rules"
)

// CheckOptions tune a single check run.
type CheckOptions struct {
	// Policy replaces the configured policy with a named preset.
	Policy string
	// EvidencePath overrides the default evidence location.
	EvidencePath string
	// NoPersist evaluates without writing the run to the store.
	NoPersist bool
}

// CheckService orchestrates the check pipeline:
// config -> evidence -> baseline -> feedback -> rules -> progressive ->
// health -> gates -> policy -> persist.
type CheckService struct {
	configLoader domain.ConfigLoader
	evidence     domain.EvidenceLoader
	sources      domain.SourceReader
	git          domain.GitInfo
	store        domain.Store
	ambient

	// persistMu serializes run writes from concurrent checks.
	persistMu sync.Mutex
}

func NewCheckService(
	configLoader domain.ConfigLoader,
	evidence domain.EvidenceLoader,
	sources domain.SourceReader,
	git domain.GitInfo,
	store domain.Store,
	opts ...Option,
) *CheckService {
	return &CheckService{
		configLoader: configLoader,
		evidence:     evidence,
		sources:      sources,
		git:          git,
		store:        store,
		ambient:      newAmbient(opts),
	}
}

// Check evaluates the project's evidence and returns the full report. A
// *domain.ConfigError aborts before any gate runs. A *domain.PersistError
// is returned together with the complete report, which Persist can retry.
// When ctx is cancelled during evaluation, gates not yet started are
// skipped and the report is returned with ctx's error.
func (s *CheckService) Check(ctx context.Context, projectPath string, opts CheckOptions) (*domain.CheckReport, error) {
	// 1. Load and validate config
	cfg, err := s.configLoader.Load(projectPath)
	if err != nil {
		return nil, &domain.ConfigError{Op: "config", Err: err}
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &domain.ConfigError{Op: "config", Err: err}
	}

	// 2. Resolve policy
	pol, err := s.resolvePolicy(cfg, opts.Policy)
	if err != nil {
		return nil, err
	}

	// 3. Load evidence
	ev, err := s.evidence.Load(domain.EvidencePath(projectPath, opts.EvidencePath))
	if err != nil {
		return nil, fmt.Errorf("loading evidence: %w", err)
	}

	// 4. Baseline from the most recent prior run
	prev, baseline, err := s.baseline(ctx)
	if err != nil {
		return nil, err
	}

	// 5. Feedback statistics
	records, err := s.store.Feedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading feedback: %w", err)
	}
	tracker := feedback.Replay(feedback.ConfigFrom(cfg.Feedback), records,
		feedback.WithClock(s.now), feedback.WithLogger(s.logger))

	// 6. Read sources for suppression comments
	cands := rules.Candidates(ev)
	lines, err := s.sources.ReadLines(projectPath, candidateFiles(cands))
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}

	// 7. Evaluate rules
	lang := cfg.Language
	if lang == "" {
		lang = ev.Language
	}
	evaluator := rules.New(tracker,
		rules.WithLanguage(lang),
		rules.WithExcludePaths(cfg.ExcludePaths),
		rules.WithDowngradeRate(cfg.Feedback.DowngradeRate),
	)
	violations := evaluator.Evaluate(cands, lines, baseline)

	// 8. Progressive enforcement
	if cfg.Progressive.Enabled {
		violations = progressive.New(cfg.Progressive.RampDays, s.history(projectPath)).
			WithClock(s.now).
			Apply(violations)
	}
	for i := range violations {
		violations[i].ID = s.newID()
	}

	// 9. Health snapshot; the regression gate compares against it
	runID := s.newID()
	at := s.now()
	dups := audit.Duplicates(ev.Patterns, cfg.Audit.DuplicateThreshold)
	snap := audit.Snapshot(runID, ev.Patterns, dups, at)
	snap.CommitHash = s.commit(projectPath)

	// 10. Run gates
	orch := gates.NewOrchestrator(
		gates.WithTimeout(cfg.Gates.Timeout),
		gates.WithMaxParallel(cfg.Gates.MaxParallel),
		gates.WithLogger(s.logger),
	)
	results, err := orch.Run(ctx, &gates.Input{
		Violations:        violations,
		Evidence:          ev,
		Stats:             tracker,
		CoverageThreshold: cfg.Gates.CoverageThreshold,
		Baseline:          baseline,
		CurrentHealth:     snap.HealthScore,
	})
	if err != nil {
		return nil, err
	}

	// 11. Policy verdict and degradation alerts
	report := &domain.CheckReport{
		RunID:      runID,
		Timestamp:  at,
		CommitHash: snap.CommitHash,
		Policy:     policy.Evaluate(pol, results),
		Gates:      results,
		Violations: violations,
		Health:     snap,
		Duplicates: dups,
	}
	if prev != nil {
		report.Alerts = audit.Degradation(*prev, snap, audit.Thresholds{
			Warning:  cfg.Audit.WarningDrop,
			Critical: cfg.Audit.CriticalDrop,
		})
	}
	s.metrics.ObserveCheck(report)
	s.logger.Info("check complete",
		"run_id", runID,
		"policy", report.Policy.Policy,
		"passed", report.Policy.OverallPassed,
		"score", report.Policy.OverallScore,
		"violations", len(violations),
	)

	// 12. Persist. An aborted run is reported but not recorded.
	if err := ctx.Err(); err != nil {
		s.logger.Warn("check cancelled, run not persisted", "run_id", runID)
		return report, fmt.Errorf("check cancelled: %w", err)
	}
	if opts.NoPersist {
		return report, nil
	}
	if err := s.Persist(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

// Persist writes the report's run atomically. It is safe to call again
// after a failure.
func (s *CheckService) Persist(ctx context.Context, report *domain.CheckReport) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	err := s.store.WriteRun(ctx, domain.RunRecord{
		RunID:      report.RunID,
		Violations: report.Violations,
		Gates:      report.Gates,
		Snapshot:   report.Health,
	})
	if err != nil {
		s.logger.Error("persisting run failed", "run_id", report.RunID, "error", err)
		return &domain.PersistError{RunID: report.RunID, Err: err}
	}
	report.Persisted = true
	return nil
}

func (s *CheckService) resolvePolicy(cfg domain.ProjectConfig, override string) (policy.Policy, error) {
	var (
		pol policy.Policy
		err error
	)
	if override != "" {
		pol, err = policy.Preset(override)
	} else {
		pol, err = policy.FromConfig(cfg.Policy)
	}
	if err != nil {
		if domain.IsConfigError(err) {
			return policy.Policy{}, err
		}
		return policy.Policy{}, &domain.ConfigError{Op: "policy", Err: err}
	}
	return pol, nil
}

func (s *CheckService) baseline(ctx context.Context) (*domain.AuditSnapshot, *domain.Baseline, error) {
	prev, err := s.store.LatestSnapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading baseline: %w", err)
	}
	if prev == nil {
		return nil, nil, nil
	}
	vs, err := s.store.Violations(ctx, prev.RunID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading baseline: %w", err)
	}
	b := &domain.Baseline{
		RunID:        prev.RunID,
		HealthScore:  prev.HealthScore,
		ViolationIDs: make(map[string]bool, len(vs)),
	}
	for _, v := range vs {
		b.ViolationIDs[v.Key()] = true
	}
	return prev, b, nil
}

// history returns nil when no history is available, which enforces every
// violation fully.
func (s *CheckService) history(projectPath string) domain.LocationHistory {
	if s.git == nil || !s.git.IsGitRepo(projectPath) {
		return nil
	}
	h, err := s.git.History(projectPath)
	if err != nil {
		s.logger.Warn("location history unavailable", "error", err)
		return nil
	}
	return h
}

func (s *CheckService) commit(projectPath string) string {
	if s.git == nil || !s.git.IsGitRepo(projectPath) {
		return ""
	}
	hash, err := s.git.CommitHash(projectPath)
	if err != nil {
		s.logger.Debug("commit hash unavailable", "error", err)
		return ""
	}
	return hash
}

func candidateFiles(cands []rules.Candidate) []string {
	seen := make(map[string]bool)
	var files []string
	for _, c := range cands {
		if c.File != "" && !seen[c.File] {
			seen[c.File] = true
			files = append(files, c.File)
		}
	}
	sort.Strings(files)
	return files
}
