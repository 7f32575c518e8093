package domain

import (
	"context"
	"time"
)

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// EvidenceLoader reads the evidence snapshot produced by upstream detectors.
type EvidenceLoader interface {
	Load(path string) (*Evidence, error)
}

// SourceReader returns the lines of the given project files, keyed by the
// relative path. Unreadable files are omitted.
type SourceReader interface {
	ReadLines(projectPath string, files []string) (map[string][]string, error)
}

// LocationHistory reports when a source line was first seen. ok is false
// for locations with no recorded history.
type LocationHistory interface {
	FirstSeen(file string, line int) (seen time.Time, ok bool)
}

// GitInfo provides repository metadata for snapshots and location history.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
	History(projectPath string) (LocationHistory, error)
}

// RunRecord is everything one check run writes durably.
type RunRecord struct {
	RunID      string
	Violations []Violation
	Gates      []GateResult
	Snapshot   AuditSnapshot
}

// RunWriter persists a complete run. Implementations serialize writes so
// concurrent callers never interleave partial runs.
type RunWriter interface {
	WriteRun(ctx context.Context, run RunRecord) error
}

// RunReader reads prior runs for regression and trend comparison.
type RunReader interface {
	// LatestSnapshot returns the most recently written snapshot by
	// timestamp, or nil when none exists.
	LatestSnapshot(ctx context.Context) (*AuditSnapshot, error)
	// Snapshots returns up to limit snapshots, oldest first.
	Snapshots(ctx context.Context, limit int) ([]AuditSnapshot, error)
	// Trend returns the health score of every stored run, oldest first.
	Trend(ctx context.Context) ([]float64, error)
	Violations(ctx context.Context, runID string) ([]Violation, error)
	GateResults(ctx context.Context, runID string) ([]GateResult, error)
}

// FeedbackStore is the append-only log of feedback records plus the pattern
// confidence state adjusted by them.
type FeedbackStore interface {
	// RecordFeedback appends rec and adds the deltas to the confidence of
	// patternID in one transaction. When a record with the same dedup key
	// exists nothing is written, stored is false and the current confidence
	// is returned.
	RecordFeedback(ctx context.Context, rec FeedbackRecord, patternID string, dAlpha, dBeta float64) (stored bool, conf PatternConfidence, err error)
	Feedback(ctx context.Context) ([]FeedbackRecord, error)
	Confidence(ctx context.Context, patternID string) (PatternConfidence, error)
}

// Store is the full persistence contract.
type Store interface {
	RunWriter
	RunReader
	FeedbackStore
	Close() error
}

// MetricsRecorder observes completed operations.
type MetricsRecorder interface {
	ObserveCheck(report *CheckReport)
	ObserveFeedback(outcome FeedbackOutcome)
}

// NoMetrics discards observations.
type NoMetrics struct{}

func (NoMetrics) ObserveCheck(*CheckReport)      {}
func (NoMetrics) ObserveFeedback(FeedbackOutcome) {}
