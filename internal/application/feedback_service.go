package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/abdidvp/kraftgate/internal/domain/feedback"
)

// FeedbackService records developer actions on violations and reports the
// resulting confidence and detector health.
type FeedbackService struct {
	configLoader domain.ConfigLoader
	store        domain.FeedbackStore
	ambient

	// mu makes append, replay and confidence adjustment one step.
	mu sync.Mutex
}

func NewFeedbackService(configLoader domain.ConfigLoader, store domain.FeedbackStore, opts ...Option) *FeedbackService {
	return &FeedbackService{
		configLoader: configLoader,
		store:        store,
		ambient:      newAmbient(opts),
	}
}

// Record stores rec and applies it. A zero timestamp is set to now. A
// repeated submission is not an error: the outcome reports Duplicate and
// nothing changes.
func (s *FeedbackService) Record(ctx context.Context, projectPath string, rec domain.FeedbackRecord) (domain.FeedbackOutcome, error) {
	// 1. Load config
	cfg, err := s.config(projectPath)
	if err != nil {
		return domain.FeedbackOutcome{}, err
	}

	// 2. Validate record
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	if err := rec.Validate(); err != nil {
		return domain.FeedbackOutcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 3. Rebuild tracker state from the log
	tracker, err := s.tracker(ctx, cfg)
	if err != nil {
		return domain.FeedbackOutcome{}, err
	}

	// 4. Append and adjust confidence atomically
	patternID := confidenceKey(rec)
	dAlpha, dBeta := feedback.ConfidenceDelta(rec)
	stored, conf, err := s.store.RecordFeedback(ctx, rec, patternID, dAlpha, dBeta)
	if err != nil {
		return domain.FeedbackOutcome{}, fmt.Errorf("recording feedback: %w", err)
	}

	// 5. Apply to counters
	upd := feedback.Update{Duplicate: true}
	if stored {
		upd = tracker.Record(rec)
	}

	detector := rec.DetectorID
	if detector == "" {
		detector = rec.PatternID
	}
	out := domain.FeedbackOutcome{
		Record:         rec,
		Duplicate:      upd.Duplicate,
		Alpha:          conf.Alpha,
		Beta:           conf.Beta,
		Confidence:     conf.Value(),
		FalsePositive:  tracker.PatternFalsePositiveRate(patternID),
		Alert:          upd.Alert,
		Disabled:       tracker.IsDetectorDisabled(detector),
		AbusiveAuthors: tracker.AbusiveAuthors(),
	}
	if m, ok := tracker.Detector(detector); ok {
		out.Meaningful = m.Meaningful
	}

	if upd.NewlyDisabled {
		s.logger.Warn("detector disabled by sustained false positives", "detector", detector)
	}
	if len(upd.AbusiveAuthors) > 0 {
		s.logger.Warn("unusual dismissal volume", "authors", upd.AbusiveAuthors)
	}
	s.metrics.ObserveFeedback(out)
	return out, nil
}

// Detectors returns the current metrics of every detector with feedback.
func (s *FeedbackService) Detectors(ctx context.Context, projectPath string) ([]feedback.Metrics, error) {
	cfg, err := s.config(projectPath)
	if err != nil {
		return nil, err
	}
	tracker, err := s.tracker(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return tracker.Detectors(), nil
}

func (s *FeedbackService) config(projectPath string) (domain.ProjectConfig, error) {
	cfg, err := s.configLoader.Load(projectPath)
	if err != nil {
		return cfg, &domain.ConfigError{Op: "config", Err: err}
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, &domain.ConfigError{Op: "config", Err: err}
	}
	return cfg, nil
}

func (s *FeedbackService) tracker(ctx context.Context, cfg domain.ProjectConfig) (*feedback.Tracker, error) {
	records, err := s.store.Feedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading feedback: %w", err)
	}
	return feedback.Replay(feedback.ConfigFrom(cfg.Feedback), records,
		feedback.WithClock(s.now), feedback.WithLogger(s.logger)), nil
}

func confidenceKey(rec domain.FeedbackRecord) string {
	if rec.PatternID != "" {
		return rec.PatternID
	}
	return rec.DetectorID
}
