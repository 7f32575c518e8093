// Package store implements the persistence contract on BadgerDB.
//
// Key layout:
//
//	run/<run_id>/violations           JSON []Violation
//	run/<run_id>/gates                JSON []GateResult
//	snapshot/<unix_nano>/<run_id>     JSON AuditSnapshot
//	trend/<unix_nano>/<run_id>        health score as text
//	feedback/<unix_nano>/<dedup_key>  JSON FeedbackRecord
//	confidence/<pattern_id>           JSON PatternConfidence
//
// Timestamps are zero-padded so lexicographic key order is chronological.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Initial Beta parameters for a pattern with no recorded confidence state.
const (
	PriorAlpha = 1.0
	PriorBeta  = 1.0
)

const (
	prefixRun        = "run/"
	prefixSnapshot   = "snapshot/"
	prefixTrend      = "trend/"
	prefixFeedback   = "feedback/"
	prefixConfidence = "confidence/"
)

// Config holds configuration for the store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's internal logs. Nil disables them.
	Logger *slog.Logger
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store is a BadgerDB-backed domain.Store.
type Store struct {
	db *badger.DB
	// mu serializes read-modify-write sequences: whole runs, feedback
	// dedup checks and confidence adjustments.
	mu sync.Mutex
}

var _ domain.Store = (*Store)(nil)

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open creates and opens the store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("store path is required for a persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WriteRun stores violations, gate results, the snapshot and its trend
// point in a single transaction.
func (s *Store) WriteRun(ctx context.Context, run domain.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run.RunID == "" {
		return errors.New("run id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := tsKey(run.Snapshot.Timestamp.UnixNano())
	return s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, prefixRun+run.RunID+"/violations", run.Violations); err != nil {
			return err
		}
		if err := setJSON(txn, prefixRun+run.RunID+"/gates", run.Gates); err != nil {
			return err
		}
		if err := setJSON(txn, prefixSnapshot+ts+"/"+run.RunID, run.Snapshot); err != nil {
			return err
		}
		score := strconv.FormatFloat(run.Snapshot.HealthScore, 'f', -1, 64)
		return txn.Set([]byte(prefixTrend+ts+"/"+run.RunID), []byte(score))
	})
}

// LatestSnapshot returns the snapshot with the greatest timestamp.
func (s *Store) LatestSnapshot(ctx context.Context) (*domain.AuditSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var snap *domain.AuditSnapshot
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefixSnapshot)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the first key <= seek.
		it.Seek([]byte(prefixSnapshot + "\xff"))
		if !it.Valid() {
			return nil
		}
		var out domain.AuditSnapshot
		if err := it.Item().Value(func(v []byte) error {
			return json.Unmarshal(v, &out)
		}); err != nil {
			return err
		}
		snap = &out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading latest snapshot: %w", err)
	}
	return snap, nil
}

// Snapshots returns the most recent limit snapshots, oldest first. A limit
// of zero or less returns all of them.
func (s *Store) Snapshots(ctx context.Context, limit int) ([]domain.AuditSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.AuditSnapshot
	err := s.db.View(func(txn *badger.Txn) error {
		return each(txn, prefixSnapshot, func(v []byte) error {
			var snap domain.AuditSnapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return err
			}
			out = append(out, snap)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading snapshots: %w", err)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Trend returns the stored health score series, oldest first.
func (s *Store) Trend(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []float64
	err := s.db.View(func(txn *badger.Txn) error {
		return each(txn, prefixTrend, func(v []byte) error {
			f, err := strconv.ParseFloat(string(v), 64)
			if err != nil {
				return err
			}
			out = append(out, f)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading trend: %w", err)
	}
	return out, nil
}

func (s *Store) Violations(ctx context.Context, runID string) ([]domain.Violation, error) {
	var out []domain.Violation
	if err := s.get(ctx, prefixRun+runID+"/violations", &out); err != nil {
		return nil, fmt.Errorf("reading violations for run %s: %w", runID, err)
	}
	return out, nil
}

func (s *Store) GateResults(ctx context.Context, runID string) ([]domain.GateResult, error) {
	var out []domain.GateResult
	if err := s.get(ctx, prefixRun+runID+"/gates", &out); err != nil {
		return nil, fmt.Errorf("reading gate results for run %s: %w", runID, err)
	}
	return out, nil
}

// RecordFeedback appends rec and adjusts the pattern's confidence in a
// single transaction, so a failed adjustment leaves no record behind.
func (s *Store) RecordFeedback(ctx context.Context, rec domain.FeedbackRecord, patternID string, dAlpha, dBeta float64) (bool, domain.PatternConfidence, error) {
	if err := ctx.Err(); err != nil {
		return false, domain.PatternConfidence{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := prefixFeedback + tsKey(rec.Timestamp.UnixNano()) + "/" + rec.DedupKey()
	var (
		stored bool
		c      domain.PatternConfidence
	)
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		if c, err = readConfidence(txn, patternID); err != nil {
			return err
		}
		if _, err := txn.Get([]byte(key)); err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := setJSON(txn, key, rec); err != nil {
			return err
		}
		c.Alpha += dAlpha
		c.Beta += dBeta
		if err := setJSON(txn, prefixConfidence+patternID, c); err != nil {
			return err
		}
		stored = true
		return nil
	})
	if err != nil {
		return false, domain.PatternConfidence{}, fmt.Errorf("recording feedback for %s: %w", patternID, err)
	}
	return stored, c, nil
}

// Feedback returns every record in timestamp order.
func (s *Store) Feedback(ctx context.Context) ([]domain.FeedbackRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.FeedbackRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return each(txn, prefixFeedback, func(v []byte) error {
			var rec domain.FeedbackRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading feedback: %w", err)
	}
	return out, nil
}

// Confidence returns the stored state, or the uniform prior when none exists.
func (s *Store) Confidence(ctx context.Context, patternID string) (domain.PatternConfidence, error) {
	if err := ctx.Err(); err != nil {
		return domain.PatternConfidence{}, err
	}
	var c domain.PatternConfidence
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		c, err = readConfidence(txn, patternID)
		return err
	})
	return c, err
}

func readConfidence(txn *badger.Txn, patternID string) (domain.PatternConfidence, error) {
	c := domain.PatternConfidence{PatternID: patternID, Alpha: PriorAlpha, Beta: PriorBeta}
	item, err := txn.Get([]byte(prefixConfidence + patternID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &c)
	})
	return c, err
}

// get decodes the value at key into dst. A missing key leaves dst unchanged.
func (s *Store) get(ctx context.Context, key string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, dst)
		})
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

func each(txn *badger.Txn, prefix string, fn func([]byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func tsKey(nanos int64) string {
	return fmt.Sprintf("%020d", nanos)
}
