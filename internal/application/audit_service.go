package application

import (
	"context"
	"fmt"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/abdidvp/kraftgate/internal/domain/audit"
)

// DefaultAuditLimit is the number of snapshots considered by default.
const DefaultAuditLimit = 30

// AuditService reports health over the stored snapshot series.
type AuditService struct {
	configLoader domain.ConfigLoader
	runs         domain.RunReader
	ambient
}

func NewAuditService(configLoader domain.ConfigLoader, runs domain.RunReader, opts ...Option) *AuditService {
	return &AuditService{
		configLoader: configLoader,
		runs:         runs,
		ambient:      newAmbient(opts),
	}
}

// Audit returns the latest snapshot with trend, prediction, anomalies and
// the degradation alerts between the last two snapshots.
func (s *AuditService) Audit(ctx context.Context, projectPath string, limit int) (domain.AuditReport, error) {
	cfg, err := s.configLoader.Load(projectPath)
	if err != nil {
		return domain.AuditReport{}, &domain.ConfigError{Op: "config", Err: err}
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return domain.AuditReport{}, &domain.ConfigError{Op: "config", Err: err}
	}

	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	history, err := s.runs.Snapshots(ctx, limit)
	if err != nil {
		return domain.AuditReport{}, fmt.Errorf("loading snapshots: %w", err)
	}

	trend, err := s.runs.Trend(ctx)
	if err != nil {
		return domain.AuditReport{}, fmt.Errorf("loading trend: %w", err)
	}

	report := audit.Report(history, trend, audit.Thresholds{
		Warning:  cfg.Audit.WarningDrop,
		Critical: cfg.Audit.CriticalDrop,
	})
	s.logger.Debug("audit complete", "snapshots", len(history), "trend", len(trend), "direction", report.Direction)
	return report, nil
}
