package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	mcpadapter "github.com/abdidvp/kraftgate/internal/adapters/inbound/mcp"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/config"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/evidence"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/metrics"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/source"
	"github.com/abdidvp/kraftgate/internal/adapters/outbound/store"
	"github.com/abdidvp/kraftgate/internal/application"
)

// services holds everything a command needs for one project. Close
// releases the store.
type services struct {
	check    *application.CheckService
	feedback *application.FeedbackService
	audit    *application.AuditService
	metrics  *metrics.Recorder
	store    *store.Store
}

// openServices wires the adapters for projectPath:
// config -> store -> metrics -> services.
func openServices(projectPath string, logger *slog.Logger) (*services, error) {
	// 1. Config decides where the store lives.
	loader := config.New()
	cfg, err := loader.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// 2. Store, relative to the project unless absolute.
	dbPath := cfg.Store.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(projectPath, dbPath)
	}
	st, err := store.Open(store.Config{Path: dbPath, SyncWrites: true, Logger: logger})
	if err != nil {
		return nil, err
	}

	// 3. Services share one store and one recorder.
	rec := metrics.New()
	opts := []application.Option{
		application.WithLogger(logger),
		application.WithMetrics(rec),
	}
	return &services{
		check:    application.NewCheckService(loader, evidence.New(), source.New(), gitinfo.New(), st, opts...),
		feedback: application.NewFeedbackService(loader, st, opts...),
		audit:    application.NewAuditService(loader, st, opts...),
		metrics:  rec,
		store:    st,
	}, nil
}

func (s *services) mcp() mcpadapter.Services {
	return mcpadapter.Services{Check: s.check, Feedback: s.feedback, Audit: s.audit}
}

func (s *services) Close() error {
	return s.store.Close()
}

// projectArg returns the optional [path] argument as an absolute path.
func projectArg(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}
