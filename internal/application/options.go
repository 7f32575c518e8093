package application

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// Option configures the ambient dependencies shared by all services.
type Option func(*ambient)

type ambient struct {
	logger  *slog.Logger
	metrics domain.MetricsRecorder
	now     func() time.Time
	newID   func() string
}

func newAmbient(opts []Option) ambient {
	a := ambient{
		logger:  slog.New(slog.DiscardHandler),
		metrics: domain.NoMetrics{},
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func WithLogger(l *slog.Logger) Option {
	return func(a *ambient) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithMetrics(m domain.MetricsRecorder) Option {
	return func(a *ambient) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithClock overrides the current time for run timestamps, ramp ages and
// feedback windows.
func WithClock(now func() time.Time) Option {
	return func(a *ambient) { a.now = now }
}

// WithIDs overrides run and violation id generation.
func WithIDs(newID func() string) Option {
	return func(a *ambient) { a.newID = newID }
}
