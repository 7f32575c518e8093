package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/kraftgate/internal/application"
	"github.com/abdidvp/kraftgate/internal/domain"
)

func TestAuditService_Empty(t *testing.T) {
	f := newFixture(t, passingEvidence())
	svc := application.NewAuditService(staticConfig{cfg: f.cfg}, f.store)

	report, err := svc.Audit(context.Background(), f.dir, 0)
	require.NoError(t, err)
	assert.Nil(t, report.Latest)
	assert.Equal(t, domain.TrendStable, report.Direction)
	assert.Nil(t, report.Prediction)
}

func TestAuditService_AfterRuns(t *testing.T) {
	f := newFixture(t, passingEvidence())
	ctx := context.Background()

	var last *domain.CheckReport
	for i := 0; i < 6; i++ {
		f.clock.set(t0.Add(time.Duration(i) * time.Hour))
		r, err := f.check().Check(ctx, f.dir, application.CheckOptions{})
		require.NoError(t, err)
		last = r
	}

	svc := application.NewAuditService(staticConfig{cfg: f.cfg}, f.store)
	report, err := svc.Audit(ctx, f.dir, 0)
	require.NoError(t, err)
	require.NotNil(t, report.Latest)
	assert.Equal(t, last.RunID, report.Latest.RunID)
	assert.Len(t, report.History, 6)
	assert.Equal(t, domain.TrendStable, report.Direction)
	require.NotNil(t, report.Prediction)
	assert.Empty(t, report.Alerts)

	limited, err := svc.Audit(ctx, f.dir, 2)
	require.NoError(t, err)
	assert.Len(t, limited.History, 2)
	// Prediction still covers every stored run.
	assert.NotNil(t, limited.Prediction)
}
