package cache

import (
	"context"
	"testing"
	"time"

	"fallvision-alarm/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestCache(t *testing.T) (*StatusCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewStatusCache(client, "fallvision:patient:", ":status", 30*time.Second, zap.NewNop())
	return c, mr
}

func sampleResult() *models.MonitoringResult {
	return &models.MonitoringResult{
		Report: models.LimbReport{AlertCount: 1, CriticalCount: 1},
		BrainSync: models.BrainSyncResult{
			Value:  0.72,
			Status: models.BrainSyncWarning,
		},
		Risk: models.RiskScore{
			TotalRisk: 55,
			Level:     models.RiskHigh,
		},
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestStatusCache_RoundTrip(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetLatest(ctx, "patient-1", sampleResult()))
	assert.True(t, mr.Exists("fallvision:patient:patient-1:status"))

	got, err := c.GetLatest(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Report.AlertCount)
	assert.Equal(t, models.BrainSyncWarning, got.BrainSync.Status)
	assert.Equal(t, 55.0, got.Risk.TotalRisk)
	assert.Equal(t, models.RiskHigh, got.Risk.Level)
}

func TestStatusCache_MissReturnsErrNoStatus(t *testing.T) {
	c, _ := setupTestCache(t)

	_, err := c.GetLatest(context.Background(), "patient-unknown")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoStatus)
}

func TestStatusCache_EntryExpires(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetLatest(ctx, "patient-1", sampleResult()))

	mr.FastForward(31 * time.Second)

	_, err := c.GetLatest(ctx, "patient-1")
	assert.ErrorIs(t, err, ErrNoStatus)
}

func TestStatusCache_OverwritesPreviousStatus(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetLatest(ctx, "patient-1", sampleResult()))

	updated := sampleResult()
	updated.Risk.TotalRisk = 10
	updated.Risk.Level = models.RiskLow
	require.NoError(t, c.SetLatest(ctx, "patient-1", updated))

	got, err := c.GetLatest(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Risk.TotalRisk)
	assert.Equal(t, models.RiskLow, got.Risk.Level)
}
