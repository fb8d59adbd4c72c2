package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/perm-tracker-api/internal/models"
)

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest []string
	hit, err := svc.Get(ctx, "perm:cases:u1:abc", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "perm:cases:u1:abc", []string{"c1"}, 0))
	hit, err = svc.Get(ctx, "perm:cases:u1:abc", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"c1"}, dest)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio))

	require.NoError(t, svc.Invalidate(ctx, "perm:cases:u1:*"))
	assert.Zero(t, repo.size())
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, zap.NewNop(), false)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.Zero(t, repo.size())

	var nilSvc *CacheService
	hit, err := nilSvc.Get(ctx, "k", new(string))
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilSvc.Invalidate(ctx, "k"))
}

func TestMetricsDomainCounters(t *testing.T) {
	metrics := NewMetricsService()

	metrics.ObserveDeadline(&models.Deadline{Type: models.DeadlineRFIDue, Urgency: models.UrgencyOverdue})
	metrics.ObserveDeadline(nil)
	metrics.IncReminderEnqueued(models.DeadlinePWDExpiration)
	metrics.IncReminderEnqueued(models.DeadlinePWDExpiration)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.deadlinesResolved.WithLabelValues("rfi_due", "overdue")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.remindersEnqueued.WithLabelValues("pwd_expiration")))

	var nilMetrics *MetricsService
	assert.NotPanics(t, func() {
		nilMetrics.ObserveDeadline(&models.Deadline{})
		nilMetrics.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		nilMetrics.IncReminderEnqueued(models.DeadlineRFEDue)
	})
}

func TestCaseListKeyAndOwnerInvalidation(t *testing.T) {
	a := CaseListKey("u1", "google", "deadline", "1")
	assert.Equal(t, a, CaseListKey("u1", "google", "deadline", "1"))
	assert.NotEqual(t, a, CaseListKey("u1", "google", "deadline", "2"))
	assert.NotEqual(t, a, CaseListKey("u2", "google", "deadline", "1"))
	assert.True(t, strings.HasPrefix(a, "perm:cases:u1:"))

	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, true)
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, a, "page", 0))
	require.NoError(t, svc.Set(ctx, CaseListKey("u2", "x"), "page", 0))

	require.NoError(t, svc.InvalidateOwner(ctx, "u1"))
	assert.Equal(t, 1, repo.size())
}
