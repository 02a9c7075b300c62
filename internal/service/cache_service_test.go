package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-core/internal/models"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("connection refused")
}

func TestCacheServiceDisabled(t *testing.T) {
	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())

	svc := NewCacheService(newMemoryCacheRepo(), nil, 0, nil, false)
	assert.False(t, svc.Enabled())
	svc.Set(context.Background(), "k", 1)
	var dest int
	assert.False(t, svc.Get(context.Background(), "k", &dest))
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCacheRepo(), metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest []string
	assert.False(t, svc.Get(ctx, "schedule:classroom:A", &dest))
	svc.Set(ctx, "schedule:classroom:A", []string{"x"})
	assert.True(t, svc.Get(ctx, "schedule:classroom:A", &dest))
	assert.Equal(t, []string{"x"}, dest)

	svc.Invalidate(ctx, scheduleCachePattern)
	assert.False(t, svc.Get(ctx, "schedule:classroom:A", &dest))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestCacheServiceSwallowsBackendErrors(t *testing.T) {
	svc := NewCacheService(failingCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest int
	assert.False(t, svc.Get(ctx, "k", &dest))
	svc.Set(ctx, "k", 1)
	svc.Invalidate(ctx, "k*")
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/health", http.StatusOK, 5*time.Millisecond)
	metrics.ObserveDBQuery("schedule.create", time.Millisecond)
	metrics.RecordScheduleWrite("update", models.OutcomeConflict)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `schedule_writes_total{operation="update",outcome="conflict"} 1`))
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "db_query_duration_seconds")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordScheduleWrite("add", models.OutcomeSuccess)
	metrics.RecordGrade("4.0")
	assert.Nil(t, metrics.Registry())

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
