package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshotAggregates(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/enquiries", 200, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/enquiries", 200, 40*time.Millisecond)
	m.ObserveBackendCall(http.MethodGet, "/enquiries", 200, 10*time.Millisecond)
	m.ObserveBackendCall(http.MethodGet, "/followups", 0, 10*time.Millisecond)
	m.ObserveBackendCall(http.MethodGet, "/fees", 404, 10*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.IncReceiptsIssued()
	m.ObserveDigestDelivery(false)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 30, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(3), snap.BackendCalls)
	assert.Equal(t, uint64(1), snap.BackendFailures)
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snap.ReceiptsIssued)
}

func TestMetricsHandlerExposesSeries(t *testing.T) {
	m := NewMetricsService()
	m.ObserveBackendCall(http.MethodPost, "/followups", 201, time.Millisecond)
	m.ObserveDigestDelivery(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `backend_call_duration_seconds_count{method="POST",route="/followups",status="201"} 1`)
	assert.Contains(t, body, `overdue_digest_messages_total{result="sent"} 1`)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, m.Snapshot().RequestsTotal)
}
