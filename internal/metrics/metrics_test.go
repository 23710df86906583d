package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordChange(t *testing.T) {
	before := testutil.ToFloat64(recordChanges.WithLabelValues("expense", "created"))
	RecordChange("expense", "created")
	assert.Equal(t, before+1, testutil.ToFloat64(recordChanges.WithLabelValues("expense", "created")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveRequest(http.MethodGet, "GET /api/expenses", 200, 5*time.Millisecond)
	NotifyFailed()
	RateLimited()
	SuspiciousRequest()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "productivity_http_request_duration_seconds")
	assert.Contains(t, body, "productivity_records_notify_failures_total")
	assert.Contains(t, body, "productivity_http_rate_limited_total")
	assert.Contains(t, body, "productivity_http_suspicious_requests_total")
}
