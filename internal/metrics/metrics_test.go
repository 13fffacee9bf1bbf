package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRating(t *testing.T) {
	before := testutil.ToFloat64(ratingsSubmitted.WithLabelValues("created"))
	RecordRating(true)
	RecordRating(false)

	assert.Equal(t, before+1, testutil.ToFloat64(ratingsSubmitted.WithLabelValues("created")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(ratingsSubmitted.WithLabelValues("updated")), 1.0)
}

func TestHandlerExposesRequestMetrics(t *testing.T) {
	ObserveRequest("get", "/api/stores/:id", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `store_ratings_http_requests_total{method="GET",route="/api/stores/:id",status="200"}`)
}
