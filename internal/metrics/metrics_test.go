package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUpstream(t *testing.T) {
	m := New()

	m.ObserveUpstream("movie", "ok", 10*time.Millisecond)
	m.ObserveUpstream("movie", "ok", 20*time.Millisecond)
	m.ObserveUpstream("movie", "http_error", 5*time.Millisecond)

	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("movie", "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("movie", "http_error")); got != 1 {
		t.Errorf("http_error count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.UpstreamDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	m := New()

	m.RecordHTTPRequest(http.MethodGet, "/movie/{id}", http.StatusOK, time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "/movie/{id}", http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/movie/{id}", "200")); got != 1 {
		t.Errorf("200 count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/movie/{id}", "404")); got != 1 {
		t.Errorf("404 count = %v, want 1", got)
	}
}

func TestTrackInFlight(t *testing.T) {
	m := New()
	m.TrackInFlight(true)
	m.TrackInFlight(true)
	m.TrackInFlight(false)

	if got := testutil.ToFloat64(m.HTTPInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveUpstream("popular", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `marquee_tmdb_requests_total{endpoint="popular",outcome="ok"} 1`) {
		t.Errorf("exposition missing upstream counter:\n%s", body)
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := New(), New()
	a.ObserveUpstream("movie", "ok", 0)
	if got := testutil.ToFloat64(b.UpstreamRequests.WithLabelValues("movie", "ok")); got != 0 {
		t.Errorf("registries leak between instances: %v", got)
	}
}
