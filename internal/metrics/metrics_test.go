package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"GeneratorRunsTotal", GeneratorRunsTotal},
		{"GeneratorDuration", GeneratorDuration},
		{"GeneratorEntries", GeneratorEntries},
		{"GeneratorUnprobed", GeneratorUnprobed},
		{"CatalogLoadsTotal", CatalogLoadsTotal},
		{"NavigationsTotal", NavigationsTotal},
		{"PopularityEventsTotal", PopularityEventsTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/series/{series}/wallpapers", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/series/{series}/wallpapers", "418")
	before := testutil.ToFloat64(counter)

	for _, s := range []string{"desktop", "mobile"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/series/"+s+"/wallpapers", nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("counter delta = %v, want 2", got)
	}
	if v := testutil.ToFloat64(HTTPRequestsInFlight); v != 0 {
		t.Errorf("in-flight gauge = %v after requests finished", v)
	}
}

func TestMiddlewareSkipsMetricsEndpoint(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/metrics", func(http.ResponseWriter, *http.Request) {})

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/metrics", "200")
	before := testutil.ToFloat64(counter)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if testutil.ToFloat64(counter) != before {
		t.Error("/metrics should not be recorded")
	}
}
