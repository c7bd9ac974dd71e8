package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/search", "200"))
	if rr := serve(r, "GET", "/api/v1/search?q=pci&size=5"); rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/search", "200"))

	if after-before != 1 {
		t.Errorf("requests_total delta = %v, want 1", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected latency observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/api/v1/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	tests := []struct {
		method, path, status string
	}{
		{"POST", "/api/v1/auth/login", "404"},
		{"GET", "/api/v1/auth/me", "401"},
		{"GET", "/health", "503"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			serve(r, tc.method, tc.path)
			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status)); v < 1 {
				t.Errorf("requests_total{%s %s %s} = %v", tc.method, tc.path, tc.status, v)
			}
		})
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/test-connection", func(http.ResponseWriter, *http.Request) {})

	serve(r, "GET", "/api/v1/test-connection")

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/test-connection", "200")); v < 1 {
		t.Errorf("handler that writes nothing should count as 200, got %v", v)
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(http.ResponseWriter, *http.Request) {})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404"))
	serve(r, "GET", "/no/such/thing")
	serve(r, "GET", "/another/missing/path")
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404"))

	if after-before != 2 {
		t.Errorf("unmatched delta = %v, want 2", after-before)
	}
}

func TestMiddleware_SkipsScrapeEndpoint(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware("/metrics"))
	r.Handle("/metrics", promhttp.Handler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/metrics", "200"))
	serve(r, "GET", "/metrics")
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/metrics", "200"))

	if after != before {
		t.Errorf("scrape requests should not be recorded, delta = %v", after-before)
	}
}

func TestMiddleware_InFlight(t *testing.T) {
	var during float64

	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/llm/chat", func(http.ResponseWriter, *http.Request) {
		during = testutil.ToFloat64(httpInFlight)
	})

	idle := testutil.ToFloat64(httpInFlight)
	serve(r, "GET", "/api/v1/llm/chat")

	if during != idle+1 {
		t.Errorf("in-flight during request = %v, want %v", during, idle+1)
	}
	if v := testutil.ToFloat64(httpInFlight); v != idle {
		t.Errorf("in-flight after request = %v, want %v", v, idle)
	}
}

func TestMetricsHandler_ExposesRegisteredMetrics(t *testing.T) {
	RegisterBackendMetrics()
	RegisterLLMMetrics()
	BackendRequestsTotal.WithLabelValues("direct", "success").Inc()
	LLMRequestsTotal.WithLabelValues("gpt-3.5-turbo", "success").Inc()

	rr := serve(promhttp.Handler(), "GET", "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	for _, name := range []string{
		"searchgate_backend_requests_total",
		"searchgate_llm_requests_total",
		"searchgate_http_requests_in_flight",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in exposition", name)
		}
	}
}

func TestRegister_Idempotent(t *testing.T) {
	RegisterBackendMetrics()
	RegisterBackendMetrics()
	RegisterLLMMetrics()
	RegisterLLMMetrics()
}
