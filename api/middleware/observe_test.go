package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/metrics"
)

func TestMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := chi.NewRouter()
	r.Use(Metrics(metrics.NewHTTPMetrics(reg)))
	r.Get("/api/products/{productID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/p-42", nil))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "route" && label.GetValue() == "/api/products/{productID}" {
					found = true
				}
				if label.GetValue() == "/api/products/p-42" {
					t.Fatalf("raw path used as label")
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected route pattern label")
	}
}

func TestRecovererAndLoggingReportPanics(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	handler := RequestID(logg)(Logging(logg)(Recoverer(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-Request-Id", "req-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") != "req-1" {
		t.Fatalf("request id not echoed")
	}
	out := buf.String()
	for _, want := range []string{"request.panic", "request.complete", `"request_id":"req-1"`, `"status":500`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in logs: %s", want, out)
		}
	}
}

func TestRequestIDReplacesUnprintableIDs(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	for _, incoming := range []string{"", "has space", strings.Repeat("a", 129), "tab\tid"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", incoming)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		if seen == incoming || seen == "" {
			t.Fatalf("expected a minted id for %q, got %q", incoming, seen)
		}
		if resp.Header().Get("X-Request-Id") != seen {
			t.Fatalf("response id %q does not match context id %q", resp.Header().Get("X-Request-Id"), seen)
		}
	}
}

func TestRecovererLetsAbortThrough(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
