package runtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestReadyzReportsFailingDependency(t *testing.T) {
	r := mux.NewRouter()
	RegisterProbes(r,
		ReadyCheck{Name: "db", Check: func(context.Context) error { return nil }},
		ReadyCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial refused") }},
		ReadyCheck{Name: "kafka"},
	)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dial refused") || strings.Contains(rec.Body.String(), "kafka") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHealthzAlwaysOK(t *testing.T) {
	r := mux.NewRouter()
	RegisterProbes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
