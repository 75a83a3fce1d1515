package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	reg := NewRegistry("consulting-service")
	r := mux.NewRouter()
	r.Use(reg.Middleware())
	r.HandleFunc("/api/v1/consultants/{consultantId}/availability", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", reg.Handler())

	for _, id := range []string{"c-1", "c-2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/consultants/"+id+"/availability", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	got := testutil.ToFloat64(reg.requests.WithLabelValues("/api/v1/consultants/{consultantId}/availability", http.MethodGet, "200"))
	assert.Equal(t, 2.0, got)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}
