package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/md-rashed-zaman/consultdesk/libs/httpx"
)

// Register mounts the consulting API under /api/v1. A known path requested
// with the wrong method answers 405 on every router level.
func Register(r *mux.Router, bookings *BookingHandler, analytics *AnalyticsHandler) {
	api := r.PathPrefix("/api/v1").Subrouter()
	r.MethodNotAllowedHandler = methodNotAllowed()
	api.MethodNotAllowedHandler = methodNotAllowed()

	api.HandleFunc("/consultants/{consultantId}/availability", bookings.Availability).Methods(http.MethodGet)
	api.HandleFunc("/consultants/{consultantId}/conflicts", bookings.Conflicts).Methods(http.MethodGet)
	api.HandleFunc("/consultants/{consultantId}/slots", bookings.Slots).Methods(http.MethodGet)
	api.HandleFunc("/bookings", bookings.Create).Methods(http.MethodPost)
	api.HandleFunc("/bookings/resolve", bookings.Resolve).Methods(http.MethodPost)
	api.HandleFunc("/analytics/executive", analytics.Executive).Methods(http.MethodGet)
}

func methodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}
