package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/consultdesk/libs/httpx"
)

type AnalyticsHandler struct {
	svc SnapshotService
}

func NewAnalyticsHandler(svc SnapshotService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Executive always answers 200; a degraded snapshot carries degraded=true.
func (h *AnalyticsHandler) Executive(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.svc.ComputeExecutiveSnapshot(r.Context()))
}
