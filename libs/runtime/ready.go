package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// ReadyCheck is a named dependency check for /readyz.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

type probeReport struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures,omitempty"`
}

// RegisterProbes mounts /healthz and /readyz on r. Nil checks are skipped so
// optional dependencies can be listed unconditionally.
func RegisterProbes(r *mux.Router, checks ...ReadyCheck) {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeProbe(w, http.StatusOK, probeReport{Status: "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		failures := map[string]string{}
		for _, check := range checks {
			if check.Check == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			err := check.Check(ctx)
			cancel()
			if err != nil {
				name := check.Name
				if name == "" {
					name = "dependency"
				}
				failures[name] = err.Error()
			}
		}
		if len(failures) > 0 {
			writeProbe(w, http.StatusServiceUnavailable, probeReport{Status: "unavailable", Failures: failures})
			return
		}
		writeProbe(w, http.StatusOK, probeReport{Status: "ok"})
	}).Methods(http.MethodGet)
}

func writeProbe(w http.ResponseWriter, status int, body probeReport) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
