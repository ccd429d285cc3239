// internal/status/handler.go
package status

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthBody struct {
	Status string `json:"status"`
	Snapshot
}

// Handler serves the current snapshot as JSON.
// Error and Stale answer 503 so probes can act on them.
func Handler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s := src.Snapshot(time.Now())

		code := http.StatusOK
		if s.Health == HealthError || s.Health == HealthStale {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(healthBody{Status: HealthName(s.Health), Snapshot: s})
	})
}
