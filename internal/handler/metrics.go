package handler

import (
	"fmt"
	"net/http"

	"github.com/avatarly/avatarly/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "avatarly_registrations_total %d\n", snap.Registered)
	writeMetric(w, "avatarly_registration_conflicts_total %d\n", snap.RegistrationConflicts)
	writeMetric(w, "avatarly_avatars_stored_total %d\n", snap.AvatarsStored)

	writeMetric(w, "avatarly_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "avatarly_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "avatarly_logins_total{status=\"error\"} %d\n", snap.LoginErrors)

	writeMetric(w, "avatarly_password_hash_duration_seconds_count %d\n", snap.PasswordHashCount)
	writeMetric(w, "avatarly_password_hash_duration_seconds_sum %.6f\n", float64(snap.PasswordHashDurationTotal)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
