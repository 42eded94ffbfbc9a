package handler

import (
	"fmt"
	"net/http"

	"github.com/gatepost/gatepost/internal/metrics"
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

	writeMetric(w, "gatepost_requests_submitted_total %d\n", snap.RequestsSubmitted)
	writeMetric(w, "gatepost_requests_duplicate_total %d\n", snap.RequestsDuplicate)
	writeMetric(w, "gatepost_requests_reviewed_total{status=\"approved\"} %d\n", snap.RequestsApproved)
	writeMetric(w, "gatepost_requests_reviewed_total{status=\"rejected\"} %d\n", snap.RequestsRejected)

	writeMetric(w, "gatepost_signin_links_issued_total %d\n", snap.LinksIssued)
	writeMetric(w, "gatepost_signin_link_send_failures_total %d\n", snap.LinkSendFailures)
	writeMetric(w, "gatepost_signin_links_consumed_total %d\n", snap.LinksConsumed)

	writeMetric(w, "gatepost_entitlement_denials_total %d\n", snap.EntitlementDenials)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
