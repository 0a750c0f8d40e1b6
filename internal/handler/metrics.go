package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/quickai/quickai/internal/metrics"
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

	for _, t := range sortedKeys(snap.CreationsByType) {
		writeMetric(w, "quickai_creations_total{type=%q} %d\n", t, snap.CreationsByType[t])
	}
	for _, t := range sortedKeys(snap.ProviderFailuresByType) {
		writeMetric(w, "quickai_provider_failures_total{type=%q} %d\n", t, snap.ProviderFailuresByType[t])
	}

	writeMetric(w, "quickai_quota_rejected_total %d\n", snap.QuotaRejected)
	writeMetric(w, "quickai_provider_duration_seconds_count %d\n", snap.ProviderDurationCount)
	writeMetric(w, "quickai_provider_duration_seconds_sum %.6f\n", float64(snap.ProviderDurationTotalNs)/1e9)
	writeMetric(w, "quickai_publish_toggles_total %d\n", snap.PublishToggles)
	writeMetric(w, "quickai_like_toggles_total %d\n", snap.LikeToggles)
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
