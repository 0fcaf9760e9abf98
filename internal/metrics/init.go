package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, kind := range []string{"page", "proxyRedirect", "notFound"} {
		RouteResolutionsTotal.WithLabelValues(kind)
	}

	for _, pattern := range []string{"legacy", "hierarchical", "typed", "simplified"} {
		MediaRedirectsTotal.WithLabelValues(pattern)
	}

	for _, view := range []string{"selector", "deployment", "not_found"} {
		PageRendersTotal.WithLabelValues(view)
		PageRenderDuration.WithLabelValues(view)
	}

	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	for _, op := range []string{"initialize_schema", "insert_event", "event_counts",
		"recent_events", "prune_events", "get_metadata", "set_metadata"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, sink := range []string{"database", "log"} {
		AnalyticsSinkErrors.WithLabelValues(sink)
	}

	for _, kind := range []string{"video", "gif"} {
		PlayerOpensTotal.WithLabelValues(kind)
	}
	for _, reason := range []string{"user", "inactivity", "expired", "replaced"} {
		PlayerClosesTotal.WithLabelValues(reason)
	}

	for _, status := range []string{"success", "error", "error_not_found", "error_decode"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}
}
