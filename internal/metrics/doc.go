// Package metrics provides Prometheus instrumentation for the tutorial portal.
//
// All metrics are prefixed with "tutorial_portal_" and registered through
// promauto on package initialization.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// ## Routing and Rendering
//   - RouteResolutionsTotal: resolved paths by result kind
//   - MediaRedirectsTotal: media proxy redirects by matched pattern
//   - PageRendersTotal, PageRenderDuration: rendered views
//   - VideosHiddenTotal: videos removed by query filters
//
// ## Page Configuration
//   - PagesConfigured, PagesConfigLoadTimestamp, PagesConfigLoadErrors
//
// ## Database
//   - DBQueryTotal, DBQueryDuration, DBConnectionsOpen, DBSizeBytes
//
// ## Analytics
//   - AnalyticsEventsTotal: dispatched events by name
//   - AnalyticsEventsDropped: events lost to a full queue
//   - AnalyticsSinkErrors: sink failures by sink
//   - AnalyticsEventsStored: events held in SQLite, refreshed by the Collector
//
// ## Player
//   - PlayerSessionsActive, PlayerSessionsRejected, PlayerOpensTotal,
//     PlayerClosesTotal, PlayerWatchSeconds
//
// ## Thumbnails
//   - ThumbnailGenerationsTotal, ThumbnailGenerationDuration,
//     ThumbnailCacheHits, ThumbnailCacheMisses
//
// ## Filesystem
//   - FilesystemRetries: stale file handle retries by op, area and outcome
//
// # Collector
//
// The Collector polls a StatsProvider on an interval and publishes gauges
// that are cheaper to compute periodically than per request.
//
// # Usage
//
//	metrics.InitializeMetrics()
//	collector := metrics.NewCollector(provider, time.Minute)
//	collector.Start()
//	defer collector.Stop()
package metrics
