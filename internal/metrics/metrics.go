package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutorial_portal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutorial_portal_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Routing and rendering metrics
var (
	RouteResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_route_resolutions_total",
			Help: "Total number of resolved request paths by result kind",
		},
		[]string{"kind"}, // "page", "proxyRedirect", "notFound"
	)

	MediaRedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_media_redirects_total",
			Help: "Total number of media proxy redirects by matched pattern",
		},
		[]string{"pattern"},
	)

	PageRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_page_renders_total",
			Help: "Total number of rendered pages by view",
		},
		[]string{"view"}, // "selector", "deployment", "not_found"
	)

	PageRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutorial_portal_page_render_duration_seconds",
			Help:    "Page template render duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"view"},
	)

	VideosHiddenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorial_portal_videos_hidden_total",
			Help: "Total number of videos removed by tag and version filters",
		},
	)
)

// Page configuration metrics
var (
	PagesConfigured = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutorial_portal_pages_configured",
			Help: "Number of routes in the loaded page configuration",
		},
	)

	PagesConfigLoadTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutorial_portal_pages_config_load_timestamp",
			Help: "Unix timestamp of the page configuration load",
		},
	)

	PagesConfigLoadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorial_portal_pages_config_load_errors_total",
			Help: "Total number of failed page configuration loads",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutorial_portal_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutorial_portal_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tutorial_portal_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Analytics metrics
var (
	AnalyticsEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_analytics_events_total",
			Help: "Total number of analytics events dispatched by name",
		},
		[]string{"event"},
	)

	AnalyticsEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorial_portal_analytics_events_dropped_total",
			Help: "Total number of analytics events dropped because the queue was full",
		},
	)

	AnalyticsSinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_analytics_sink_errors_total",
			Help: "Total number of analytics sink failures",
		},
		[]string{"sink"},
	)

	AnalyticsEventsStored = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tutorial_portal_analytics_events_stored",
			Help: "Number of analytics events held in the event store by name",
		},
		[]string{"event"},
	)
)

// Player metrics
var (
	PlayerSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutorial_portal_player_sessions_active",
			Help: "Number of live player sessions",
		},
	)

	PlayerSessionsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorial_portal_player_sessions_rejected_total",
			Help: "Player sessions refused because the registry was full",
		},
	)

	PlayerOpensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_player_opens_total",
			Help: "Total number of media opens by content kind",
		},
		[]string{"kind"}, // "video", "gif"
	)

	PlayerClosesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_player_closes_total",
			Help: "Total number of player closes by reason",
		},
		[]string{"reason"}, // "user", "inactivity", "expired"
	)

	PlayerWatchSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tutorial_portal_player_watch_seconds",
			Help:    "Watch time of incomplete playbacks in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tutorial_portal_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorial_portal_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorial_portal_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)
)

// Filesystem metrics
var (
	FilesystemRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorial_portal_filesystem_retries_total",
			Help: "Stale file handle retries by operation, area and outcome",
		},
		[]string{"op", "area", "outcome"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tutorial_portal_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
