// Package startup handles configuration loading, directory setup and
// startup/shutdown logging.
//
// # Configuration
//
// [Load] layers three sources with koanf: the built-in defaults from
// [DefaultConfig], an optional YAML file, and environment variables with the
// PORTAL_ prefix. Environment keys are lowercased after the prefix is
// removed, so PORTAL_METRICS_PORT sets metrics_port. Durations accept Go
// duration strings ("5s", "30m").
//
//	port: "8080"
//	base_path: /tutorials
//	pages_source: https://example.com/pages.json
//	player_idle_timeout: 90s
//
// # Directory Setup
//
// [Prepare] prints the banner and the resolved configuration, then checks
// directories:
//   - Database directory: required, created if missing, must be writable
//   - Cache directory: optional, enables thumbnails if writable
//   - Static directory: checked but not created
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogDatabaseInit]: database initialization timing
//   - [LogPagesLoaded]: page configuration source and outcome
//   - [LogThumbnailInit]: thumbnail warm-up
//   - [LogHTTPRoutes]: registered HTTP routes (debug level)
//   - [LogServerStarted]: endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownComplete]: graceful shutdown
package startup
