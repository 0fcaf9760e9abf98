// Package handlers provides the HTTP handlers of the tutorial portal.
//
// It includes handlers for:
//   - Page rendering, media proxy redirects and static files
//   - The modal player session API
//   - Resized thumbnails
//   - Stored analytics event summaries
//   - Health checks, version and metrics
package handlers
