// Package middleware provides HTTP middleware for the portal server.
//
// It includes:
//   - Access logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by mux route template
//   - gzip compression of text responses
package middleware
