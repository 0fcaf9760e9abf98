// Package app holds the process-wide application state: the page
// configuration, published once after loading, and the resolver bound to the
// configured base path.
//
// A failed load is recorded with Fail. The configuration then stays
// unpublished, every route renders the not-found view and readiness reports
// degraded until the process restarts.
package app
