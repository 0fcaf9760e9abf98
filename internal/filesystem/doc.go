// Package filesystem wraps os.Stat and os.Open with a retry loop for stale
// NFS file handles (ESTALE). The static asset directory is often a network
// mount that is re-synced underneath the server; a file replaced mid-request
// briefly reports ESTALE and succeeds on the next attempt.
//
// Only ESTALE is retried, with exponential backoff capped at MaxBackoff.
// Every retry outcome is counted in tutorial_portal_filesystem_retries_total.
package filesystem
