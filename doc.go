// Command tutorial-portal serves device tutorial pages and drives the kiosk
// video player used on meeting room devices.
//
// # Commands
//
//	tutorial-portal [serve] [--config portal.yaml]
//	tutorial-portal validate [pages-source]
//	tutorial-portal version
//
// serve is the default. validate loads a page configuration from a file or
// URL and prints lint findings, exiting non-zero on errors.
//
// # Startup Sequence
//
//  1. Configuration: defaults, optional YAML file, PORTAL_* environment
//  2. Directory setup: database directory required, cache directory optional
//  3. Database: SQLite event store in WAL mode
//  4. Analytics dispatcher with database, metrics and log sinks
//  5. Page configuration: loaded once; a failure keeps the server up and
//     renders not-found everywhere
//  6. Thumbnail warm-up, player session sweeper, event pruning and the
//     metrics collector in the background
//  7. HTTP server plus a separate metrics server, which also carries the
//     stored-events API
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM the HTTP servers stop accepting requests, background
// loops are cancelled, queued analytics events are flushed and the database
// is closed.
package main
