// Package database provides SQLite storage for the tutorial portal.
//
// It holds:
//   - Analytics events (name, flat string properties, timestamp)
//   - Key/value metadata such as the page configuration source and load time
//
// The database uses WAL mode so the analytics writer does not block the
// readers serving event summaries.
package database
