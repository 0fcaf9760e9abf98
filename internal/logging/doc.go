// Package logging provides the leveled logger used across the tutorial portal.
//
// Levels, from most to least verbose:
//   - DEBUG: route resolution details, analytics dispatch, player timers
//   - INFO: startup and lifecycle messages
//   - WARN: recoverable problems (missing thumbnails, dropped analytics events)
//   - ERROR: failures that degrade a response
//   - FATAL: startup failures that terminate the process
//
// The level starts from the DEBUG / LOG_LEVEL environment variables and is
// replaced by the loaded configuration through SetLevel.
package logging
