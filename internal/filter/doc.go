// Package filter decides which catalog videos are visible for the tag and
// version parameters of a request.
//
// Visibility is a pure function of a video and a State. The version gate
// runs first:
//
//   - version=all shows every video
//   - a set version shows only videos with that exact version
//   - no version shows only videos marked default
//
// Videos that pass go through the tag gate. A video without a tags field
// always passes. Otherwise a non-empty show list keeps videos sharing at
// least one tag with it, and only when show is empty does a non-empty hide
// list drop videos sharing a tag.
package filter
