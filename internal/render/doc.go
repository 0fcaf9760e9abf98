// Package render produces the portal's HTML views.
//
// Views are built in two steps: a pure function turns a page definition and
// the request's query state into a view model, then an embedded
// html/template writes it. The same inputs always produce the same bytes, so
// repeated renders of a route are interchangeable.
//
// Pages include a small script that opens the modal player and reports
// playback events to the player API.
package render
