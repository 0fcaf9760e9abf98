// Package params interprets the query parameters the portal understands and
// builds navigation URLs that carry them along.
//
// Recognized parameters: hide, show, version, qr, timeout, theme, debug,
// route and source. Everything else is preserved untouched when links are
// built.
package params
