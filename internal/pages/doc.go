// Package pages holds the page configuration model of the tutorial portal and
// loads it from a JSON or YAML resource.
//
// A configuration maps route names to pages. Selector pages list deployments,
// deployment pages list sections of videos. The configuration is read once at
// startup and treated as read-only afterwards.
package pages
