// Package analytics records product analytics events.
//
// Callers depend on the Tracker interface. A nil Tracker is valid and
// discards events, so request paths never need to check whether analytics
// are configured. Dispatcher delivers events to one or more Sinks on a
// background goroutine; when its queue is full, events are dropped instead
// of blocking the caller.
package analytics
