package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tutorial-portal/internal/database"
	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/metrics"
)

// SessionProp is the property that carries a player session id. The
// database sink stores it in its own column.
const SessionProp = "session_id"

// EventStore is the subset of the database used by DatabaseSink.
type EventStore interface {
	InsertEvent(ctx context.Context, e database.Event) error
}

// DatabaseSink stores events in SQLite.
type DatabaseSink struct {
	store EventStore
}

// NewDatabaseSink returns a sink writing to store.
func NewDatabaseSink(store EventStore) *DatabaseSink {
	return &DatabaseSink{store: store}
}

// Name implements Sink.
func (s *DatabaseSink) Name() string { return "database" }

// Write implements Sink.
func (s *DatabaseSink) Write(ctx context.Context, e Event) error {
	props := cloneProps(e.Props)
	session := props[SessionProp]
	delete(props, SessionProp)

	if err := s.store.InsertEvent(ctx, database.Event{
		Name:      e.Name,
		Props:     props,
		SessionID: session,
		CreatedAt: e.At,
	}); err != nil {
		return err
	}
	return nil
}

// LogSink writes events to the debug log.
type LogSink struct{}

// Name implements Sink.
func (LogSink) Name() string { return "log" }

// Write implements Sink.
func (LogSink) Write(_ context.Context, e Event) error {
	if !logging.IsDebugEnabled() {
		return nil
	}
	pairs := make([]string, 0, len(e.Props))
	for k, v := range e.Props {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	logging.Debug("analytics event %s %s", e.Name, strings.Join(pairs, " "))
	return nil
}

// MetricsSink exports player events as Prometheus observations.
type MetricsSink struct{}

// Name implements Sink.
func (MetricsSink) Name() string { return "metrics" }

// Write implements Sink.
func (MetricsSink) Write(_ context.Context, e Event) error {
	switch e.Name {
	case EventVideoPlay:
		kind := e.Props["kind"]
		if kind == "" {
			kind = "video"
		}
		metrics.PlayerOpensTotal.WithLabelValues(kind).Inc()
	case EventVideoWatchTime:
		secs, err := strconv.ParseFloat(e.Props["seconds"], 64)
		if err != nil {
			return fmt.Errorf("watch time %q: %w", e.Props["seconds"], err)
		}
		metrics.PlayerWatchSeconds.Observe(secs)
	}
	return nil
}
