package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// InsertEvent stores one analytics event.
func (d *Database) InsertEvent(ctx context.Context, e Event) (err error) {
	start := time.Now()
	defer func() { recordQuery("insert_event", start, err) }()

	props := e.Props
	if props == nil {
		props = map[string]string{}
	}
	encoded, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encoding event properties: %w", err)
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		"INSERT INTO events (name, props, session_id, created_at) VALUES (?, ?, ?, ?)",
		e.Name, string(encoded), e.SessionID, createdAt.Unix(),
	)
	return err
}

// EventCounts returns the number of stored events per name.
func (d *Database) EventCounts(ctx context.Context) (counts map[string]int64, err error) {
	start := time.Now()
	defer func() { recordQuery("event_counts", start, err) }()

	summaries, err := d.summaries(ctx)
	if err != nil {
		return nil, err
	}
	counts = make(map[string]int64, len(summaries))
	for _, s := range summaries {
		counts[s.Name] = s.Count
	}
	return counts, nil
}

// EventSummaries returns per-name aggregates ordered by name.
func (d *Database) EventSummaries(ctx context.Context) ([]EventSummary, error) {
	return d.summaries(ctx)
}

func (d *Database) summaries(ctx context.Context) ([]EventSummary, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT name, COUNT(*), MIN(created_at), MAX(created_at)
		FROM events
		GROUP BY name
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize events: %w", err)
	}
	defer rows.Close()

	var out []EventSummary
	for rows.Next() {
		var s EventSummary
		var first, last int64
		if err := rows.Scan(&s.Name, &s.Count, &first, &last); err != nil {
			return nil, err
		}
		s.FirstSeen = time.Unix(first, 0)
		s.LastSeen = time.Unix(last, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecentEvents returns up to limit events, newest first. An empty name
// returns events of every name.
func (d *Database) RecentEvents(ctx context.Context, name string, limit int) (events []Event, err error) {
	start := time.Now()
	defer func() { recordQuery("recent_events", start, err) }()

	if limit <= 0 {
		limit = 50
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, props, session_id, created_at
		FROM events
		WHERE ? = '' OR name = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Event
		var props string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Name, &props, &e.SessionID, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(props), &e.Props); err != nil {
			e.Props = map[string]string{"_raw": props}
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		events = append(events, e)
	}
	return events, rows.Err()
}

// PruneEvents deletes events older than cutoff and returns how many were
// removed.
func (d *Database) PruneEvents(ctx context.Context, cutoff time.Time) (removed int64, err error) {
	start := time.Now()
	defer func() { recordQuery("prune_events", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
