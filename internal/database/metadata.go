package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Metadata keys written by the portal.
const (
	MetaPagesSource   = "pages_source"
	MetaPagesLoadedAt = "pages_loaded_at"
)

// GetMetadata retrieves a metadata value by key. It returns sql.ErrNoRows
// if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (value string, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, sql.ErrNoRows) {
			recordQuery("get_metadata", start, nil)
			return
		}
		recordQuery("get_metadata", start, err)
	}()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	return value, err
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_metadata", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// RecordPagesLoad remembers where the page configuration came from and when.
func (d *Database) RecordPagesLoad(ctx context.Context, source string, at time.Time) error {
	if err := d.SetMetadata(ctx, MetaPagesSource, source); err != nil {
		return err
	}
	return d.SetMetadata(ctx, MetaPagesLoadedAt, at.UTC().Format(time.RFC3339))
}

// LastPagesLoad returns the previously recorded page configuration load.
// A zero time means no load was recorded.
func (d *Database) LastPagesLoad(ctx context.Context) (string, time.Time, error) {
	source, err := d.GetMetadata(ctx, MetaPagesSource)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}

	raw, err := d.GetMetadata(ctx, MetaPagesLoadedAt)
	if errors.Is(err, sql.ErrNoRows) || raw == "" {
		return source, time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", time.Time{}, err
	}
	return source, at, nil
}
