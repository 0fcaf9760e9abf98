package database

import "time"

// Event is one stored analytics event.
type Event struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Props     map[string]string `json:"props,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// EventSummary aggregates stored events per name.
type EventSummary struct {
	Name      string    `json:"name"`
	Count     int64     `json:"count"`
	LastSeen  time.Time `json:"lastSeen"`
	FirstSeen time.Time `json:"firstSeen"`
}
