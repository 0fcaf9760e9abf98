package handlers

import (
	"net/http"
	"strconv"

	"tutorial-portal/internal/database"
	"tutorial-portal/internal/logging"
)

const maxRecentEvents = 500

// EventSummaryResponse lists stored analytics events per name.
type EventSummaryResponse struct {
	Events []database.EventSummary `json:"events"`
	Total  int64                   `json:"total"`
}

// GetEventSummary returns per-event counts from the event store.
func (h *Handlers) GetEventSummary(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeJSONError(w, "analytics disabled", http.StatusServiceUnavailable)
		return
	}

	summaries, err := h.events.EventSummaries(r.Context())
	if err != nil {
		logging.Error("Failed to load event summaries: %v", err)
		writeJSONError(w, "failed to load events", http.StatusInternalServerError)
		return
	}

	resp := EventSummaryResponse{Events: summaries}
	if resp.Events == nil {
		resp.Events = []database.EventSummary{}
	}
	for _, s := range summaries {
		resp.Total += s.Count
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, resp)
}

// GetRecentEvents returns the newest stored events, optionally filtered by
// the name parameter.
func (h *Handlers) GetRecentEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeJSONError(w, "analytics disabled", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRecentEvents)
	}

	events, err := h.events.RecentEvents(r.Context(), r.URL.Query().Get("name"), limit)
	if err != nil {
		logging.Error("Failed to load recent events: %v", err)
		writeJSONError(w, "failed to load events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []database.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, events)
}
