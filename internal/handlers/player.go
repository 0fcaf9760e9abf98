package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/params"
	"tutorial-portal/internal/player"

	"github.com/gorilla/mux"
)

const maxPlayerBody = 4 << 10

// SessionResponse is returned when a player session is created.
type SessionResponse struct {
	ID        string          `json:"id"`
	AutoClose bool            `json:"autoClose"`
	Snapshot  player.Snapshot `json:"snapshot"`
}

// OpenRequest is the body of the open action.
type OpenRequest struct {
	Src string `json:"src"`
}

// OpenResponse tells the client whether to attempt autoplay.
type OpenResponse struct {
	Autoplay bool            `json:"autoplay"`
	Snapshot player.Snapshot `json:"snapshot"`
}

// AutoplayFailedRequest is the body of the autoplay-failed action.
type AutoplayFailedRequest struct {
	Reason string `json:"reason"`
}

// CreatePlayerSession starts a session. Auto-close follows the timeout
// query parameter, falling back to room device detection.
func (h *Handlers) CreatePlayerSession(w http.ResponseWriter, r *http.Request) {
	q := params.Parse(r.URL.Query())
	autoClose := params.AutoCloseEnabled(q, r.UserAgent())

	id, p, err := h.players.Create(autoClose)
	if err != nil {
		w.Header().Set("Retry-After", "60")
		writeJSONError(w, "too many player sessions", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, SessionResponse{ID: id, AutoClose: autoClose, Snapshot: p.Snapshot()})
}

// GetPlayerSession returns the session's current state. Clients poll it to
// notice inactivity closes.
func (h *Handlers) GetPlayerSession(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupPlayer(w, r)
	if !ok {
		return
	}
	writeSnapshot(w, p)
}

// DeletePlayerSession closes and forgets the session.
func (h *Handlers) DeletePlayerSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.players.Remove(id); err != nil {
		writeJSONError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OpenMedia opens the requested media in the session's player.
func (h *Handlers) OpenMedia(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupPlayer(w, r)
	if !ok {
		return
	}

	var req OpenRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Src == "" {
		writeJSONError(w, "src is required", http.StatusBadRequest)
		return
	}

	autoplay := p.Open(req.Src)
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, OpenResponse{Autoplay: autoplay, Snapshot: p.Snapshot()})
}

// MediaEnded records the end of video playback.
func (h *Handlers) MediaEnded(w http.ResponseWriter, r *http.Request) {
	h.playerAction(w, r, (*player.Player).Ended)
}

// PlayerInput records viewer activity.
func (h *Handlers) PlayerInput(w http.ResponseWriter, r *http.Request) {
	h.playerAction(w, r, (*player.Player).Input)
}

// ClosePlayer closes the session's player. The session stays usable.
func (h *Handlers) ClosePlayer(w http.ResponseWriter, r *http.Request) {
	h.playerAction(w, r, (*player.Player).Close)
}

// AutoplayFailed records that the browser refused autoplay.
func (h *Handlers) AutoplayFailed(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupPlayer(w, r)
	if !ok {
		return
	}

	var req AutoplayFailedRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		req.Reason = "unknown"
	}

	p.AutoplayFailed(req.Reason)
	writeSnapshot(w, p)
}

func (h *Handlers) playerAction(w http.ResponseWriter, r *http.Request, action func(*player.Player)) {
	p, ok := h.lookupPlayer(w, r)
	if !ok {
		return
	}
	action(p)
	writeSnapshot(w, p)
}

func (h *Handlers) lookupPlayer(w http.ResponseWriter, r *http.Request) (*player.Player, bool) {
	id := mux.Vars(r)["id"]
	p, err := h.players.Get(id)
	if err != nil {
		if errors.Is(err, player.ErrNoSession) {
			logging.Debug("Player session %q not found", id)
			writeJSONError(w, "session not found", http.StatusNotFound)
		} else {
			logging.Error("Player session lookup failed: %v", err)
			writeJSONError(w, "session lookup failed", http.StatusInternalServerError)
		}
		return nil, false
	}
	return p, true
}

func writeSnapshot(w http.ResponseWriter, p *player.Player) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, p.Snapshot())
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxPlayerBody)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
