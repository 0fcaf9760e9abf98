package handlers

import (
	"net/http"
	"runtime"
	"time"

	"tutorial-portal/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Ready         bool   `json:"ready"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	PagesLoadedAt string `json:"pagesLoadedAt,omitempty"`
	PagesError    string `json:"pagesError,omitempty"`
	Routes        int    `json:"routes"`

	PlayerSessions int `json:"playerSessions"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. A failed page
// configuration load reports degraded; the server keeps answering with the
// not-found view.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.state.Ready()

	response := HealthResponse{
		Ready:        ready,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Routes:       len(h.state.Config()),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if h.players != nil {
		response.PlayerSessions = h.players.Len()
	}

	switch {
	case ready:
		response.Status = statusHealthy
		response.PagesLoadedAt = h.state.LoadedAt().Format(time.RFC3339)
	case h.state.LoadError() != "":
		response.Status = statusDegraded
		response.PagesError = h.state.LoadError()
	default:
		response.Status = statusStarting
	}

	w.Header().Set("Content-Type", "application/json")
	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when a page configuration is loaded
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.state.Ready() {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
		return
	}

	status := "not_ready"
	if h.state.LoadError() != "" {
		status = statusDegraded
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	writeJSON(w, map[string]string{
		"status": status,
	})
}
