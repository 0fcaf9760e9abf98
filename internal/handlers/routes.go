package handlers

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes adds the public portal routes to r. Health endpoints live at
// the root; the player API, thumbnails and pages live under the base path.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET").Name("health")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET").Name("healthz")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD").Name("livez")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET").Name("readyz")
	r.HandleFunc("/version", h.GetVersion).Methods("GET").Name("version")

	sub := r
	if base := h.state.BasePath(); base != "" {
		sub = r.PathPrefix(base).Subrouter()
	}

	api := sub.PathPrefix("/api").Subrouter()
	api.HandleFunc("/player/sessions", h.CreatePlayerSession).Methods("POST")
	api.HandleFunc("/player/sessions/{id}", h.GetPlayerSession).Methods("GET")
	api.HandleFunc("/player/sessions/{id}", h.DeletePlayerSession).Methods("DELETE")
	api.HandleFunc("/player/sessions/{id}/open", h.OpenMedia).Methods("POST")
	api.HandleFunc("/player/sessions/{id}/ended", h.MediaEnded).Methods("POST")
	api.HandleFunc("/player/sessions/{id}/input", h.PlayerInput).Methods("POST")
	api.HandleFunc("/player/sessions/{id}/autoplay-failed", h.AutoplayFailed).Methods("POST")
	api.HandleFunc("/player/sessions/{id}/close", h.ClosePlayer).Methods("POST")

	sub.HandleFunc("/thumbs/{path:.*}", h.GetThumbnail).Methods("GET", "HEAD")

	// Pages, media redirects and static files. Registered on the root router
	// so paths outside the base path still get the not-found view.
	r.PathPrefix("/").HandlerFunc(h.ServePage).Methods("GET", "HEAD")
}

// RegisterAdminRoutes adds the operator endpoints served on the metrics
// listener. Stored events carry user agents and referrers, so they stay off
// the public router.
func (h *Handlers) RegisterAdminRoutes(r *mux.Router) {
	r.Handle("/metrics", h.MetricsHandler()).Methods("GET").Name("metrics")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events/summary", h.GetEventSummary).Methods("GET")
	api.HandleFunc("/events/recent", h.GetRecentEvents).Methods("GET")
}
