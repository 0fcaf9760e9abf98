package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tutorial-portal/internal/logging"
	"tutorial-portal/internal/media"

	"github.com/gorilla/mux"
)

// GetThumbnail serves a resized copy of a static image. The width comes
// from the w parameter and is snapped to a fixed set of sizes.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	rel := mux.Vars(r)["path"]
	if rel == "" {
		http.Error(w, "Path is required", http.StatusBadRequest)
		return
	}

	if h.thumbs == nil || !h.thumbs.IsEnabled() {
		http.Error(w, "Thumbnails disabled", http.StatusServiceUnavailable)
		return
	}

	width := h.thumbWidth
	if raw := r.URL.Query().Get("w"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid width", http.StatusBadRequest)
			return
		}
		width = n
	}

	data, err := h.thumbs.GetThumbnail(r.Context(), rel, width)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrInvalidPath):
			logging.Warn("Thumbnail: invalid path %q", rel)
			http.Error(w, "Invalid path", http.StatusBadRequest)
		case errors.Is(err, media.ErrNotFound):
			http.Error(w, "File not found", http.StatusNotFound)
		case errors.Is(err, media.ErrUnsupported):
			http.Error(w, "Unsupported file type", http.StatusUnsupportedMediaType)
		case errors.Is(err, media.ErrDisabled):
			http.Error(w, "Thumbnails disabled", http.StatusServiceUnavailable)
		default:
			logging.Error("Thumbnail generation failed for %s: %v", rel, err)
			http.Error(w, "Failed to generate thumbnail", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		logging.Debug("failed to write thumbnail: %v", err)
	}
}
