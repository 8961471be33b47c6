package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kango-hamed/musia-guide/internal/api/response"
	"github.com/kango-hamed/musia-guide/internal/security"
	"github.com/kango-hamed/musia-guide/internal/speech"
)

// AudioHandler serves generated audio artifacts by opaque name.
type AudioHandler struct {
	cache *speech.SynthesisCache
}

// NewAudioHandler creates a new audio handler
func NewAudioHandler(cache *speech.SynthesisCache) *AudioHandler {
	return &AudioHandler{cache: cache}
}

// Get streams one cached artifact. The name is validated so it cannot
// escape the artifact directory.
func (h *AudioHandler) Get(w http.ResponseWriter, r *http.Request) {
	filename, err := security.ValidateAudioFilename(chi.URLParam(r, "filename"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	cacheDir, err := filepath.Abs(h.cache.Dir())
	if err != nil {
		response.InternalError(w, "audio cache unavailable")
		return
	}
	path := filepath.Join(cacheDir, filename)
	if !strings.HasPrefix(path, cacheDir+string(os.PathSeparator)) {
		response.Forbidden(w, "access denied")
		return
	}

	if _, err := os.Stat(path); err != nil {
		response.NotFound(w, "audio file not found")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, path)
}

// Flush clears every cached artifact
func (h *AudioHandler) Flush(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.cache.Flush()
	if err != nil {
		response.InternalError(w, "failed to flush cache: "+err.Error())
		return
	}

	response.OK(w, map[string]any{
		"message":       "cache flushed successfully",
		"files_deleted": deleted,
	})
}
