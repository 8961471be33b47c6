package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kango-hamed/musia-guide/internal/api/response"
	"github.com/kango-hamed/musia-guide/internal/knowledge"
	"github.com/kango-hamed/musia-guide/internal/security"
	"github.com/kango-hamed/musia-guide/internal/service"
	"github.com/kango-hamed/musia-guide/internal/speech"
)

// ArtworkHandler handles artwork browsing and narration endpoints
type ArtworkHandler struct {
	resolver    *knowledge.Resolver
	synthesizer service.Synthesizer
	cache       *speech.SynthesisCache
}

// NewArtworkHandler creates a new artwork handler
func NewArtworkHandler(resolver *knowledge.Resolver, synthesizer service.Synthesizer, cache *speech.SynthesisCache) *ArtworkHandler {
	return &ArtworkHandler{
		resolver:    resolver,
		synthesizer: synthesizer,
		cache:       cache,
	}
}

// List returns every known artwork
func (h *ArtworkHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.resolver.GetAllArtworks(r.Context()))
}

// Get returns one artwork
func (h *ArtworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "artworkID")
	if err := security.ValidateArtworkID(id); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	artwork := h.resolver.GetArtwork(r.Context(), id)
	if artwork == nil {
		response.NotFound(w, "artwork not found")
		return
	}

	response.OK(w, artwork)
}

// Narrate returns an artwork's narration text with its synthesized audio.
// Unlike conversation turns, this endpoint has nothing to serve without
// audio, so a synthesis failure is reported as an upstream failure.
func (h *ArtworkHandler) Narrate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "artworkID")
	if err := security.ValidateArtworkID(id); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	variant := r.URL.Query().Get("type")

	text, ok := h.resolver.GetNarrative(r.Context(), id, variant)
	if !ok {
		response.NotFound(w, "narrative not found")
		return
	}

	filename, err := h.cache.GetOrCreate(r.Context(), text, h.synthesizer.Voice(), func(ctx context.Context) ([]byte, error) {
		return h.synthesizer.Synthesize(ctx, text)
	})
	if err != nil {
		response.BadGateway(w, "speech synthesis failed")
		return
	}

	response.OK(w, map[string]string{
		"artwork_id": id,
		"type":       knowledge.NormalizeVariant(variant),
		"text":       text,
		"audio_url":  "/audio/" + filename,
	})
}
