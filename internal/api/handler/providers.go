package handler

import (
	"net/http"

	"github.com/kango-hamed/musia-guide/internal/api/response"
	"github.com/kango-hamed/musia-guide/internal/llm"
	"github.com/kango-hamed/musia-guide/internal/speech"
)

// ListLLMProviders returns the registered generation providers
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}

// ListVoices returns the synthesis voices available for a locale
// (query parameter "locale", default "fr")
func ListVoices(synthesizer *speech.Synthesizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := r.URL.Query().Get("locale")
		if locale == "" {
			locale = "fr"
		}

		voices, err := synthesizer.ListVoices(r.Context(), locale)
		if err != nil {
			response.BadGateway(w, "voice listing unavailable")
			return
		}

		response.OK(w, map[string]any{
			"locale": locale,
			"voices": voices,
		})
	}
}
