package handler

import (
	"net/http"

	"github.com/kango-hamed/musia-guide/internal/api/response"
	"github.com/kango-hamed/musia-guide/internal/knowledge"
)

// RefreshKnowledge re-fetches the artwork index from the backend API. A
// failed fetch keeps the current index and reports the upstream failure.
func RefreshKnowledge(resolver *knowledge.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := resolver.Refresh(r.Context()); err != nil {
			response.BadGateway(w, "backend API refresh failed, current index kept")
			return
		}

		response.OK(w, map[string]any{
			"source":   resolver.Source(),
			"artworks": resolver.ArtworkCount(),
		})
	}
}
