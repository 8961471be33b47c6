package handler

import (
	"net/http"
	"time"

	"github.com/kango-hamed/musia-guide/internal/api/response"
	"github.com/kango-hamed/musia-guide/internal/knowledge"
	"github.com/kango-hamed/musia-guide/internal/llm"
	"github.com/kango-hamed/musia-guide/internal/repository/postgres"
	"github.com/kango-hamed/musia-guide/internal/repository/redis"
)

// HealthHandler reports the status of every dependency the pipeline
// degrades around. The process is "degraded", never "down", when a
// fallback is engaged; that is the whole point of the resilience layer.
type HealthHandler struct {
	backend  redis.Backend
	sessions *redis.SessionStore
	resolver *knowledge.Resolver
	router   *llm.Router
	db       *postgres.DB
	sttURL   string
	ttsURL   string
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(backend redis.Backend, sessions *redis.SessionStore, resolver *knowledge.Resolver, router *llm.Router, db *postgres.DB, sttURL, ttsURL string) *HealthHandler {
	return &HealthHandler{
		backend:  backend,
		sessions: sessions,
		resolver: resolver,
		router:   router,
		db:       db,
		sttURL:   sttURL,
		ttsURL:   ttsURL,
	}
}

// Check returns the detailed health document
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	services := map[string]any{}
	dependencies := map[string]any{}

	redisStatus := "connected"
	if err := h.backend.Ping(r.Context()); err != nil {
		redisStatus = "unreachable"
		status = "degraded"
	}
	if h.sessions.Degraded() {
		redisStatus = "fallback_memory"
		status = "degraded"
	}
	dependencies["redis"] = redisStatus

	if h.db != nil {
		dbStatus := "connected"
		if err := h.db.Ping(r.Context()); err != nil {
			dbStatus = "unreachable"
			status = "degraded"
		}
		dependencies["database"] = dbStatus
	} else {
		dependencies["database"] = "disabled"
	}

	source := h.resolver.Source()
	services["knowledge"] = map[string]any{
		"source":   source,
		"artworks": h.resolver.ArtworkCount(),
	}
	if source != knowledge.SourceAPI {
		status = "degraded"
	}

	services["stt"] = configuredStatus(h.sttURL)
	services["tts"] = configuredStatus(h.ttsURL)

	providers := h.router.ListProviders()
	services["llm"] = map[string]any{
		"providers": providers,
		"default":   h.router.DefaultProvider(),
	}
	if len(providers) == 0 {
		status = "degraded"
	}

	response.OK(w, map[string]any{
		"status":       status,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"services":     services,
		"dependencies": dependencies,
	})
}

func configuredStatus(url string) string {
	if url == "" {
		return "not_configured"
	}
	return "configured"
}

// Live is the minimal liveness probe
func Live(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}
