package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kango-hamed/musia-guide/internal/api/handler"
	customMiddleware "github.com/kango-hamed/musia-guide/internal/api/middleware"
	"github.com/kango-hamed/musia-guide/internal/config"
	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/kango-hamed/musia-guide/internal/knowledge"
	"github.com/kango-hamed/musia-guide/internal/llm"
	"github.com/kango-hamed/musia-guide/internal/llm/gemini"
	"github.com/kango-hamed/musia-guide/internal/llm/groq"
	"github.com/kango-hamed/musia-guide/internal/repository/postgres"
	"github.com/kango-hamed/musia-guide/internal/repository/redis"
	"github.com/kango-hamed/musia-guide/internal/service"
	"github.com/kango-hamed/musia-guide/internal/speech"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router. db may be nil when the
// interaction log database is not available; conversation turns then go
// unlogged but everything else serves normally.
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, resolver *knowledge.Resolver) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Resilience layer
	sessions := redis.NewSessionStore(redisClient, cfg.Session.TTL)
	guard := redis.NewRateGuard(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	cache, err := speech.NewSynthesisCache(cfg.Speech.CacheDir)
	if err != nil {
		return nil, err
	}

	// External model clients
	transcriber := speech.NewTranscriber(cfg.Speech.STTURL, cfg.Speech.Timeout)
	synthesizer := speech.NewSynthesizer(cfg.Speech.TTSURL, cfg.Speech.Voice, cfg.Speech.Timeout)

	// LLM router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Groq.APIKey != "" {
		llmRouter.RegisterProvider(groq.NewProvider(cfg.LLM.Groq))
	} else {
		log.Warn().Msg("Groq API key is empty, skipping registration")
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	} else {
		log.Warn().Msg("Gemini API key is empty, skipping registration")
	}

	// Interaction log (best effort, optional)
	var interactions domain.InteractionRepository
	if db != nil {
		interactions = postgres.NewInteractionRepository(db.Pool)
	}

	// Services
	conversationService := service.NewConversationService(
		sessions, guard, resolver, llmRouter,
		transcriber, synthesizer, cache, interactions,
	)
	tourService := service.NewTourService(sessions, resolver, synthesizer, cache)

	// Handlers
	windowSec := int(cfg.RateLimit.Window.Seconds())
	conversationHandler := handler.NewConversationHandler(conversationService, cfg.Speech.MaxAudioMB, windowSec)
	artworkHandler := handler.NewArtworkHandler(resolver, synthesizer, cache)
	trajectoryHandler := handler.NewTrajectoryHandler(tourService)
	audioHandler := handler.NewAudioHandler(cache)
	healthHandler := handler.NewHealthHandler(redisClient, sessions, resolver, llmRouter, db, cfg.Speech.STTURL, cfg.Speech.TTSURL)

	// Session-less endpoints are limited per client address; turn endpoints
	// carry their own session-keyed limit inside the orchestrator
	rateLimit := customMiddleware.NewRateLimitMiddleware(guard)

	r.Get("/health", healthHandler.Check)
	r.Get("/live", handler.Live)

	r.Get("/audio/{filename}", audioHandler.Get)
	r.Post("/cache/flush", audioHandler.Flush)

	r.Get("/voices", handler.ListVoices(synthesizer))
	r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))
	r.Post("/knowledge/refresh", handler.RefreshKnowledge(resolver))

	r.Route("/artworks", func(r chi.Router) {
		r.Use(rateLimit.Limit)
		r.Get("/", artworkHandler.List)
		r.Get("/{artworkID}", artworkHandler.Get)
		r.Get("/{artworkID}/narrative", artworkHandler.Narrate)
	})

	r.Route("/trajectories", func(r chi.Router) {
		r.Use(rateLimit.Limit)
		r.Get("/", trajectoryHandler.List)
		r.Get("/{trajectoryID}", trajectoryHandler.Get)
		r.Get("/{trajectoryID}/preload", trajectoryHandler.Preload)
		r.Post("/{trajectoryID}/start", trajectoryHandler.Start)
	})

	r.Route("/conversation", func(r chi.Router) {
		r.With(rateLimit.Limit).Post("/start", conversationHandler.Start)
		r.Post("/ask", conversationHandler.AskAudio)
		r.Post("/text", conversationHandler.AskText)
		r.Get("/{sessionID}/history", conversationHandler.History)
		r.Get("/{sessionID}/interactions", conversationHandler.Interactions)
		r.Delete("/{sessionID}", conversationHandler.End)
	})

	return r, nil
}
