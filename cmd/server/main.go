package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kango-hamed/musia-guide/internal/api"
	"github.com/kango-hamed/musia-guide/internal/config"
	"github.com/kango-hamed/musia-guide/internal/knowledge"
	"github.com/kango-hamed/musia-guide/internal/repository/postgres"
	"github.com/kango-hamed/musia-guide/internal/repository/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting Musia guide API server")

	// Interaction log database. The conversation pipeline does not depend
	// on it, so an unreachable database degrades logging instead of
	// refusing to start.
	var db *postgres.DB
	if db, err = postgres.NewDB(context.Background(), cfg.Database); err != nil {
		log.Warn().Err(err).Msg("Database unreachable, interaction logging disabled")
		db = nil
	} else {
		defer db.Close()
	}

	// Redis: the stores degrade to local fallbacks when it is down
	redisClient := redis.NewClient(cfg.Redis)
	defer redisClient.Close()

	// Knowledge base: primary API tier, local snapshot fallback
	resolver := knowledge.NewResolver(cfg.Knowledge)
	resolver.Load(context.Background())

	router, err := api.NewRouter(cfg, db, redisClient, resolver)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize router")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
