package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/kango-hamed/musia-guide/internal/llm"
	"github.com/kango-hamed/musia-guide/internal/nlp"
	"github.com/kango-hamed/musia-guide/internal/security"
	"github.com/kango-hamed/musia-guide/internal/speech"
	"github.com/rs/zerolog/log"
)

// CaveatSuffix is appended to the text reply when speech synthesis fails.
// The voice channel is a convenience layer over a text-capable answer, so a
// synthesis failure degrades the response instead of aborting it.
const CaveatSuffix = " (Synthèse vocale temporairement indisponible)"

// WelcomeMessage greets visitors who start a conversation without picking
// an artwork first.
const WelcomeMessage = "Bonjour ! Je suis votre guide personnel. Je peux vous présenter des œuvres ou répondre à vos questions. Par quoi souhaitez-vous commencer ?"

// RateGuard decides whether a caller may take another turn.
type RateGuard interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, retryAfter time.Duration)
}

// Transcriber converts visitor audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (*speech.Transcription, error)
}

// Synthesizer converts reply text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voice() string
}

// Knowledge is the read surface the conversation needs from the resolver.
type Knowledge interface {
	GetArtwork(ctx context.Context, id string) *domain.Artwork
	GetNarrative(ctx context.Context, id, variant string) (string, bool)
}

// ConversationService drives one visitor turn through the pipeline:
// rate check, session resolve, optional transcription, intent
// classification, context assembly, generation, synthesis, persist.
type ConversationService struct {
	sessions     domain.SessionStore
	guard        RateGuard
	knowledge    Knowledge
	router       *llm.Router
	transcriber  Transcriber
	synthesizer  Synthesizer
	cache        *speech.SynthesisCache
	interactions domain.InteractionRepository
}

// NewConversationService wires the orchestrator. interactions may be nil,
// in which case turns are not logged.
func NewConversationService(
	sessions domain.SessionStore,
	guard RateGuard,
	knowledge Knowledge,
	router *llm.Router,
	transcriber Transcriber,
	synthesizer Synthesizer,
	cache *speech.SynthesisCache,
	interactions domain.InteractionRepository,
) *ConversationService {
	return &ConversationService{
		sessions:     sessions,
		guard:        guard,
		knowledge:    knowledge,
		router:       router,
		transcriber:  transcriber,
		synthesizer:  synthesizer,
		cache:        cache,
		interactions: interactions,
	}
}

// StartResult is the outcome of opening a conversation.
type StartResult struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	AudioURL  string `json:"audio_url"`
}

// TurnResult is the outcome of one question/answer exchange.
type TurnResult struct {
	SessionID  string  `json:"session_id"`
	UserInput  string  `json:"user_input"`
	Intent     string  `json:"intent"`
	Response   string  `json:"response"`
	AudioURL   string  `json:"audio_url"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Start opens a new session. With an artwork id the greeting is the
// artwork's short narrative; without one it is the generic welcome.
func (s *ConversationService) Start(ctx context.Context, artworkID string) (*StartResult, error) {
	if err := security.ValidateArtworkID(artworkID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	message := WelcomeMessage
	if artworkID != "" {
		artwork := s.knowledge.GetArtwork(ctx, artworkID)
		if artwork == nil {
			return nil, fmt.Errorf("%w: artwork %s", domain.ErrNotFound, artworkID)
		}
		if narrative, ok := s.knowledge.GetNarrative(ctx, artworkID, "short"); ok {
			message = narrative
		} else {
			message = artwork.Description
		}
	}

	session := domain.NewSession(uuid.NewString(), artworkID)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	audioURL, degraded := s.synthesize(ctx, message)
	if degraded {
		message += CaveatSuffix
	}

	return &StartResult{
		SessionID: session.ID,
		Message:   message,
		AudioURL:  audioURL,
	}, nil
}

// AskText answers a typed visitor question.
func (s *ConversationService) AskText(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	if err := security.ValidateSessionID(sessionID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	sanitized, err := security.SanitizeMessage(message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	session, err := s.admit(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, session, sanitized, 0)
}

// AskAudio answers a spoken visitor question: the audio is transcribed
// first, then the turn proceeds as a text turn.
func (s *ConversationService) AskAudio(ctx context.Context, sessionID string, audio []byte, filename string) (*TurnResult, error) {
	if err := security.ValidateSessionID(sessionID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio payload", domain.ErrInvalidInput)
	}

	session, err := s.admit(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	transcription, err := s.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: transcription: %v", domain.ErrUpstreamModel, err)
	}
	log.Info().Str("session_id", sessionID).Str("text", transcription.Text).Msg("audio transcribed")

	sanitized, err := security.SanitizeMessage(transcription.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: transcription yielded no usable text", domain.ErrUpstreamModel)
	}

	return s.respond(ctx, session, sanitized, transcription.Confidence)
}

// History returns a session's conversation turns in order.
func (s *ConversationService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if err := security.ValidateSessionID(sessionID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return session.History, nil
}

// Interactions returns the logged analytics rows for a session, newest
// first. ErrNotFound is returned when the interaction log is disabled.
func (s *ConversationService) Interactions(ctx context.Context, sessionID string, limit int) ([]domain.Interaction, error) {
	if err := security.ValidateSessionID(sessionID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if s.interactions == nil {
		return nil, fmt.Errorf("%w: interaction log is disabled", domain.ErrNotFound)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.interactions.ListBySession(ctx, sessionID, limit)
}

// End deletes a session. Deleting an unknown session is not an error.
func (s *ConversationService) End(ctx context.Context, sessionID string) error {
	if err := security.ValidateSessionID(sessionID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return s.sessions.Delete(ctx, sessionID)
}

// admit runs the rate check and resolves the session. Rejection happens
// before any state is touched.
func (s *ConversationService) admit(ctx context.Context, sessionID string) (*domain.Session, error) {
	allowed, _, retryAfter := s.guard.Allow(ctx, sessionID)
	if !allowed {
		return nil, fmt.Errorf("%w: retry after %s", domain.ErrRateLimited, retryAfter)
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return session, nil
}

// respond runs classify, context assembly, generation, synthesis and
// persist for an admitted turn.
func (s *ConversationService) respond(ctx context.Context, session *domain.Session, question string, confidence float64) (*TurnResult, error) {
	intent := nlp.ClassifyIntent(question)

	var artwork *domain.Artwork
	var bestFAQ *domain.FAQ
	if session.CurrentArtwork != "" {
		artwork = s.knowledge.GetArtwork(ctx, session.CurrentArtwork)
		if artwork != nil {
			bestFAQ = nlp.FindBestFAQ(question, artwork.FAQ)
		}
	}

	provider, err := s.router.GetProvider("")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamModel, err)
	}

	generated, err := provider.GenerateReply(ctx, llm.Request{
		Question: question,
		Intent:   intent,
		Artwork:  artwork,
		BestFAQ:  bestFAQ,
		History:  session.History,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("%w: generation: %v", domain.ErrUpstreamModel, err)
	}
	response := generated.Text

	audioURL, degraded := s.synthesize(ctx, response)
	if degraded {
		response += CaveatSuffix
	}

	// Persist runs whether or not synthesis succeeded. Two concurrent turns
	// on one session race on this read-modify-write; see SessionStore docs.
	session.History = append(session.History, domain.Turn{
		User:   question,
		Bot:    response,
		Intent: intent,
	})
	if err := s.sessions.Update(ctx, session); err != nil {
		log.Error().Err(err).Str("session_id", session.ID).Msg("failed to persist session turn")
	}

	s.logInteraction(ctx, session.ID, question, response, intent)

	return &TurnResult{
		SessionID:  session.ID,
		UserInput:  question,
		Intent:     intent,
		Response:   response,
		AudioURL:   audioURL,
		Confidence: confidence,
	}, nil
}

// synthesize produces the audio artifact for a reply through the cache.
// Returns the public audio URL, or "" plus degraded=true on failure.
func (s *ConversationService) synthesize(ctx context.Context, text string) (string, bool) {
	filename, err := s.cache.GetOrCreate(ctx, text, s.synthesizer.Voice(), func(ctx context.Context) ([]byte, error) {
		return s.synthesizer.Synthesize(ctx, text)
	})
	if err != nil {
		log.Error().Err(err).Msg("speech synthesis failed, returning text-only response")
		return "", true
	}
	return "/audio/" + filename, false
}

// logInteraction records the turn for analytics. Best effort only.
func (s *ConversationService) logInteraction(ctx context.Context, sessionID, question, response, intent string) {
	if s.interactions == nil {
		return
	}
	err := s.interactions.Create(ctx, &domain.Interaction{
		ID:             uuid.New(),
		SessionID:      sessionID,
		QuestionText:   question,
		ResponseText:   response,
		DetectedIntent: intent,
		WasSuccessful:  true,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to log interaction")
	}
}
