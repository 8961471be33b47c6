package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/kango-hamed/musia-guide/internal/speech"
	"github.com/rs/zerolog/log"
)

// TourKnowledge is the read surface guided visits need from the resolver.
type TourKnowledge interface {
	GetArtwork(ctx context.Context, id string) *domain.Artwork
	GetAllTrajectories(ctx context.Context) []domain.Trajectory
	GetTrajectoryDetails(ctx context.Context, id string) *domain.Trajectory
}

// TourService serves guided visits: curated trajectories through the
// museum, with pre-generated narration audio for each step.
type TourService struct {
	sessions    domain.SessionStore
	knowledge   TourKnowledge
	synthesizer Synthesizer
	cache       *speech.SynthesisCache
}

// NewTourService wires the guided visit service.
func NewTourService(sessions domain.SessionStore, knowledge TourKnowledge, synthesizer Synthesizer, cache *speech.SynthesisCache) *TourService {
	return &TourService{
		sessions:    sessions,
		knowledge:   knowledge,
		synthesizer: synthesizer,
		cache:       cache,
	}
}

// PreloadedStep is one trajectory step with its narration artifact.
type PreloadedStep struct {
	domain.TrajectoryStep
	AudioURL string `json:"audio_url"`
}

// PreloadResult carries a trajectory with every step's audio generated.
type PreloadResult struct {
	TrajectoryID string          `json:"trajectory_id"`
	Name         string          `json:"name"`
	Steps        []PreloadedStep `json:"steps"`
}

// VisitResult is the outcome of starting a guided visit.
type VisitResult struct {
	SessionID     string          `json:"session_id"`
	TrajectoryID  string          `json:"trajectory_id"`
	Name          string          `json:"name"`
	CurrentStep   int             `json:"current_step"`
	TotalSteps    int             `json:"total_steps"`
	Artwork       *domain.Artwork `json:"artwork,omitempty"`
	NarrativeText string          `json:"narrative_text"`
	AudioURL      string          `json:"audio_url"`
}

// List returns every known trajectory.
func (s *TourService) List(ctx context.Context) []domain.Trajectory {
	return s.knowledge.GetAllTrajectories(ctx)
}

// Get returns one trajectory with its full step list.
func (s *TourService) Get(ctx context.Context, id string) (*domain.Trajectory, error) {
	trajectory := s.knowledge.GetTrajectoryDetails(ctx, id)
	if trajectory == nil {
		return nil, fmt.Errorf("%w: trajectory %s", domain.ErrNotFound, id)
	}
	return trajectory, nil
}

// Preload generates the narration audio of every step ahead of the visit.
// Individual synthesis failures leave that step's audio URL empty rather
// than failing the whole preload.
func (s *TourService) Preload(ctx context.Context, id string) (*PreloadResult, error) {
	trajectory := s.knowledge.GetTrajectoryDetails(ctx, id)
	if trajectory == nil {
		return nil, fmt.Errorf("%w: trajectory %s", domain.ErrNotFound, id)
	}

	steps := make([]PreloadedStep, 0, len(trajectory.Steps))
	for _, step := range trajectory.Steps {
		preloaded := PreloadedStep{TrajectoryStep: step}
		if step.Narrative != "" {
			if url, degraded := s.synthesizeStep(ctx, step.Narrative); !degraded {
				preloaded.AudioURL = url
			}
		}
		steps = append(steps, preloaded)
	}

	log.Info().Str("trajectory_id", id).Int("steps", len(steps)).Msg("trajectory preloaded")
	return &PreloadResult{
		TrajectoryID: trajectory.ID,
		Name:         trajectory.Name,
		Steps:        steps,
	}, nil
}

// StartVisit opens a guided visit session positioned on the first step.
func (s *TourService) StartVisit(ctx context.Context, id string) (*VisitResult, error) {
	trajectory := s.knowledge.GetTrajectoryDetails(ctx, id)
	if trajectory == nil {
		return nil, fmt.Errorf("%w: trajectory %s", domain.ErrNotFound, id)
	}
	if len(trajectory.Steps) == 0 {
		return nil, fmt.Errorf("%w: trajectory %s has no steps", domain.ErrNotFound, id)
	}

	first := trajectory.Steps[0]
	session := domain.NewSession(uuid.NewString(), first.ArtworkID)
	session.Context["trajectory_id"] = trajectory.ID
	session.Context["current_step"] = 1
	session.Context["total_steps"] = len(trajectory.Steps)

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	narrative := first.Narrative
	audioURL := ""
	if narrative != "" {
		var degraded bool
		if audioURL, degraded = s.synthesizeStep(ctx, narrative); degraded {
			narrative += CaveatSuffix
		}
	}

	return &VisitResult{
		SessionID:     session.ID,
		TrajectoryID:  trajectory.ID,
		Name:          trajectory.Name,
		CurrentStep:   1,
		TotalSteps:    len(trajectory.Steps),
		Artwork:       s.knowledge.GetArtwork(ctx, first.ArtworkID),
		NarrativeText: narrative,
		AudioURL:      audioURL,
	}, nil
}

func (s *TourService) synthesizeStep(ctx context.Context, text string) (string, bool) {
	filename, err := s.cache.GetOrCreate(ctx, text, s.synthesizer.Voice(), func(ctx context.Context) ([]byte, error) {
		return s.synthesizer.Synthesize(ctx, text)
	})
	if err != nil {
		log.Error().Err(err).Msg("step narration synthesis failed")
		return "", true
	}
	return "/audio/" + filename, false
}
