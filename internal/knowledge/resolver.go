package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/kango-hamed/musia-guide/internal/config"
	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/rs/zerolog/log"
)

// Tier labels reported by Source.
const (
	SourceAPI      = "api"
	SourceSnapshot = "snapshot"
	SourceNone     = "none"
)

// Resolver serves artwork and trajectory records from two tiers: the Musia
// backend API and a local JSON snapshot. Whichever tier answers, callers see
// one record shape. Reads are total functions: a tier failure falls through
// to the next tier and an unknown id yields nil, never an error.
type Resolver struct {
	backendURL    string
	snapshotPath  string
	authoritative bool
	client        *http.Client

	mu           sync.RWMutex
	artworks     map[string]*domain.Artwork
	trajectories map[string]*domain.Trajectory
	source       string
}

// NewResolver creates a resolver from configuration. Call Load before use.
func NewResolver(cfg config.KnowledgeConfig) *Resolver {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		backendURL:    cfg.BackendURL,
		snapshotPath:  cfg.SnapshotPath,
		authoritative: cfg.Authoritative,
		client:        &http.Client{Timeout: timeout},
		artworks:      make(map[string]*domain.Artwork),
		trajectories:  make(map[string]*domain.Trajectory),
		source:        SourceNone,
	}
}

// Source reports which tier populated the index.
func (r *Resolver) Source() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// ArtworkCount returns the number of indexed artworks.
func (r *Resolver) ArtworkCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.artworks)
}

// Load populates the in-memory index, preferring the backend API and
// falling back to the local snapshot when the API errors or returns no
// records. Load never fails the process: with both tiers empty the resolver
// simply resolves nothing.
func (r *Resolver) Load(ctx context.Context) {
	if err := r.fetchFromAPI(ctx); err == nil {
		log.Info().Int("artworks", r.ArtworkCount()).Msg("knowledge base loaded from backend API")
		return
	} else {
		log.Warn().Err(err).Msg("backend API unavailable, trying local snapshot")
	}

	if err := r.loadSnapshot(); err != nil {
		log.Error().Err(err).Str("path", r.snapshotPath).Msg("local snapshot unavailable, knowledge base is empty")
		return
	}
	log.Warn().Int("artworks", r.ArtworkCount()).Msg("knowledge base loaded from local snapshot")
}

// Refresh re-fetches the primary tier, keeping the current index when the
// fetch fails.
func (r *Resolver) Refresh(ctx context.Context) error {
	return r.fetchFromAPI(ctx)
}

// GetArtwork resolves one artwork. With an authoritative primary tier the
// backend is consulted first; any tier failure falls through to the
// in-memory index. Returns nil when no tier has the record.
func (r *Resolver) GetArtwork(ctx context.Context, id string) *domain.Artwork {
	if r.authoritative {
		if artwork, err := r.fetchArtwork(ctx, id); err == nil && artwork != nil {
			return artwork
		} else if err != nil {
			log.Debug().Err(err).Str("artwork_id", id).Msg("primary tier lookup failed, using index")
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.artworks[id]
}

// GetAllArtworks returns every indexed artwork, ordered by title.
func (r *Resolver) GetAllArtworks(ctx context.Context) []domain.Artwork {
	r.mu.RLock()
	defer r.mu.RUnlock()

	artworks := make([]domain.Artwork, 0, len(r.artworks))
	for _, a := range r.artworks {
		artworks = append(artworks, *a)
	}
	sort.Slice(artworks, func(i, j int) bool { return artworks[i].Title < artworks[j].Title })
	return artworks
}

// GetNarrative returns the narration text of an artwork for a variant,
// normalizing legacy variant labels. The boolean is false when the artwork
// or the variant is unknown.
func (r *Resolver) GetNarrative(ctx context.Context, id, variant string) (string, bool) {
	artwork := r.GetArtwork(ctx, id)
	if artwork == nil {
		return "", false
	}
	text, ok := artwork.Narratives[NormalizeVariant(variant)]
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

// GetTrajectory returns an indexed trajectory, nil when unknown.
func (r *Resolver) GetTrajectory(ctx context.Context, id string) *domain.Trajectory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trajectories[id]
}

// GetAllTrajectories returns every indexed trajectory, ordered by name.
func (r *Resolver) GetAllTrajectories(ctx context.Context) []domain.Trajectory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trajectories := make([]domain.Trajectory, 0, len(r.trajectories))
	for _, t := range r.trajectories {
		trajectories = append(trajectories, *t)
	}
	sort.Slice(trajectories, func(i, j int) bool { return trajectories[i].Name < trajectories[j].Name })
	return trajectories
}

// GetTrajectoryDetails fetches the full step list from the primary tier,
// falling back to the indexed trajectory. Returns nil when unknown.
func (r *Resolver) GetTrajectoryDetails(ctx context.Context, id string) *domain.Trajectory {
	if trajectory, err := r.fetchTrajectory(ctx, id); err == nil && trajectory != nil {
		return trajectory
	} else if err != nil {
		log.Debug().Err(err).Str("trajectory_id", id).Msg("trajectory detail fetch failed, using index")
	}
	return r.GetTrajectory(ctx, id)
}

// apiArtwork is the backend API record shape.
type apiArtwork struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Artist            string `json:"artist"`
	Period            string `json:"period"`
	Description       string `json:"description"`
	ImageURL          string `json:"imageUrl"`
	NarrativeContents []struct {
		Version     string `json:"version"`
		TextContent string `json:"textContent"`
	} `json:"narrativeContents"`
}

func (a apiArtwork) toDomain() *domain.Artwork {
	narratives := make(map[string]string, len(a.NarrativeContents))
	for _, nc := range a.NarrativeContents {
		narratives[NormalizeVariant(nc.Version)] = nc.TextContent
	}

	artist := a.Artist
	if artist == "" {
		artist = "Artiste inconnu"
	}

	return &domain.Artwork{
		ID:          a.ID,
		Title:       a.Title,
		Artist:      artist,
		Year:        a.Period,
		Description: a.Description,
		ImageURL:    a.ImageURL,
		Narratives:  narratives,
		FAQ:         []domain.FAQ{},
	}
}

type apiTrajectory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []struct {
		StepOrder int `json:"stepOrder"`
		Artwork   struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			ImageURL string `json:"imageUrl"`
		} `json:"artwork"`
		NarrativeContent struct {
			TextContent string `json:"textContent"`
		} `json:"narrativeContent"`
	} `json:"steps"`
}

func (t apiTrajectory) toDomain() *domain.Trajectory {
	steps := make([]domain.TrajectoryStep, 0, len(t.Steps))
	for _, s := range t.Steps {
		steps = append(steps, domain.TrajectoryStep{
			Order:     s.StepOrder,
			ArtworkID: s.Artwork.ID,
			Title:     s.Artwork.Title,
			ImageURL:  s.Artwork.ImageURL,
			Narrative: s.NarrativeContent.TextContent,
		})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })

	return &domain.Trajectory{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Steps:       steps,
	}
}

func (r *Resolver) fetchFromAPI(ctx context.Context) error {
	var artworkRecords []apiArtwork
	if err := r.getJSON(ctx, r.backendURL+"/artworks", &artworkRecords); err != nil {
		return err
	}
	if len(artworkRecords) == 0 {
		return fmt.Errorf("backend API returned no artworks")
	}

	artworks := make(map[string]*domain.Artwork, len(artworkRecords))
	for _, rec := range artworkRecords {
		artworks[rec.ID] = rec.toDomain()
	}

	trajectories := make(map[string]*domain.Trajectory)
	var trajectoryRecords []apiTrajectory
	if err := r.getJSON(ctx, r.backendURL+"/trajectories", &trajectoryRecords); err != nil {
		// Trajectories are optional; artworks alone make the tier usable
		log.Warn().Err(err).Msg("failed to fetch trajectories from backend API")
	} else {
		for _, rec := range trajectoryRecords {
			trajectories[rec.ID] = rec.toDomain()
		}
	}

	r.mu.Lock()
	r.artworks = artworks
	r.trajectories = trajectories
	r.source = SourceAPI
	r.mu.Unlock()
	return nil
}

func (r *Resolver) fetchArtwork(ctx context.Context, id string) (*domain.Artwork, error) {
	var record apiArtwork
	if err := r.getJSON(ctx, r.backendURL+"/artworks/"+id, &record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, nil
	}
	return record.toDomain(), nil
}

func (r *Resolver) fetchTrajectory(ctx context.Context, id string) (*domain.Trajectory, error) {
	var record apiTrajectory
	if err := r.getJSON(ctx, r.backendURL+"/trajectories/"+id, &record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, nil
	}
	return record.toDomain(), nil
}

// getJSON fetches a JSON document, unwrapping the backend's optional
// {"data": ...} envelope.
func (r *Resolver) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		body = envelope.Data
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
