package knowledge

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kango-hamed/musia-guide/internal/domain"
)

// snapshotDocument is the local fallback file shape:
// {"artworks": [{id, title, artist, year, description, narratives, faq}]}
type snapshotDocument struct {
	Artworks     []snapshotArtwork   `json:"artworks"`
	Trajectories []domain.Trajectory `json:"trajectories"`
}

type snapshotArtwork struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Artist      string            `json:"artist"`
	Year        string            `json:"year"`
	Description string            `json:"description"`
	ImageURL    string            `json:"imageUrl"`
	Narratives  map[string]string `json:"narratives"`
	FAQ         []domain.FAQ      `json:"faq"`
}

// loadSnapshot replaces the index with the contents of the local JSON
// snapshot. Narrative labels are normalized so snapshot-served records are
// indistinguishable from API-served ones.
func (r *Resolver) loadSnapshot() error {
	data, err := os.ReadFile(r.snapshotPath)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if len(doc.Artworks) == 0 {
		return fmt.Errorf("snapshot contains no artworks")
	}

	artworks := make(map[string]*domain.Artwork, len(doc.Artworks))
	for _, a := range doc.Artworks {
		narratives := make(map[string]string, len(a.Narratives))
		for variant, text := range a.Narratives {
			narratives[NormalizeVariant(variant)] = text
		}
		faq := a.FAQ
		if faq == nil {
			faq = []domain.FAQ{}
		}
		artworks[a.ID] = &domain.Artwork{
			ID:          a.ID,
			Title:       a.Title,
			Artist:      a.Artist,
			Year:        a.Year,
			Description: a.Description,
			ImageURL:    a.ImageURL,
			Narratives:  narratives,
			FAQ:         faq,
		}
	}

	trajectories := make(map[string]*domain.Trajectory, len(doc.Trajectories))
	for i := range doc.Trajectories {
		t := doc.Trajectories[i]
		trajectories[t.ID] = &t
	}

	r.mu.Lock()
	r.artworks = artworks
	r.trajectories = trajectories
	r.source = SourceSnapshot
	r.mu.Unlock()
	return nil
}

// NormalizeVariant folds legacy narrative labels onto the canonical set
// {short, standard, detailed, kids}. The two historical tiers named the
// same variants differently ("court"/"short", "long"/"detailed").
func NormalizeVariant(variant string) string {
	switch variant {
	case "", "standard":
		return "standard"
	case "short", "court":
		return "short"
	case "detailed", "long":
		return "detailed"
	case "kids", "enfants":
		return "kids"
	default:
		return variant
	}
}
