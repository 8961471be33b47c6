package domain

// FAQ is a curated question/answer pair attached to an artwork.
type FAQ struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords,omitempty"`
}

// Artwork is the knowledge record exposed to the rest of the system. The
// shape is identical regardless of which tier (backend API or local
// snapshot) supplied it.
type Artwork struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Artist      string            `json:"artist"`
	Year        string            `json:"year"`
	Description string            `json:"description"`
	ImageURL    string            `json:"imageUrl,omitempty"`
	Narratives  map[string]string `json:"narratives"`
	FAQ         []FAQ             `json:"faq"`
}

// Trajectory is a curated tour through a set of artworks.
type Trajectory struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Steps       []TrajectoryStep `json:"steps,omitempty"`
}

// TrajectoryStep binds one artwork and its narration to a position in a
// trajectory.
type TrajectoryStep struct {
	Order     int    `json:"order"`
	ArtworkID string `json:"artworkId"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Narrative string `json:"narrative"`
}
