package domain

import "context"

// Turn is one exchange in a conversation: what the visitor said, what the
// guide answered, and the intent that was detected for the question.
type Turn struct {
	User   string `json:"user"`
	Bot    string `json:"bot"`
	Intent string `json:"intent"`
}

// Session holds the conversational state of one visitor. It is stored as an
// opaque JSON payload and always written back whole (replace-value
// semantics, no field-level patching).
type Session struct {
	ID             string         `json:"id"`
	CurrentArtwork string         `json:"current_artwork,omitempty"`
	History        []Turn         `json:"history"`
	Context        map[string]any `json:"context"`
}

// NewSession returns an empty session focused on the given artwork (may be
// empty for a general conversation).
func NewSession(id, artworkID string) *Session {
	return &Session{
		ID:             id,
		CurrentArtwork: artworkID,
		History:        []Turn{},
		Context:        map[string]any{},
	}
}

// SessionStore persists visitor sessions. Get returns (nil, nil) when the
// session does not exist; backend outages are handled inside the
// implementation and never surfaced here.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
	Touch(ctx context.Context, id string) error
}
