package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Interaction is one logged visitor exchange, kept for analytics. Writes
// are best-effort: a failed insert never fails the conversation.
type Interaction struct {
	ID             uuid.UUID `json:"id"`
	SessionID      string    `json:"session_id"`
	QuestionText   string    `json:"question_text"`
	ResponseText   string    `json:"response_text"`
	DetectedIntent string    `json:"detected_intent"`
	WasSuccessful  bool      `json:"was_successful"`
	CreatedAt      time.Time `json:"created_at"`
}

// InteractionRepository defines the interface for interaction logging
type InteractionRepository interface {
	Create(ctx context.Context, interaction *Interaction) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Interaction, error)
}
