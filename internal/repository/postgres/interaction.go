package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kango-hamed/musia-guide/internal/domain"
)

// InteractionRepository implements domain.InteractionRepository
type InteractionRepository struct {
	pool *pgxpool.Pool
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(pool *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{pool: pool}
}

// Create inserts a new interaction log entry
func (r *InteractionRepository) Create(ctx context.Context, interaction *domain.Interaction) error {
	query := `
		INSERT INTO interactions (id, session_id, question_text, response_text, detected_intent, was_successful, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		interaction.ID,
		interaction.SessionID,
		interaction.QuestionText,
		interaction.ResponseText,
		interaction.DetectedIntent,
		interaction.WasSuccessful,
		interaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}

	return nil
}

// ListBySession retrieves the most recent interactions for a session
func (r *InteractionRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.Interaction, error) {
	query := `
		SELECT id, session_id, question_text, response_text, detected_intent, was_successful, created_at
		FROM interactions
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []domain.Interaction
	for rows.Next() {
		var in domain.Interaction
		if err := rows.Scan(
			&in.ID,
			&in.SessionID,
			&in.QuestionText,
			&in.ResponseText,
			&in.DetectedIntent,
			&in.WasSuccessful,
			&in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}

	return interactions, nil
}
