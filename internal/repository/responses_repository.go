package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/proposalpilot/hub/internal/models"
)

// ResponsesRepository handles data access for generated responses.
type ResponsesRepository struct {
	db *pgxpool.Pool
}

// NewResponsesRepository creates a new responses repository.
func NewResponsesRepository(db *pgxpool.Pool) *ResponsesRepository {
	return &ResponsesRepository{db: db}
}

// SaveAll persists the session's complete response collection in one
// transaction. Callers pass the full up-to-date set; rows are upserted by
// (session_id, question_id), so records absent from a partial caller map are
// never lost. The draft column is insert-only: an upsert on an existing row
// leaves the original draft untouched.
func (r *ResponsesRepository) SaveAll(ctx context.Context, sessionID uuid.UUID, responses []models.GeneratedResponse) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range responses {
		if err := upsertResponse(ctx, tx, sessionID.String(), &responses[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit responses: %w", err)
	}

	return nil
}

// ListBySession retrieves all generated responses for a session.
func (r *ResponsesRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.GeneratedResponse, error) {
	rows, err := r.db.Query(ctx, `
		SELECT question_id, draft, edited_content, edited_html, tone,
		       confidence, sources_used, word_count, generated_at, status
		FROM generated_responses
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	responses := []models.GeneratedResponse{}
	for rows.Next() {
		var (
			resp    models.GeneratedResponse
			sources []byte
		)
		err := rows.Scan(
			&resp.QuestionID, &resp.Draft, &resp.EditedContent, &resp.EditedHTML,
			&resp.Tone, &resp.Confidence, &sources, &resp.WordCount,
			&resp.GeneratedAt, &resp.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}

		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &resp.SourcesUsed); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources for question %q: %w", resp.QuestionID, err)
			}
		}

		responses = append(responses, resp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating responses: %w", err)
	}

	return responses, nil
}
