package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
)

// FeedbackRepository handles data access for response feedback. Exactly one
// record exists per (session_id, question_id); saves overwrite it.
type FeedbackRepository struct {
	db *pgxpool.Pool
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(db *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Upsert writes the full feedback record, overwriting any previous one for
// the same (session, question) pair.
func (r *FeedbackRepository) Upsert(ctx context.Context, fb *models.ResponseFeedback) error {
	query := `
		INSERT INTO response_feedback
			(session_id, question_id, star_rating, helpful, feedback_text, edit_distance,
			 original_response, edited_response, edited_html, review_status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, question_id) DO UPDATE SET
			star_rating = EXCLUDED.star_rating,
			helpful = EXCLUDED.helpful,
			feedback_text = EXCLUDED.feedback_text,
			edit_distance = EXCLUDED.edit_distance,
			original_response = EXCLUDED.original_response,
			edited_response = EXCLUDED.edited_response,
			edited_html = EXCLUDED.edited_html,
			review_status = EXCLUDED.review_status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		fb.SessionID, fb.QuestionID, fb.StarRating, fb.Helpful, fb.FeedbackText,
		fb.EditDistance, fb.OriginalResponse, fb.EditedResponse, fb.EditedHTML,
		fb.ReviewStatus, fb.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert feedback: %w", err)
	}

	return nil
}

// UpdateStatus sets the review status for one question without touching the
// other feedback fields. The row is created with defaults when missing, since
// feedback records come into existence implicitly on first view.
func (r *FeedbackRepository) UpdateStatus(ctx context.Context, sessionID uuid.UUID, questionID string, status models.ReviewStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError("status", fmt.Sprintf("invalid review status %q", status))
	}

	query := `
		INSERT INTO response_feedback (session_id, question_id, review_status, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id, question_id) DO UPDATE SET
			review_status = EXCLUDED.review_status,
			updated_at = now()
	`

	_, err := r.db.Exec(ctx, query, sessionID, questionID, status)
	if err != nil {
		return fmt.Errorf("failed to update review status: %w", err)
	}

	return nil
}

// BulkUpdateStatuses rewrites review_status for many questions at once without
// altering stored text content. Missing rows are created with defaults.
func (r *FeedbackRepository) BulkUpdateStatuses(ctx context.Context, sessionID uuid.UUID, questionIDs []string, status models.ReviewStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError("status", fmt.Sprintf("invalid review status %q", status))
	}

	if len(questionIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO response_feedback (session_id, question_id, review_status, updated_at)
		SELECT $1, unnest($2::text[]), $3, now()
		ON CONFLICT (session_id, question_id) DO UPDATE SET
			review_status = EXCLUDED.review_status,
			updated_at = now()
	`

	_, err := r.db.Exec(ctx, query, sessionID, questionIDs, status)
	if err != nil {
		return fmt.Errorf("failed to bulk update review statuses: %w", err)
	}

	return nil
}

// ListBySession retrieves all feedback records for a session.
func (r *FeedbackRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.ResponseFeedback, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, question_id, star_rating, helpful, feedback_text, edit_distance,
		       original_response, edited_response, edited_html, review_status, updated_at
		FROM response_feedback
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	records := []models.ResponseFeedback{}
	for rows.Next() {
		var fb models.ResponseFeedback
		err := rows.Scan(
			&fb.SessionID, &fb.QuestionID, &fb.StarRating, &fb.Helpful, &fb.FeedbackText,
			&fb.EditDistance, &fb.OriginalResponse, &fb.EditedResponse, &fb.EditedHTML,
			&fb.ReviewStatus, &fb.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		records = append(records, fb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return records, nil
}
