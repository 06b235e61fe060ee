package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
)

// SessionsRepository handles data access for RFP sessions and their questions.
type SessionsRepository struct {
	db *pgxpool.Pool
}

// NewSessionsRepository creates a new sessions repository.
func NewSessionsRepository(db *pgxpool.Pool) *SessionsRepository {
	return &SessionsRepository{db: db}
}

// Create inserts a session with its questions and any initial generated
// responses in one transaction. Question order is preserved via position.
func (r *SessionsRepository) Create(ctx context.Context, session *models.RFPSession) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO rfp_sessions (id, title, organization, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, session.ID, session.Title, session.Organization, session.Deadline, session.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return apperrors.NewConflictError(fmt.Sprintf("session %s already exists", session.ID))
		}

		return fmt.Errorf("failed to insert session: %w", err)
	}

	for i, q := range session.Questions {
		_, err = tx.Exec(ctx, `
			INSERT INTO rfp_questions (session_id, id, position, text, category, mandatory)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, session.ID, q.ID, i, q.Text, q.Category, q.Mandatory)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return apperrors.NewConflictError(fmt.Sprintf("duplicate question id %q", q.ID))
			}

			return fmt.Errorf("failed to insert question %q: %w", q.ID, err)
		}
	}

	for i := range session.Responses {
		if err := upsertResponse(ctx, tx, session.ID.String(), &session.Responses[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recently created session with its questions in
// original order. Returns a NotFoundError when no session exists.
func (r *SessionsRepository) GetLatest(ctx context.Context) (*models.RFPSession, error) {
	var session models.RFPSession

	err := r.db.QueryRow(ctx, `
		SELECT id, title, organization, deadline, created_at
		FROM rfp_sessions
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&session.ID, &session.Title, &session.Organization, &session.Deadline, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("session", "no RFP session found")
		}

		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, text, category, mandatory
		FROM rfp_questions
		WHERE session_id = $1
		ORDER BY position
	`, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session questions: %w", err)
	}
	defer rows.Close()

	questions := []models.RFPQuestion{}
	for rows.Next() {
		var q models.RFPQuestion
		if err := rows.Scan(&q.ID, &q.Text, &q.Category, &q.Mandatory); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	session.Questions = questions

	return &session, nil
}

// GetCompanyProfile reads the single company profile row.
// Returns a NotFoundError when no profile has been configured.
func (r *SessionsRepository) GetCompanyProfile(ctx context.Context) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile

	err := r.db.QueryRow(ctx, `SELECT name FROM company_profiles WHERE id = 1`).Scan(&profile.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("company profile", "company profile not configured")
		}

		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}

	return &profile, nil
}

// upsertResponse writes one generated response row within a transaction.
// Shared by session creation and the full-collection save path.
func upsertResponse(ctx context.Context, tx pgx.Tx, sessionID string, resp *models.GeneratedResponse) error {
	sources, err := json.Marshal(resp.SourcesUsed)
	if err != nil {
		return fmt.Errorf("failed to marshal sources for question %q: %w", resp.QuestionID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO generated_responses
			(session_id, question_id, draft, edited_content, edited_html, tone,
			 confidence, sources_used, word_count, generated_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, question_id) DO UPDATE SET
			edited_content = EXCLUDED.edited_content,
			edited_html = EXCLUDED.edited_html,
			tone = EXCLUDED.tone,
			confidence = EXCLUDED.confidence,
			sources_used = EXCLUDED.sources_used,
			word_count = EXCLUDED.word_count,
			status = EXCLUDED.status
	`, sessionID, resp.QuestionID, resp.Draft, resp.EditedContent, resp.EditedHTML,
		resp.Tone, resp.Confidence, sources, resp.WordCount, resp.GeneratedAt, resp.Status)
	if err != nil {
		return fmt.Errorf("failed to upsert response for question %q: %w", resp.QuestionID, err)
	}

	return nil
}
