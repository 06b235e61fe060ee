// Package service wires the review engine to the persistence layer: the
// adapter the engine saves through and the materializer that loads a session's
// working state.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/proposalpilot/hub/internal/models"
)

// ResponsesStore is the responses persistence surface the adapter writes through.
type ResponsesStore interface {
	SaveAll(ctx context.Context, sessionID uuid.UUID, responses []models.GeneratedResponse) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.GeneratedResponse, error)
}

// FeedbackStore is the feedback persistence surface the adapter writes through.
type FeedbackStore interface {
	Upsert(ctx context.Context, fb *models.ResponseFeedback) error
	UpdateStatus(ctx context.Context, sessionID uuid.UUID, questionID string, status models.ReviewStatus) error
	BulkUpdateStatuses(ctx context.Context, sessionID uuid.UUID, questionIDs []string, status models.ReviewStatus) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.ResponseFeedback, error)
}

// PersistenceAdapter implements review.Persister over the postgres
// repositories. These are the only mutation entry points the review engine
// uses.
type PersistenceAdapter struct {
	responses ResponsesStore
	feedback  FeedbackStore
}

// NewPersistenceAdapter creates the adapter the review engine saves through.
func NewPersistenceAdapter(responses ResponsesStore, feedback FeedbackStore) *PersistenceAdapter {
	return &PersistenceAdapter{responses: responses, feedback: feedback}
}

// SaveAllResponses persists the session's complete response collection.
func (a *PersistenceAdapter) SaveAllResponses(ctx context.Context, sessionID uuid.UUID, responses []models.GeneratedResponse) error {
	return a.responses.SaveAll(ctx, sessionID, responses)
}

// SaveFeedback persists one feedback record, overwriting any previous one for
// the same (session, question) pair.
func (a *PersistenceAdapter) SaveFeedback(ctx context.Context, fb *models.ResponseFeedback) error {
	return a.feedback.Upsert(ctx, fb)
}

// UpdateStatus persists a single question's review status.
func (a *PersistenceAdapter) UpdateStatus(ctx context.Context, sessionID uuid.UUID, questionID string, status models.ReviewStatus) error {
	return a.feedback.UpdateStatus(ctx, sessionID, questionID, status)
}

// BulkUpdateStatuses persists a status rewrite across many questions at once.
func (a *PersistenceAdapter) BulkUpdateStatuses(ctx context.Context, sessionID uuid.UUID, questionIDs []string, status models.ReviewStatus) error {
	return a.feedback.BulkUpdateStatuses(ctx, sessionID, questionIDs, status)
}
