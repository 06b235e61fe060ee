package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
	"github.com/proposalpilot/hub/internal/review"
)

// SessionsStore is the session read surface the materializer loads from.
type SessionsStore interface {
	GetLatest(ctx context.Context) (*models.RFPSession, error)
	GetCompanyProfile(ctx context.Context) (*models.CompanyProfile, error)
}

// SessionMaterializer loads the most recent session's questions, generated
// responses, and previously recorded feedback into a review engine's working
// state.
type SessionMaterializer struct {
	sessions  SessionsStore
	responses ResponsesStore
	feedback  FeedbackStore
	persister review.Persister
	logger    *slog.Logger
}

// NewSessionMaterializer creates a materializer. Logger may be nil.
func NewSessionMaterializer(
	sessions SessionsStore,
	responses ResponsesStore,
	feedback FeedbackStore,
	persister review.Persister,
	logger *slog.Logger,
) *SessionMaterializer {
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionMaterializer{
		sessions:  sessions,
		responses: responses,
		feedback:  feedback,
		persister: persister,
		logger:    logger,
	}
}

// MaterializeLatest loads the most recent session into a ready review engine.
// Returns a NotFoundError when no session exists; the caller renders that as
// an empty state prompting an upload, not as a failure.
func (m *SessionMaterializer) MaterializeLatest(ctx context.Context) (*review.Engine, error) {
	session, err := m.sessions.GetLatest(ctx)
	if err != nil {
		return nil, err
	}

	responses, err := m.responses.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	feedback, err := m.feedback.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	m.logger.Info("session materialized",
		"session_id", session.ID,
		"questions", len(session.Questions),
		"responses", len(responses),
		"feedback_records", len(feedback),
	)

	return review.NewEngine(review.Params{
		SessionID: session.ID,
		Questions: session.Questions,
		Responses: responses,
		Feedback:  feedback,
		Persister: m.persister,
		Logger:    m.logger,
	}), nil
}

// CompanyProfile returns the configured company profile, or an empty profile
// when none is configured; the name is only a display default.
func (m *SessionMaterializer) CompanyProfile(ctx context.Context) (*models.CompanyProfile, error) {
	profile, err := m.sessions.GetCompanyProfile(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &models.CompanyProfile{}, nil
		}

		return nil, err
	}

	return profile, nil
}
