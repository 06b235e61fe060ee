package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
)

// SessionsWriter is the session write surface behind the intake endpoint.
type SessionsWriter interface {
	Create(ctx context.Context, session *models.RFPSession) error
}

// SessionsService turns intake payloads from the document parser into stored
// sessions.
type SessionsService struct {
	repo SessionsWriter
}

// NewSessionsService creates a new sessions service.
func NewSessionsService(repo SessionsWriter) *SessionsService {
	return &SessionsService{repo: repo}
}

// CreateSession stores a newly parsed RFP document as a session. Question IDs
// must be unique within the payload, and every response must reference a
// question from the same payload.
func (s *SessionsService) CreateSession(ctx context.Context, req *models.CreateSessionRequest) (*models.RFPSession, error) {
	questionIDs := make(map[string]struct{}, len(req.Questions))
	for _, q := range req.Questions {
		if _, dup := questionIDs[q.ID]; dup {
			return nil, apperrors.NewValidationError("questions", fmt.Sprintf("duplicate question id %q", q.ID))
		}

		questionIDs[q.ID] = struct{}{}
	}

	for _, r := range req.Responses {
		if _, ok := questionIDs[r.QuestionID]; !ok {
			return nil, apperrors.NewValidationError("responses", fmt.Sprintf("response references unknown question id %q", r.QuestionID))
		}
	}

	now := time.Now().UTC()

	session := &models.RFPSession{
		ID:           uuid.Must(uuid.NewV7()),
		Title:        req.Title,
		Organization: req.Organization,
		Deadline:     req.Deadline,
		Questions:    make([]models.RFPQuestion, 0, len(req.Questions)),
		Responses:    make([]models.GeneratedResponse, 0, len(req.Responses)),
		CreatedAt:    now,
	}

	for _, q := range req.Questions {
		session.Questions = append(session.Questions, models.RFPQuestion{
			ID:        q.ID,
			Text:      q.Text,
			Category:  q.Category,
			Mandatory: q.Mandatory,
		})
	}

	for _, r := range req.Responses {
		session.Responses = append(session.Responses, models.GeneratedResponse{
			QuestionID:  r.QuestionID,
			Draft:       r.Draft,
			Tone:        r.Tone,
			Confidence:  r.Confidence,
			SourcesUsed: r.SourcesUsed,
			WordCount:   models.CountWords(r.Draft),
			GeneratedAt: now,
			Status:      models.ResponseStatusGenerated,
		})
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
