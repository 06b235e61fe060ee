package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
	"github.com/proposalpilot/hub/internal/review"
)

type fakeSessionsStore struct {
	session    *models.RFPSession
	profile    *models.CompanyProfile
	getErr     error
	profileErr error
}

func (f *fakeSessionsStore) GetLatest(_ context.Context) (*models.RFPSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	return f.session, nil
}

func (f *fakeSessionsStore) GetCompanyProfile(_ context.Context) (*models.CompanyProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}

	return f.profile, nil
}

type fakeResponsesStore struct {
	responses []models.GeneratedResponse
	saved     [][]models.GeneratedResponse
}

func (f *fakeResponsesStore) SaveAll(_ context.Context, _ uuid.UUID, responses []models.GeneratedResponse) error {
	f.saved = append(f.saved, responses)

	return nil
}

func (f *fakeResponsesStore) ListBySession(_ context.Context, _ uuid.UUID) ([]models.GeneratedResponse, error) {
	return f.responses, nil
}

type fakeFeedbackStore struct {
	feedback []models.ResponseFeedback
	upserts  []models.ResponseFeedback
}

func (f *fakeFeedbackStore) Upsert(_ context.Context, fb *models.ResponseFeedback) error {
	f.upserts = append(f.upserts, *fb)

	return nil
}

func (f *fakeFeedbackStore) UpdateStatus(_ context.Context, _ uuid.UUID, _ string, _ models.ReviewStatus) error {
	return nil
}

func (f *fakeFeedbackStore) BulkUpdateStatuses(_ context.Context, _ uuid.UUID, _ []string, _ models.ReviewStatus) error {
	return nil
}

func (f *fakeFeedbackStore) ListBySession(_ context.Context, _ uuid.UUID) ([]models.ResponseFeedback, error) {
	return f.feedback, nil
}

func newTestMaterializer(sessions *fakeSessionsStore, responses *fakeResponsesStore, feedback *fakeFeedbackStore) *SessionMaterializer {
	persister := NewPersistenceAdapter(responses, feedback)

	return NewSessionMaterializer(sessions, responses, feedback, persister, nil)
}

func TestSessionMaterializer_MaterializeLatest(t *testing.T) {
	sessionID := uuid.New()
	sessions := &fakeSessionsStore{
		session: &models.RFPSession{
			ID: sessionID,
			Questions: []models.RFPQuestion{
				{ID: "q1", Text: "First"},
				{ID: "q2", Text: "Second"},
			},
		},
	}
	responses := &fakeResponsesStore{
		responses: []models.GeneratedResponse{{QuestionID: "q1", Draft: "draft one"}},
	}
	feedback := &fakeFeedbackStore{
		feedback: []models.ResponseFeedback{{QuestionID: "q1", ReviewStatus: models.ReviewStatusComplete}},
	}

	m := newTestMaterializer(sessions, responses, feedback)

	engine, err := m.MaterializeLatest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sessionID, engine.SessionID())
	assert.Len(t, engine.Questions(), 2)
	assert.Equal(t, models.ReviewStatusComplete, engine.StatusOf("q1"))
	assert.Equal(t, models.ReviewStatusPending, engine.StatusOf("q2"))

	// The engine persists through the same stores it was loaded from.
	require.NoError(t, engine.Select(context.Background(), "q1"))
	_, err = engine.Save(context.Background(), review.SaveExplicit)
	require.NoError(t, err)
	assert.Len(t, responses.saved, 1)
	assert.Len(t, feedback.upserts, 1)
}

func TestSessionMaterializer_MaterializeLatest_NoSession(t *testing.T) {
	sessions := &fakeSessionsStore{getErr: apperrors.NewNotFoundError("session", "no sessions exist")}
	m := newTestMaterializer(sessions, &fakeResponsesStore{}, &fakeFeedbackStore{})

	_, err := m.MaterializeLatest(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionMaterializer_CompanyProfile(t *testing.T) {
	sessions := &fakeSessionsStore{profile: &models.CompanyProfile{Name: "Acme Corp"}}
	m := newTestMaterializer(sessions, &fakeResponsesStore{}, &fakeFeedbackStore{})

	profile, err := m.CompanyProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", profile.Name)
}

func TestSessionMaterializer_CompanyProfile_NotConfigured(t *testing.T) {
	sessions := &fakeSessionsStore{profileErr: apperrors.NewNotFoundError("company profile", "not configured")}
	m := newTestMaterializer(sessions, &fakeResponsesStore{}, &fakeFeedbackStore{})

	profile, err := m.CompanyProfile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profile.Name)
}
