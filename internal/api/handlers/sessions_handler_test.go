package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proposalpilot/hub/internal/apperrors"
	"github.com/proposalpilot/hub/internal/models"
)

type fakeSessionsService struct {
	session *models.RFPSession
	err     error
}

func (f *fakeSessionsService) CreateSession(_ context.Context, _ *models.CreateSessionRequest) (*models.RFPSession, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.session, nil
}

type fakeSessionsReader struct {
	session *models.RFPSession
	profile *models.CompanyProfile
	err     error
}

func (f *fakeSessionsReader) GetLatest(_ context.Context) (*models.RFPSession, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.session, nil
}

func (f *fakeSessionsReader) GetCompanyProfile(_ context.Context) (*models.CompanyProfile, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.profile, nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate() { f.calls++ }

func TestSessionsHandler_Create(t *testing.T) {
	session := &models.RFPSession{ID: uuid.New(), Title: "Cloud RFP"}
	invalidator := &fakeInvalidator{}
	handler := NewSessionsHandler(&fakeSessionsService{session: session}, &fakeSessionsReader{}, invalidator)

	body := `{"title":"Cloud RFP","questions":[{"id":"q1","text":"Describe hosting"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.RFPSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, session.ID, created.ID)

	// The review engine is re-materialized from the new session.
	assert.Equal(t, 1, invalidator.calls)
}

func TestSessionsHandler_Create_MissingQuestions(t *testing.T) {
	invalidator := &fakeInvalidator{}
	handler := NewSessionsHandler(&fakeSessionsService{}, &fakeSessionsReader{}, invalidator)

	body := `{"title":"Cloud RFP","questions":[]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, invalidator.calls)
}

func TestSessionsHandler_Create_UnknownField(t *testing.T) {
	handler := NewSessionsHandler(&fakeSessionsService{}, &fakeSessionsReader{}, &fakeInvalidator{})

	body := `{"title":"Cloud RFP","questions":[{"id":"q1","text":"x"}],"surprise":true}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionsHandler_Create_ServiceValidationError(t *testing.T) {
	svc := &fakeSessionsService{err: apperrors.NewValidationError("questions", "duplicate question id")}
	invalidator := &fakeInvalidator{}
	handler := NewSessionsHandler(svc, &fakeSessionsReader{}, invalidator)

	body := `{"title":"Cloud RFP","questions":[{"id":"q1","text":"x"},{"id":"q1","text":"y"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, invalidator.calls)
}

func TestSessionsHandler_GetLatest(t *testing.T) {
	session := &models.RFPSession{ID: uuid.New(), Title: "Cloud RFP"}
	handler := NewSessionsHandler(&fakeSessionsService{}, &fakeSessionsReader{session: session}, &fakeInvalidator{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/latest", nil)
	rec := httptest.NewRecorder()
	handler.GetLatest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.RFPSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Cloud RFP", got.Title)
}

func TestSessionsHandler_GetLatest_NoSession(t *testing.T) {
	reader := &fakeSessionsReader{err: apperrors.NewNotFoundError("session", "no sessions exist")}
	handler := NewSessionsHandler(&fakeSessionsService{}, reader, &fakeInvalidator{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/latest", nil)
	rec := httptest.NewRecorder()
	handler.GetLatest(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionsHandler_GetCompanyProfile_NotConfigured(t *testing.T) {
	reader := &fakeSessionsReader{err: apperrors.NewNotFoundError("company profile", "not configured")}
	handler := NewSessionsHandler(&fakeSessionsService{}, reader, &fakeInvalidator{})

	req := httptest.NewRequest(http.MethodGet, "/v1/company-profile", nil)
	rec := httptest.NewRecorder()
	handler.GetCompanyProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.CompanyProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Empty(t, profile.Name)
}
