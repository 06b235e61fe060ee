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
	"github.com/proposalpilot/hub/internal/review"
)

// noopPersister satisfies review.Persister without touching storage.
type noopPersister struct{}

func (noopPersister) SaveAllResponses(context.Context, uuid.UUID, []models.GeneratedResponse) error {
	return nil
}

func (noopPersister) SaveFeedback(context.Context, *models.ResponseFeedback) error { return nil }

func (noopPersister) UpdateStatus(context.Context, uuid.UUID, string, models.ReviewStatus) error {
	return nil
}

func (noopPersister) BulkUpdateStatuses(context.Context, uuid.UUID, []string, models.ReviewStatus) error {
	return nil
}

// stubManager hands the handler a fixed engine, or a materialization error.
type stubManager struct {
	engine *review.Engine
	err    error
}

func (s *stubManager) With(_ context.Context, fn func(*review.Engine) error) error {
	if s.err != nil {
		return s.err
	}

	return fn(s.engine)
}

func newHandlerEngine() *review.Engine {
	return review.NewEngine(review.Params{
		SessionID: uuid.New(),
		Questions: []models.RFPQuestion{
			{ID: "q1", Text: "Hosting", Category: "Infrastructure"},
			{ID: "q2", Text: "Support", Category: "Support"},
		},
		Responses: []models.GeneratedResponse{
			{QuestionID: "q1", Draft: "We use AWS for hosting", Confidence: 80},
		},
		Persister: noopPersister{},
	})
}

func TestReviewHandler_Get(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodGet, "/v1/review", nil)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var view ReviewView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view.Questions, 2)
	assert.Equal(t, review.FilterAll, view.Filter)
	assert.Equal(t, review.SortOriginal, view.Sort)
	assert.Empty(t, view.Selected)
	assert.Nil(t, view.LastSavedAt)
}

func TestReviewHandler_Get_NoSession(t *testing.T) {
	handler := NewReviewHandler(&stubManager{err: apperrors.NewNotFoundError("session", "no sessions exist")})

	req := httptest.NewRequest(http.MethodGet, "/v1/review", nil)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewHandler_Select(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodPost, "/v1/review/select", strings.NewReader(`{"question_id":"q1"}`))
	rec := httptest.NewRecorder()
	handler.Select(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var view ReviewView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "q1", view.Selected)
	require.NotNil(t, view.SelectedResponse)
	assert.Equal(t, "We use AWS for hosting", view.SelectedResponse.Draft)
}

func TestReviewHandler_Select_UnknownQuestion(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodPost, "/v1/review/select", strings.NewReader(`{"question_id":"nope"}`))
	rec := httptest.NewRecorder()
	handler.Select(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewHandler_Select_MissingBody(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodPost, "/v1/review/select", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Select(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewHandler_Save(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	body := `{"question_id":"q1","edited_content":"we use AWS and Azure for hosting"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/review/save", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Save(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result review.SaveResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "q1", result.QuestionID)
	assert.Equal(t, 29, result.EditDistance)
	assert.Equal(t, models.ReviewStatusInProgress, result.Status)
}

func TestReviewHandler_Save_NoSelection(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodPost, "/v1/review/save", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Save(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewHandler_Feedback_ToggleClears(t *testing.T) {
	engine := newHandlerEngine()
	handler := NewReviewHandler(&stubManager{engine: engine})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/review/feedback", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Feedback(rec, req)

		return rec
	}

	rec := post(`{"question_id":"q1","star_rating":4,"helpful":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var draft FeedbackDraft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	require.NotNil(t, draft.StarRating)
	assert.Equal(t, 4, *draft.StarRating)
	require.NotNil(t, draft.Helpful)
	assert.True(t, *draft.Helpful)

	// Repeating the same selections clears them back to unset.
	rec = post(`{"question_id":"q1","star_rating":4,"helpful":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	draft = FeedbackDraft{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.Nil(t, draft.StarRating)
	assert.Nil(t, draft.Helpful)
}

func TestReviewHandler_Feedback_InvalidStarRating(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodPost, "/v1/review/feedback", strings.NewReader(`{"question_id":"q1","star_rating":9}`))
	rec := httptest.NewRecorder()
	handler.Feedback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewHandler_Status(t *testing.T) {
	engine := newHandlerEngine()
	handler := NewReviewHandler(&stubManager{engine: engine})

	body := `{"question_id":"q1","status":"complete"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/review/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ReviewStatusComplete, engine.StatusOf("q1"))
}

func TestReviewHandler_Status_InvalidStatus(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	body := `{"question_id":"q1","status":"done"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/review/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewHandler_BulkStatus(t *testing.T) {
	engine := newHandlerEngine()
	handler := NewReviewHandler(&stubManager{engine: engine})

	req := httptest.NewRequest(http.MethodPost, "/v1/review/bulk-status", strings.NewReader(`{"status":"complete"}`))
	rec := httptest.NewRecorder()
	handler.BulkStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ReviewStatusComplete, engine.StatusOf("q1"))
	assert.Equal(t, models.ReviewStatusComplete, engine.StatusOf("q2"))
}

func TestReviewHandler_BulkStatus_RejectsPartialStatuses(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodPost, "/v1/review/bulk-status", strings.NewReader(`{"status":"needs-revision"}`))
	rec := httptest.NewRecorder()
	handler.BulkStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewHandler_Stats(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodGet, "/v1/review/stats", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats review.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[models.ReviewStatusPending])
}

func TestReviewHandler_UpdateView(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	body := `{"filter":"pending","sort":"category"}`
	req := httptest.NewRequest(http.MethodPut, "/v1/review/view", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.UpdateView(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var view ReviewView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, review.StatusFilter("pending"), view.Filter)
	assert.Equal(t, review.SortCategory, view.Sort)
}

func TestReviewHandler_UpdateView_InvalidFilter(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodPut, "/v1/review/view", strings.NewReader(`{"filter":"archived"}`))
	rec := httptest.NewRecorder()
	handler.UpdateView(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewHandler_UpdateView_InvalidSort(t *testing.T) {
	handler := NewReviewHandler(&stubManager{engine: newHandlerEngine()})

	req := httptest.NewRequest(http.MethodPut, "/v1/review/view", strings.NewReader(`{"sort":"alphabetical"}`))
	rec := httptest.NewRecorder()
	handler.UpdateView(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
