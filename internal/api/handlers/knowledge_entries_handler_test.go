package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proposalpilot/hub/internal/models"
)

type fakeKnowledgeEntriesService struct {
	filters *models.ListKnowledgeEntriesFilters
	result  *models.ListKnowledgeEntriesResponse
	err     error
}

func (f *fakeKnowledgeEntriesService) ListKnowledgeEntries(_ context.Context, filters *models.ListKnowledgeEntriesFilters) (*models.ListKnowledgeEntriesResponse, error) {
	f.filters = filters
	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

func TestKnowledgeEntriesHandler_List(t *testing.T) {
	svc := &fakeKnowledgeEntriesService{
		result: &models.ListKnowledgeEntriesResponse{
			Data: []models.KnowledgeEntry{
				{Title: "Data residency", Category: "Security", Content: "EU only"},
			},
			Total:  1,
			Limit:  100,
			Offset: 0,
		},
	}
	handler := NewKnowledgeEntriesHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/knowledge-entries?category=Security&limit=10", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ListKnowledgeEntriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Data residency", result.Data[0].Title)

	require.NotNil(t, svc.filters.Category)
	assert.Equal(t, "Security", *svc.filters.Category)
	assert.Equal(t, 10, svc.filters.Limit)
}

func TestKnowledgeEntriesHandler_List_InvalidLimit(t *testing.T) {
	handler := NewKnowledgeEntriesHandler(&fakeKnowledgeEntriesService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/knowledge-entries?limit=5000", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKnowledgeEntriesHandler_List_ServiceError(t *testing.T) {
	handler := NewKnowledgeEntriesHandler(&fakeKnowledgeEntriesService{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/v1/knowledge-entries", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
