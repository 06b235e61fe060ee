package handlers

import (
	"context"
	"net/http"

	"github.com/proposalpilot/hub/internal/api/response"
	"github.com/proposalpilot/hub/internal/api/validation"
	"github.com/proposalpilot/hub/internal/models"
)

// KnowledgeEntriesService defines the interface for knowledge base reads.
// Entries are written by the ingestion pipeline, not over HTTP.
type KnowledgeEntriesService interface {
	ListKnowledgeEntries(ctx context.Context, filters *models.ListKnowledgeEntriesFilters) (*models.ListKnowledgeEntriesResponse, error)
}

// KnowledgeEntriesHandler handles HTTP requests for the stored knowledge base.
type KnowledgeEntriesHandler struct {
	service KnowledgeEntriesService
}

// NewKnowledgeEntriesHandler creates a new knowledge entries handler.
func NewKnowledgeEntriesHandler(service KnowledgeEntriesService) *KnowledgeEntriesHandler {
	return &KnowledgeEntriesHandler{service: service}
}

// List handles GET /v1/knowledge-entries
func (h *KnowledgeEntriesHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &models.ListKnowledgeEntriesFilters{}

	// Decode and validate query parameters
	if err := validation.ValidateAndDecodeQueryParams(r, filters); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	result, err := h.service.ListKnowledgeEntries(r.Context(), filters)
	if err != nil {
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
